// Package config loads the daemon's TOML configuration file, grounded on
// tve-devices/cmd/mqttradio/main.go's toml.Unmarshal pattern.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/rmingon/EchoGuard-8/internal/moduleindex"
)

// Module describes one GNSS receiver's wiring, per spec.md section 6's
// compile-time configuration (module count, per-module pin/device mapping).
type Module struct {
	Index   int    // one-based, spec.md section 3's ModuleIndex
	Backend string // "hardware" or "soft"
	Device  string // TTY path, hardware backend only
	Pin     string // GPIO RX line name, soft backend only
}

// SPI configures the slave publisher's chip-select line. Backend is read
// from the file but the daemon does not consult it: the chip-select pin is
// always opened through the periph.io backend.
type SPI struct {
	CSPin   string
	Backend string
}

// Metrics configures the Prometheus exporter.
type Metrics struct {
	Listen string // e.g. ":9110"; empty disables the exporter
}

// MQTT configures the optional telemetry publisher.
type MQTT struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Topic    string
}

// Config is the daemon's top-level TOML document, per spec.md section 6.
type Config struct {
	RingCapacity   int
	LineBufferSize int
	BaudRate       int

	Module  []Module
	SPI     SPI
	Metrics Metrics
	MQTT    MQTT
}

// Default returns the compile-time defaults from spec.md section 6 before
// any file is applied: RingCapacity 256, LineBufferSize 96, BaudRate 9600.
func Default() Config {
	return Config{
		RingCapacity:   256,
		LineBufferSize: 96,
		BaudRate:       9600,
	}
}

// Load reads and parses a TOML config file, applying it on top of Default.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the loaded configuration is internally consistent before
// the daemon wires any hardware from it.
func (c Config) Validate() error {
	if len(c.Module) == 0 {
		return fmt.Errorf("config: at least one [[Module]] entry is required")
	}
	seen := make(map[int]bool, len(c.Module))
	for _, m := range c.Module {
		if !moduleindex.Valid(m.Index) {
			return fmt.Errorf("config: module index %d out of range [1,%d]", m.Index, moduleindex.Count)
		}
		if seen[m.Index] {
			return fmt.Errorf("config: module index %d repeated", m.Index)
		}
		seen[m.Index] = true
		switch m.Backend {
		case "hardware":
			if m.Device == "" {
				return fmt.Errorf("config: module %d backend=hardware requires Device", m.Index)
			}
		case "soft":
			if m.Pin == "" {
				return fmt.Errorf("config: module %d backend=soft requires Pin", m.Index)
			}
		default:
			return fmt.Errorf("config: module %d has unknown backend %q", m.Index, m.Backend)
		}
	}
	return nil
}
