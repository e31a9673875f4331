// Package hwio provides the GPIO line abstraction EchoGuard-8 drives the
// soft-UART sampler and the SPI chip-select edge detector through.
//
// The shape of GPIO is carried over from tve-devices' shim.go, which lets
// the same device drivers run against either periph.io/x/periph (the
// primary backend here, see periph.go) or github.com/kidoman/embd (the
// legacy backend, see embd.go) without the driver code caring which one is
// in use.
package hwio

import "time"

// Edge selects which transition(s) WaitForEdge should report.
type Edge int

const (
	NoEdge Edge = iota
	RisingEdge
	FallingEdge
	BothEdges
)

// Level is a GPIO logic level.
type Level int

const (
	Low  Level = 0
	High Level = 1
)

// GPIO is a single digital input/output line.
type GPIO interface {
	// In configures the pin as an input, optionally arming edge detection
	// for WaitForEdge.
	In(edge Edge) error
	// Read samples the current line level.
	Read() Level
	// WaitForEdge blocks until the armed edge fires or timeout elapses,
	// returning false on timeout. A timeout of 0 polls without blocking.
	WaitForEdge(timeout time.Duration) bool
	// Out drives the pin as an output at the given level.
	Out(level Level)
	// Name identifies the underlying pin for logging.
	Name() string
}

// GPIOGroup reads several GPIO lines that share a port/bank with a single
// underlying register read, mirroring spec.md section 4.3's "read GPIO
// input data registers once per port per tick rather than once per pin".
// Backends that cannot batch fall back to reading each pin individually.
type GPIOGroup interface {
	ReadAll() []Level
}

// SPI is a minimal synchronous-transfer SPI master port, implemented by the
// embd backend (NewEmbdSPI); the daemon does not use it (the node itself is
// an SPI slave, whose transport is internal/spiframe.DataPort, not this
// interface).
type SPI interface {
	Tx(w, r []byte) error
	Speed(hz int64) error
	Configure(mode int, bits int) error
	Close() error
}

// SPI modes, named to match the CPOL/CPHA convention used throughout the
// retrieval pack (tve-devices/shim.go uses the identical constants).
const (
	SPIMode0 = 0x0 // CPOL=0, CPHA=0 — the mode this node's slave port uses.
	SPIMode1 = 0x1
	SPIMode2 = 0x2
	SPIMode3 = 0x3
)
