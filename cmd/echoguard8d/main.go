// Command echoguard8d is the EchoGuard-8 fusion node daemon: it acquires
// NMEA-0183 from up to eight GNSS receivers, runs the outlier-rejecting
// spatial fusion engine, and serves the latest result over a framed SPI
// slave link plus optional Prometheus and MQTT telemetry. Grounded on
// tve-devices/cmd/mqttradio/main.go's flag/config/wiring structure.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rmingon/EchoGuard-8/internal/acquire"
	"github.com/rmingon/EchoGuard-8/internal/config"
	"github.com/rmingon/EchoGuard-8/internal/fusion"
	"github.com/rmingon/EchoGuard-8/internal/harness"
	"github.com/rmingon/EchoGuard-8/internal/hwio"
	"github.com/rmingon/EchoGuard-8/internal/metrics"
	"github.com/rmingon/EchoGuard-8/internal/moduleindex"
	"github.com/rmingon/EchoGuard-8/internal/modulestate"
	"github.com/rmingon/EchoGuard-8/internal/nmea"
	"github.com/rmingon/EchoGuard-8/internal/ringbuf"
	"github.com/rmingon/EchoGuard-8/internal/spiframe"
	"github.com/rmingon/EchoGuard-8/internal/telemetry"
)

// snapshotSource adapts the daemon's owned state into the read-only views
// internal/metrics, internal/telemetry and internal/spiframe need.
type snapshotSource struct {
	shared *fusion.SharedResult
	store  *modulestate.Store
	engine *fusion.Engine
}

func (s snapshotSource) FusionSnapshot() fusion.Result { return s.shared.Latest() }
func (s snapshotSource) Latest() fusion.Result         { return s.shared.Latest() }
func (s snapshotSource) ModuleSnapshot() [moduleindex.Count]modulestate.State {
	return s.store.Snapshot()
}
func (s snapshotSource) FaultScore(idx int) int { return s.engine.FaultScore(idx) }

func main() {
	configPath := flag.String("config", "echoguard8d.toml", "path to config file")
	flag.Parse()

	logger := log.New(os.Stderr, "echoguard8d: ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Printf("shutting down")
		cancel()
	}()

	store := modulestate.NewStore()
	engine := fusion.NewEngine()
	shared := &fusion.SharedResult{}

	facade, hwUARTs, softBank, err := wireAcquisition(cfg, logger)
	if err != nil {
		logger.Printf("fatal: %v", err)
		os.Exit(1)
	}
	for _, u := range hwUARTs {
		u.Start()
	}
	if softBank != nil {
		softBank.Start()
	}

	loop := newAcquisitionLoop(facade, store)
	harness.Run(ctx, "acquisition", 5*time.Millisecond, func(_ context.Context, nowMs int64) {
		loop.tick(nowMs)
	}, logger)

	harness.Run(ctx, "fusion", 200*time.Millisecond, func(_ context.Context, nowMs int64) {
		shared.Store(engine.Run(store.Snapshot(), nowMs))
	}, logger)

	source := snapshotSource{shared: shared, store: store, engine: engine}

	if cfg.Metrics.Listen != "" {
		startMetrics(cfg.Metrics.Listen, source, logger)
	}

	if cfg.MQTT.Enabled {
		pub, err := telemetry.NewPublisher(cfg.MQTT, source, logger)
		if err != nil {
			logger.Printf("telemetry disabled: %v", err)
		} else {
			go pub.Run(ctx, time.Second)
		}
	}

	if err := startSPIPublisher(ctx, cfg.SPI, source, logger); err != nil {
		logger.Printf("spi publisher disabled: %v", err)
	}

	logger.Printf("echoguard8d ready")
	<-ctx.Done()
}

// wireAcquisition opens every configured module's receiver (hardware UART
// or soft UART channel) and assembles the per-slot ring array the
// acquisition facade dispatches over, per spec.md section 4.4.
func wireAcquisition(cfg config.Config, logger *log.Logger) (*acquire.Facade, []*acquire.HardwareUART, *acquire.SoftUartBank, error) {
	var rings [moduleindex.Count]*ringbuf.Ring
	var hwUARTs []*acquire.HardwareUART
	var softChannels []*acquire.SoftUartChannel
	var softPinNames []string

	for _, m := range cfg.Module {
		switch m.Backend {
		case "hardware":
			u, err := acquire.OpenHardwareUART(m.Device, cfg.BaudRate, cfg.RingCapacity, logger)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("wire module %d: %w", m.Index, err)
			}
			rings[moduleindex.ToSlot(m.Index)] = u.Ring()
			hwUARTs = append(hwUARTs, u)

		case "soft":
			pin, err := hwio.NewPeriphGPIO(m.Pin)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("wire module %d: %w", m.Index, err)
			}
			ch, err := acquire.NewSoftUartChannel(pin, cfg.RingCapacity)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("wire module %d: %w", m.Index, err)
			}
			rings[moduleindex.ToSlot(m.Index)] = ch.Ring()
			softChannels = append(softChannels, ch)
			softPinNames = append(softPinNames, m.Pin)

		default:
			return nil, nil, nil, fmt.Errorf("wire module %d: unknown backend %q", m.Index, m.Backend)
		}
	}

	var softBank *acquire.SoftUartBank
	if len(softChannels) > 0 {
		group, err := hwio.NewPeriphGPIOGroup(softPinNames)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("wire soft-uart gpio group: %w", err)
		}
		softBank = acquire.NewSoftUartBank(softChannels, group, cfg.BaudRate)
	}

	return acquire.NewFacade(rings), hwUARTs, softBank, nil
}

// acquisitionLoop holds the per-module NMEA line assemblers that must
// persist across acquisition ticks, matching spec.md section 5's
// "acquisition task (period 5 ms): drain each module's ring, re-assemble
// lines, apply complete sentences to the shared module table".
type acquisitionLoop struct {
	facade     *acquire.Facade
	store      *modulestate.Store
	assemblers [moduleindex.Count]nmea.Assembler
}

func newAcquisitionLoop(facade *acquire.Facade, store *modulestate.Store) *acquisitionLoop {
	return &acquisitionLoop{facade: facade, store: store}
}

func (l *acquisitionLoop) tick(nowMs int64) {
	var buf [128]byte
	for idx := 1; idx <= moduleindex.Count; idx++ {
		n := l.facade.ReadBytes(idx, buf[:])
		if n == 0 {
			continue
		}
		slot := moduleindex.ToSlot(idx)
		l.assemblers[slot].Feed(buf[:n], func(line []byte) {
			acquire.IngestLine(l.store, idx, line, nowMs)
		})
	}
}

// startMetrics serves the Prometheus exporter, grounded on
// runZeroInc-sockstats' exporter usage pattern of registering a custom
// Collector with a dedicated registry.
func startMetrics(listen string, source metrics.Source, logger *log.Logger) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(metrics.NewCollector(source))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	go func() {
		if err := http.ListenAndServe(listen, mux); err != nil {
			logger.Printf("metrics server stopped: %v", err)
		}
	}()
}

// startSPIPublisher wires the configured chip-select pin into an
// spiframe.Publisher and starts its edge-wait and byte-clock loops. The
// DataPort it serves over is a ChannelPort: on real hardware this channel
// pair must be driven by the board's SPI slave peripheral driver (an
// integration point this repository does not itself provide — see
// DESIGN.md).
func startSPIPublisher(ctx context.Context, cfg config.SPI, source spiframe.ResultSource, logger *log.Logger) error {
	if cfg.CSPin == "" {
		return fmt.Errorf("no SPI.CSPin configured")
	}
	pin, err := hwio.NewPeriphGPIO(cfg.CSPin)
	if err != nil {
		return fmt.Errorf("open cs pin %q: %w", cfg.CSPin, err)
	}
	if err := pin.In(hwio.BothEdges); err != nil {
		return fmt.Errorf("arm cs pin %q: %w", cfg.CSPin, err)
	}

	cs := spiframe.NewGPIOCSLine(pin, 50*time.Millisecond)
	data := spiframe.NewChannelPort()
	pub := spiframe.NewPublisher(cs, data, source)

	go pub.Run(ctx)
	go pub.ServeClocks(ctx)
	logger.Printf("spi publisher armed on %s", cfg.CSPin)
	return nil
}
