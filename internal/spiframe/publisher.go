package spiframe

import (
	"context"
	"sync"
	"time"

	"github.com/rmingon/EchoGuard-8/internal/fusion"
	"github.com/rmingon/EchoGuard-8/internal/hwio"
)

// CSLine is the chip-select edge source driving the publisher's protocol,
// backed in production by hwio.GPIO's periph.io-based WaitForEdge — the
// same interrupt-wait idiom tve-devices/sx1231.Radio uses for its radio
// IRQ pin.
type CSLine interface {
	// WaitEdge blocks until the next CS transition (or ctx is cancelled)
	// and reports whether it was a rising edge (deselect).
	WaitEdge(ctx context.Context) (rising bool, err error)
}

// DataPort is the byte-clock half of the SPI slave protocol: one call per
// SCK edge exchanging the next outbound byte for whatever the host clocked
// in. Real hardware drives this from TXE/RXNE interrupts; ChannelPort below
// is a host-side simulation backend for tests and bring-up without SPI
// slave hardware attached.
type DataPort interface {
	Exchange(tx byte) (rx byte)
}

// gpioCSLine adapts an hwio.GPIO configured for BothEdges into a CSLine.
type gpioCSLine struct {
	pin     hwio.GPIO
	timeout time.Duration
}

// NewGPIOCSLine wires pin (already hwio.GPIO.In(hwio.BothEdges)-armed) as a
// CSLine, polling with the given timeout so WaitEdge remains responsive to
// context cancellation.
func NewGPIOCSLine(pin hwio.GPIO, pollTimeout time.Duration) CSLine {
	return &gpioCSLine{pin: pin, timeout: pollTimeout}
}

func (g *gpioCSLine) WaitEdge(ctx context.Context) (bool, error) {
	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
		}
		if g.pin.WaitForEdge(g.timeout) {
			return g.pin.Read() == hwio.High, nil
		}
	}
}

// ResultSource supplies the latest fused snapshot under its own short
// critical section, matching spec.md section 4.9's "rebuild the packet
// from the latest fused snapshot (via an ISR-safe critical section)".
type ResultSource interface {
	Latest() fusion.Result
}

// Publisher drives the CS-edge / byte-clock SPI slave protocol of spec.md
// section 4.9 over a CSLine and DataPort pair.
type Publisher struct {
	cs     CSLine
	data   DataPort
	source ResultSource

	mu       sync.Mutex
	frame    [FrameSize]byte
	txIndex  int
	selected bool
}

// NewPublisher builds a Publisher over the given CS line, data port, and
// fusion result source.
func NewPublisher(cs CSLine, data DataPort, source ResultSource) *Publisher {
	return &Publisher{cs: cs, data: data, source: source}
}

// Run drives the edge-wait loop until ctx is cancelled, mirroring the ISR
// pair (CS EXTI + SPI data) of spec.md section 4.9 and section 5.
func (p *Publisher) Run(ctx context.Context) {
	for {
		rising, err := p.cs.WaitEdge(ctx)
		if err != nil {
			return
		}
		if rising {
			p.onDeselect()
		} else {
			p.onSelect()
		}
	}
}

func (p *Publisher) onSelect() {
	frame := BuildFrame(p.source.Latest())

	p.mu.Lock()
	p.frame = frame
	p.txIndex = 0
	p.selected = true
	p.mu.Unlock()
}

func (p *Publisher) onDeselect() {
	p.mu.Lock()
	p.selected = false
	p.txIndex = 0
	p.mu.Unlock()
}

// ServeClocks runs the byte-clock exchange loop against p.data until ctx is
// cancelled. In production this is driven by the peripheral's TXE/RXNE
// interrupts; ChannelPort lets a test drive it synchronously instead.
func (p *Publisher) ServeClocks(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		p.data.Exchange(p.nextTxByte()) // RX byte discarded, per spec.md section 4.9.
	}
}

// nextTxByte returns the next outbound byte and advances txIndex, or 0x00
// if not selected or past the end of the frame — the single-step primitive
// a real SPI1 TXE interrupt handler would execute per spec.md section 4.9.
func (p *Publisher) nextTxByte() byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.selected || p.txIndex >= FrameSize {
		return 0
	}
	b := p.frame[p.txIndex]
	p.txIndex++
	return b
}

// ChannelPort is a host-side simulation DataPort for tests and bring-up: a
// real SCK edge pairs one outbound byte with one inbound byte atomically,
// so this rendezvous on unbuffered channels reproduces that pairing instead
// of letting ServeClocks spin freely the way a lossy buffer would.
type ChannelPort struct {
	txCh chan byte
	rxCh chan byte
}

// NewChannelPort returns a DataPort driven by Next, for synchronous
// test-driven byte clocking.
func NewChannelPort() *ChannelPort {
	return &ChannelPort{txCh: make(chan byte), rxCh: make(chan byte)}
}

func (c *ChannelPort) Exchange(tx byte) byte {
	c.txCh <- tx
	return <-c.rxCh
}

// Next blocks until ServeClocks clocks out its next byte, supplies rx back
// to it as the simulated MOSI byte (discarded by the real protocol), and
// returns the byte that was clocked out.
func (c *ChannelPort) Next(rx byte) byte {
	tx := <-c.txCh
	c.rxCh <- rx
	return tx
}
