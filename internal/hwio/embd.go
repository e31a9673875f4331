package hwio

import (
	"fmt"
	"time"

	"github.com/kidoman/embd"
)

// embdGPIO adapts github.com/kidoman/embd to the hwio.GPIO interface. This
// is the legacy backend: tve-devices carried exactly this kind of dual
// backend in shim.go (a periph.io-era driver with an embd fallback for
// boards periph.io didn't yet support), and EchoGuard-8 preserves that
// option for host boards where only embd has a working driver.
type embdGPIO struct {
	pin  embd.DigitalPin
	dir  embd.Direction
	edge chan struct{}
}

// NewEmbdGPIO opens a GPIO line by embd's platform-specific name (often a
// bare pin number as a string).
func NewEmbdGPIO(name string) (GPIO, error) {
	p, err := embd.NewDigitalPin(name)
	if err != nil {
		return nil, fmt.Errorf("hwio: embd.NewDigitalPin(%q): %w", name, err)
	}
	return &embdGPIO{pin: p, dir: embd.In, edge: make(chan struct{}, 1)}, nil
}

func (g *embdGPIO) In(edge Edge) error {
	if err := g.pin.SetDirection(embd.In); err != nil {
		return err
	}
	g.dir = embd.In
	if edge == NoEdge {
		return nil
	}
	var e embd.Edge
	switch edge {
	case RisingEdge:
		e = embd.EdgeRising
	case FallingEdge:
		e = embd.EdgeFalling
	case BothEdges:
		e = embd.EdgeBoth
	}
	return g.pin.Watch(e, g.edgeCB)
}

func (g *embdGPIO) Read() Level {
	v, _ := g.pin.Read()
	if v != 0 {
		return High
	}
	return Low
}

func (g *embdGPIO) WaitForEdge(timeout time.Duration) bool {
	if timeout <= 0 {
		select {
		case <-g.edge:
			return true
		default:
			return false
		}
	}
	to := time.After(timeout)
	select {
	case <-g.edge:
		return true
	case <-to:
		return false
	}
}

func (g *embdGPIO) Out(level Level) {
	if g.dir != embd.Out {
		g.pin.SetDirection(embd.Out)
		g.dir = embd.Out
	}
	g.pin.Write(int(level))
}

func (g *embdGPIO) Name() string {
	return fmt.Sprintf("embd-pin-%d", g.pin.N())
}

func (g *embdGPIO) edgeCB(embd.DigitalPin) {
	select {
	case g.edge <- struct{}{}:
	default:
	}
}

// NewEmbdSPI opens the legacy embd SPI bus 0, matching tve-devices'
// shim.go NewSPI, for boards that need the embd backend end-to-end.
func NewEmbdSPI() SPI {
	return &embdSPI{embd.NewSPIBus(embd.SPIMode0, 0, 4000000, 8, 0)}
}

type embdSPI struct {
	embd.SPIBus
}

func (s *embdSPI) Tx(w, r []byte) error {
	copy(r, w)
	return s.TransferAndReceiveData(r)
}

func (s *embdSPI) Speed(hz int64) error {
	if hz != 4000000 {
		return fmt.Errorf("hwio: embd SPI backend only supports 4MHz, got %d", hz)
	}
	return nil
}

func (s *embdSPI) Configure(mode int, bits int) error {
	if mode != SPIMode0 {
		return fmt.Errorf("hwio: embd SPI backend only supports mode 0")
	}
	if bits != 8 {
		return fmt.Errorf("hwio: embd SPI backend only supports 8-bit words")
	}
	return nil
}
