package hwio

import (
	"fmt"
	"time"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/host"
)

// periphInit guards periph.io's process-wide host.Init(), which must run
// exactly once before any pin is looked up by name.
var periphInit = func() func() error {
	done := false
	return func() error {
		if done {
			return nil
		}
		if _, err := host.Init(); err != nil {
			return err
		}
		done = true
		return nil
	}
}()

// periphGPIO adapts a periph.io gpio.PinIO to the hwio.GPIO interface. This
// is the primary backend: every production wiring of the soft-UART sampler
// and the SPI chip-select line in cmd/echoguard8d goes through this type,
// the same way tve-devices/cmd/sx1231-test wires an sx1231.Radio's
// interrupt pin via periph.io's gpio.ByName.
type periphGPIO struct {
	pin gpio.PinIO
}

// NewPeriphGPIO looks up a GPIO line by the platform name periph.io exposes
// (e.g. "GPIO17" on a Raspberry Pi, or a sysfs-style name on other SBCs).
func NewPeriphGPIO(name string) (GPIO, error) {
	if err := periphInit(); err != nil {
		return nil, fmt.Errorf("hwio: periph host init: %w", err)
	}
	pin := gpio.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("hwio: no such gpio pin %q", name)
	}
	return &periphGPIO{pin: pin}, nil
}

func (g *periphGPIO) In(edge Edge) error {
	var pe gpio.Edge
	switch edge {
	case NoEdge:
		pe = gpio.NoEdge
	case RisingEdge:
		pe = gpio.RisingEdge
	case FallingEdge:
		pe = gpio.FallingEdge
	case BothEdges:
		pe = gpio.BothEdges
	default:
		return fmt.Errorf("hwio: unknown edge %d", edge)
	}
	return g.pin.In(gpio.PullNoChange, pe)
}

func (g *periphGPIO) Read() Level {
	if g.pin.Read() == gpio.High {
		return High
	}
	return Low
}

func (g *periphGPIO) WaitForEdge(timeout time.Duration) bool {
	return g.pin.WaitForEdge(timeout)
}

func (g *periphGPIO) Out(level Level) {
	if level == High {
		g.pin.Out(gpio.High)
	} else {
		g.pin.Out(gpio.Low)
	}
}

func (g *periphGPIO) Name() string {
	return g.pin.Name()
}

// periphGPIOGroup batches reads for a slice of periph.io pins that live on
// the same port; periph.io itself has no cross-platform "read whole port"
// primitive, so this batches at the call-site boundary instead — each pin
// read still hits the kernel once, but all five soft-UART lines are read
// back-to-back in one pass per timer tick rather than interleaved with
// state-machine work.
type periphGPIOGroup struct {
	pins []gpio.PinIO
}

// NewPeriphGPIOGroup wires up a batch of named pins for GPIOGroup.ReadAll.
func NewPeriphGPIOGroup(names []string) (GPIOGroup, error) {
	if err := periphInit(); err != nil {
		return nil, fmt.Errorf("hwio: periph host init: %w", err)
	}
	pins := make([]gpio.PinIO, len(names))
	for i, name := range names {
		p := gpio.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("hwio: no such gpio pin %q", name)
		}
		if err := p.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
			return nil, fmt.Errorf("hwio: configure %q as input: %w", name, err)
		}
		pins[i] = p
	}
	return &periphGPIOGroup{pins: pins}, nil
}

func (g *periphGPIOGroup) ReadAll() []Level {
	out := make([]Level, len(g.pins))
	for i, p := range g.pins {
		if p.Read() == gpio.High {
			out[i] = High
		} else {
			out[i] = Low
		}
	}
	return out
}
