package acquire

import (
	"time"

	"github.com/rmingon/EchoGuard-8/internal/hwio"
	"github.com/rmingon/EchoGuard-8/internal/ringbuf"
)

// softUartState is one bit-banged channel's receive state, per spec.md
// section 3's SoftUartChannel and the state table in section 4.3.
type softUartState int

const (
	softIdle softUartState = iota
	softStart
	softData
	softStop
)

// SoftUartChannel is one bit-banged software UART receiver. All fields are
// mutated only from tick, called at 8x baud by SoftUartBank; the consumer
// side only ever reads Ring.
type SoftUartChannel struct {
	pin hwio.GPIO

	state     softUartState
	subTick   int
	bitIndex  int
	byteAccum byte

	ring *ringbuf.Ring
}

// NewSoftUartChannel wires one RX pin to a fresh ring of ringCapacity bytes.
func NewSoftUartChannel(pin hwio.GPIO, ringCapacity int) (*SoftUartChannel, error) {
	ring, err := ringbuf.New(ringCapacity)
	if err != nil {
		return nil, err
	}
	return &SoftUartChannel{pin: pin, ring: ring}, nil
}

// Ring returns the byte ring this channel pushes into.
func (c *SoftUartChannel) Ring() *ringbuf.Ring {
	return c.ring
}

// tick advances the state machine by one 8x-oversample phase, given the
// already-sampled line level. It implements the table from spec.md section
// 4.3 exactly: IDLE waits for a low line, START re-checks at sub_tick 4 to
// reject glitches, DATA samples each bit at sub_tick 8 (one full bit time
// after the edge), STOP requires the line back high to accept the byte.
func (c *SoftUartChannel) tick(line hwio.Level) {
	switch c.state {
	case softIdle:
		if line == hwio.Low {
			c.state = softStart
			c.subTick = 0
		}

	case softStart:
		c.subTick++
		if c.subTick == 4 {
			if line == hwio.Low {
				c.state = softData
				c.subTick = 0
				c.bitIndex = 0
				c.byteAccum = 0
			} else {
				c.state = softIdle
			}
		}

	case softData:
		c.subTick++
		if c.subTick == 8 {
			if line == hwio.High {
				c.byteAccum |= 1 << uint(c.bitIndex)
			}
			c.bitIndex++
			c.subTick = 0
			if c.bitIndex == 8 {
				c.state = softStop
			}
		}

	case softStop:
		c.subTick++
		if c.subTick == 8 {
			if line == hwio.High {
				c.ring.Push(c.byteAccum)
			}
			c.state = softIdle
			c.subTick = 0
		}
	}
}

// SoftUartBank drives every software-UART channel from one shared ticker,
// mirroring the single periodic timer ISR of spec.md section 4.3: "A single
// periodic timer at 8x baud drives the sampler for every soft-UART channel
// on every tick."
type SoftUartBank struct {
	channels []*SoftUartChannel
	group    hwio.GPIOGroup
	period   time.Duration

	stop chan struct{}
}

// NewSoftUartBank builds a bank over the given channels, sampled as a group
// (one batched GPIO read per tick, matching ReadAll's purpose of avoiding
// per-pin read overhead inside the hard real-time tick budget).
func NewSoftUartBank(channels []*SoftUartChannel, group hwio.GPIOGroup, baud int) *SoftUartBank {
	period := time.Second / time.Duration(baud*8)
	return &SoftUartBank{channels: channels, group: group, period: period, stop: make(chan struct{})}
}

// Start launches the shared ticker goroutine, the Go proxy for the timer
// ISR described in spec.md section 7's hard real-time task list.
func (b *SoftUartBank) Start() {
	go b.run()
}

// Stop halts the ticker goroutine.
func (b *SoftUartBank) Stop() {
	close(b.stop)
}

func (b *SoftUartBank) run() {
	// Best-effort: a non-realtime scheduler still samples correctly, just
	// with looser timing margin against the 8x-baud tick.
	_ = hwio.Realtime()

	ticker := time.NewTicker(b.period)
	defer ticker.Stop()
	for {
		select {
		case <-b.stop:
			return
		case <-ticker.C:
			levels := b.group.ReadAll()
			for i, ch := range b.channels {
				if i >= len(levels) {
					break
				}
				ch.tick(levels[i])
			}
		}
	}
}
