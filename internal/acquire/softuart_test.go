package acquire

import (
	"testing"

	"github.com/rmingon/EchoGuard-8/internal/hwio"
)

// feedByte drives one channel's tick function through the full 8x-oversample
// sequence for one UART byte (1 start bit, 8 data bits LSB-first, 1 stop
// bit), each bit held for 8 sub-ticks, per spec.md section 4.3's state table.
func feedByte(c *SoftUartChannel, b byte) {
	levels := make([]hwio.Level, 0, 80)
	levels = append(levels, repeat(hwio.Low, 8)...) // start bit
	for i := 0; i < 8; i++ {
		bit := hwio.Low
		if b&(1<<uint(i)) != 0 {
			bit = hwio.High
		}
		levels = append(levels, repeat(bit, 8)...)
	}
	levels = append(levels, repeat(hwio.High, 8)...) // stop bit
	for _, lv := range levels {
		c.tick(lv)
	}
}

func repeat(lv hwio.Level, n int) []hwio.Level {
	out := make([]hwio.Level, n)
	for i := range out {
		out[i] = lv
	}
	return out
}

func TestSoftUartChannelDecodesOneByte(t *testing.T) {
	c, err := NewSoftUartChannel(nil, 16)
	if err != nil {
		t.Fatalf("NewSoftUartChannel: %v", err)
	}

	feedByte(c, 0x41) // 'A'

	buf := make([]byte, 4)
	n := c.Ring().PopBulk(buf)
	if n != 1 || buf[0] != 0x41 {
		t.Fatalf("decoded %d bytes %v, want [0x41]", n, buf[:n])
	}
}

func TestSoftUartChannelRejectsFramingError(t *testing.T) {
	c, err := NewSoftUartChannel(nil, 16)
	if err != nil {
		t.Fatalf("NewSoftUartChannel: %v", err)
	}

	// Start bit, 8 data bits, but the line is low (not high) at the stop-bit
	// sample point: a framing error, and the byte must be dropped.
	for _, lv := range repeat(hwio.Low, 8) {
		c.tick(lv)
	}
	for i := 0; i < 8; i++ {
		for _, lv := range repeat(hwio.High, 8) {
			c.tick(lv)
		}
	}
	for _, lv := range repeat(hwio.Low, 8) {
		c.tick(lv)
	}

	buf := make([]byte, 4)
	if n := c.Ring().PopBulk(buf); n != 0 {
		t.Fatalf("decoded %d bytes on a framing error, want 0", n)
	}
}

func TestSoftUartChannelRejectsGlitchAtStartBit(t *testing.T) {
	c, err := NewSoftUartChannel(nil, 16)
	if err != nil {
		t.Fatalf("NewSoftUartChannel: %v", err)
	}

	// Line drops low (enters START) but is back high by the sub_tick-4
	// re-check — a glitch, not a real start bit — so the state machine must
	// fall back to IDLE and be ready to decode a clean byte right after.
	c.tick(hwio.Low)
	c.tick(hwio.High)
	c.tick(hwio.High)
	c.tick(hwio.High)
	c.tick(hwio.High)
	feedByte(c, 0xFF)

	buf := make([]byte, 4)
	n := c.Ring().PopBulk(buf)
	if n != 1 || buf[0] != 0xFF {
		t.Fatalf("decoded %d bytes %v after glitch recovery, want exactly [0xFF]", n, buf[:n])
	}
}
