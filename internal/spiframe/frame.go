// Package spiframe builds and serves the 32-byte framed SPI slave snapshot
// described in spec.md section 4.9, grounded on
// original_source/software/src/spi_fusion.c: magic, field layout, and
// CRC placement are carried over exactly; only the STM32 SPI1 peripheral
// register choreography is replaced by a goroutine-per-chip-select-edge
// loop driven through internal/hwio, since Go has no SPI-slave-in-hardware
// primitive to bind to directly.
package spiframe

import (
	"encoding/binary"

	"github.com/rmingon/EchoGuard-8/internal/fusion"
)

// FrameSize is the fixed wire length of one published snapshot.
const FrameSize = 32

// magic identifies the frame format ('EGF1' little-endian), per spec.md
// section 4.9.
const magic uint32 = 0x31464745

// BuildFrame serialises r into a FrameSize-byte little-endian frame with a
// trailing CRC-16/CCITT-FALSE over bytes 0..29, per spec.md section 4.9's
// layout table.
func BuildFrame(r fusion.Result) [FrameSize]byte {
	var out [FrameSize]byte

	binary.LittleEndian.PutUint32(out[0:4], magic)
	binary.LittleEndian.PutUint32(out[4:8], uint32(r.LastUpdateTick))
	binary.LittleEndian.PutUint32(out[8:12], uint32(r.LatE7))
	binary.LittleEndian.PutUint32(out[12:16], uint32(r.LonE7))
	binary.LittleEndian.PutUint32(out[16:20], uint32(r.AltCm))
	binary.LittleEndian.PutUint16(out[20:22], r.AvgHDOPCenti)
	binary.LittleEndian.PutUint16(out[22:24], r.MaxResidualCm)
	out[24] = byte(r.Status)
	out[25] = r.UsedModules
	out[26] = r.RejectedModules
	if r.HasFix {
		out[27] = 1
	}
	// out[28:30] reserved, left zero.

	crc := crc16CCITTFalse(out[:FrameSize-2])
	binary.LittleEndian.PutUint16(out[FrameSize-2:FrameSize], crc)

	return out
}

// VerifyFrame reports whether frame's trailing CRC matches its first 30
// bytes and its magic is intact, for host-side (or test) round-trip checks.
func VerifyFrame(frame [FrameSize]byte) bool {
	if binary.LittleEndian.Uint32(frame[0:4]) != magic {
		return false
	}
	want := binary.LittleEndian.Uint16(frame[FrameSize-2 : FrameSize])
	got := crc16CCITTFalse(frame[:FrameSize-2])
	return want == got
}
