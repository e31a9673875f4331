// Package acquire implements the heterogeneous serial acquisition layer:
// hardware UART receivers (internal/acquire/hwuart.go), bit-banged
// software UART receivers sharing one periodic ticker
// (internal/acquire/softuart.go), and the uniform facade over both
// (spec.md sections 4.2-4.4).
package acquire

import (
	"github.com/rmingon/EchoGuard-8/internal/moduleindex"
	"github.com/rmingon/EchoGuard-8/internal/ringbuf"
)

// Facade dispatches ReadBytes to whichever ring backs a given module,
// hardware or software, per spec.md section 4.4.
type Facade struct {
	rings [moduleindex.Count]*ringbuf.Ring
}

// NewFacade builds a Facade over the given per-module rings. Entries left
// nil are simply never readable (ReadBytes returns 0), which lets callers
// wire only the modules a given deployment actually uses.
func NewFacade(rings [moduleindex.Count]*ringbuf.Ring) *Facade {
	return &Facade{rings: rings}
}

// ReadBytes drains up to len(dst) bytes from moduleIndex's ring, returning
// 0 for an invalid index or an unwired module.
func (f *Facade) ReadBytes(moduleIndex int, dst []byte) int {
	if !moduleindex.Valid(moduleIndex) {
		return 0
	}
	r := f.rings[moduleindex.ToSlot(moduleIndex)]
	if r == nil {
		return 0
	}
	return r.PopBulk(dst)
}
