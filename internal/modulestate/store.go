// Package modulestate holds the latest per-module GNSS snapshot. Writers
// are the acquisition goroutine only; readers are the fusion goroutine
// only, without any lock — torn reads are tolerated by the 2 second
// freshness filter in internal/fusion, per spec.md sections 4.7 and 5.
package modulestate

import (
	"github.com/rmingon/EchoGuard-8/internal/moduleindex"
)

// State is the latest snapshot for one module.
type State struct {
	HasFix         bool
	FixQuality     uint8
	Satellites     uint8
	HDOPCenti      uint16
	LatE7          int32
	LonE7          int32
	AltCm          int32
	SpeedCentiMS   uint16
	CourseCentiDeg uint16
	LastFixTick    int64 // milliseconds

	NMEASentences      uint32
	NMEAChecksumErrors uint32
}

// Store holds one State per module, indexed one-based at the API boundary.
type Store struct {
	modules [moduleindex.Count]State
}

// NewStore returns a zero-initialised Store, matching Gnss_Init's memset.
func NewStore() *Store {
	return &Store{}
}

// BumpSentenceCount increments the sentence counter unconditionally, called
// once per ingested line regardless of whether it later fails to parse.
func (s *Store) BumpSentenceCount(idx int) {
	if !moduleindex.Valid(idx) {
		return
	}
	s.modules[moduleindex.ToSlot(idx)].NMEASentences++
}

// BumpChecksumError increments the checksum-error counter for idx.
func (s *Store) BumpChecksumError(idx int) {
	if !moduleindex.Valid(idx) {
		return
	}
	s.modules[moduleindex.ToSlot(idx)].NMEAChecksumErrors++
}

// IngestGGA applies a successfully parsed GGA sentence to module idx.
func (s *Store) IngestGGA(idx int, fixQuality, satellites uint8, hdopCenti uint16, latE7, lonE7, altCm int32, nowMs int64) {
	if !moduleindex.Valid(idx) {
		return
	}
	m := &s.modules[moduleindex.ToSlot(idx)]
	m.HasFix = fixQuality > 0
	m.FixQuality = fixQuality
	m.Satellites = satellites
	m.HDOPCenti = hdopCenti
	m.LatE7 = latE7
	m.LonE7 = lonE7
	m.AltCm = altCm
	m.LastFixTick = nowMs
}

// IngestRMC applies a successfully parsed, status='A' RMC sentence to
// module idx. Callers must not invoke this for status != 'A' sentences —
// matching original_source/software/src/gnss.c's ingest_line, which checks
// rmc.status == 'A' before calling in to the store at all.
func (s *Store) IngestRMC(idx int, latE7, lonE7 int32, speedCentiMS, courseCentiDeg uint16, nowMs int64) {
	if !moduleindex.Valid(idx) {
		return
	}
	m := &s.modules[moduleindex.ToSlot(idx)]
	m.HasFix = true
	m.LatE7 = latE7
	m.LonE7 = lonE7
	m.SpeedCentiMS = speedCentiMS
	m.CourseCentiDeg = courseCentiDeg
	m.LastFixTick = nowMs
}

// Snapshot returns a value copy of every module's latest state, safe for
// the fusion goroutine to iterate without synchronising with the writer.
func (s *Store) Snapshot() [moduleindex.Count]State {
	return s.modules
}

// Get returns a value copy of one module's latest state.
func (s *Store) Get(idx int) (State, bool) {
	if !moduleindex.Valid(idx) {
		return State{}, false
	}
	return s.modules[moduleindex.ToSlot(idx)], true
}
