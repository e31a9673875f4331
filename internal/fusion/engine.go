// Package fusion implements the outlier-rejecting spatial fusion engine:
// median-centre candidate filtering, HDOP-scaled residual rejection,
// asymmetric fault-score book-keeping, HDOP-weighted averaging, and status
// classification, per spec.md section 4.8. It is grounded on
// original_source/software/src/fusion.c, translated from float geometry
// into the same float geometry Go exposes via math.Sqrt/math.Cos — spec.md
// section 9 explicitly scopes floating point to "the fusion residual step
// ... only for eight values per cycle", so no fixed-point substitute is
// warranted here the way it is in internal/nmea.
package fusion

import (
	"math"

	"github.com/rs/xid"

	"github.com/rmingon/EchoGuard-8/internal/moduleindex"
	"github.com/rmingon/EchoGuard-8/internal/modulestate"
)

// Status classifies the fused result, per spec.md section 4.8's table.
type Status int

const (
	NoFix Status = iota
	OK
	Degraded
	Interference
)

func (s Status) String() string {
	switch s {
	case NoFix:
		return "NO_FIX"
	case OK:
		return "OK"
	case Degraded:
		return "DEGRADED"
	case Interference:
		return "INTERFERENCE"
	default:
		return "UNKNOWN"
	}
}

// Result is the fused output snapshot, per spec.md section 3's FusionResult.
// CycleID is a log/telemetry correlation label, not part of the wire frame
// (internal/spiframe.BuildFrame does not encode it) — grounded on
// runZeroInc-sockstats' exporter_example2, which labels each tracked
// connection with xid.New().String() rather than a sequential counter.
type Result struct {
	HasFix          bool
	Status          Status
	LatE7           int32
	LonE7           int32
	AltCm           int32
	UsedModules     uint8
	RejectedModules uint8
	MaxResidualCm   uint16
	AvgHDOPCenti    uint16
	LastUpdateTick  int64
	CycleID         string
}

// staleAfterMs is the freshness window past which a module's last fix is
// ignored by the candidate filter, per spec.md section 4.8.
const staleAfterMs = 2000

// metresPerDegree converts a degree of latitude (or, scaled by cos(lat), a
// degree of longitude) to metres, per spec.md section 4.8's local metric.
const metresPerDegree = 111320.0

// Engine runs the fusion cycle over a modulestate.Store's snapshot, keeping
// its own fault-score state across cycles.
type Engine struct {
	faults faultScores
}

// NewEngine returns a fusion Engine with every module's fault score at 0.
func NewEngine() *Engine {
	return &Engine{}
}

// FaultScore returns module idx's current fault score, for metrics/tests.
func (e *Engine) FaultScore(idx int) int {
	if !moduleindex.Valid(idx) {
		return 0
	}
	return e.faults.value(moduleindex.ToSlot(idx))
}

type candidate struct {
	slot      int
	latE7     int32
	lonE7     int32
	altCm     int32
	hdopCenti uint16
}

// Run executes one fusion cycle over snap as observed at nowMs, per spec.md
// section 4.8, and returns the published Result. It also updates e's
// internal fault scores for every module.
func (e *Engine) Run(snap [moduleindex.Count]modulestate.State, nowMs int64) Result {
	cycleID := xid.New().String()

	// A module banished when the cycle begins sits this cycle out even if
	// decayBanished takes it below the threshold; it rejoins the candidate
	// filter on the next cycle.
	var banishedAtStart [moduleindex.Count]bool
	for i := range banishedAtStart {
		banishedAtStart[i] = e.faults.banished(i)
	}
	e.faults.decayBanished()

	var candidates []candidate
	for i := 0; i < moduleindex.Count; i++ {
		if banishedAtStart[i] {
			// decayBanished already applied this cycle's only score
			// change for a banished module. Applying outcomeNotCandidate
			// on top would add back exactly what decay just removed,
			// pinning the score at the banishment boundary forever.
			continue
		}
		m := snap[i]
		isCandidate := m.HasFix && m.FixQuality > 0 && m.HDOPCenti > 0 &&
			(nowMs-m.LastFixTick) <= staleAfterMs
		if !isCandidate {
			e.faults.update(i, outcomeNotCandidate)
			continue
		}
		candidates = append(candidates, candidate{
			slot:      i,
			latE7:     m.LatE7,
			lonE7:     m.LonE7,
			altCm:     m.AltCm,
			hdopCenti: m.HDOPCenti,
		})
	}

	if len(candidates) == 0 {
		return Result{HasFix: false, Status: NoFix, LastUpdateTick: nowMs, CycleID: cycleID}
	}

	medianLatE7, medianLonE7 := medianCentre(candidates)
	medianLatRad := (float64(medianLatE7) / 1e7) * math.Pi / 180.0

	type scored struct {
		candidate
		residualM float64
		threshold float64
		rejected  bool
	}

	scoredCandidates := make([]scored, len(candidates))
	for i, c := range candidates {
		dLatDeg := float64(c.latE7-medianLatE7) / 1e7
		dLonDeg := float64(c.lonE7-medianLonE7) / 1e7
		dy := dLatDeg * metresPerDegree
		dx := dLonDeg * metresPerDegree * math.Cos(medianLatRad)
		residual := math.Sqrt(dx*dx + dy*dy)

		hdop := float64(c.hdopCenti) / 100.0
		hdop = clamp(hdop, 0.5, 50)
		threshold := clamp(20+15*hdop, 25, 150)

		scoredCandidates[i] = scored{candidate: c, residualM: residual, threshold: threshold, rejected: residual > threshold}
	}

	var (
		usedCount     int
		rejectedCount int
		maxResidualM  float64
		sumWeight     float64
		sumWeightLat  float64
		sumWeightLon  float64
		sumWeightAlt  float64
		sumHDOPCenti  int64
	)

	for _, sc := range scoredCandidates {
		if sc.rejected {
			rejectedCount++
			e.faults.update(sc.slot, outcomeRejected)
			continue
		}

		usedCount++
		sumHDOPCenti += int64(sc.hdopCenti)
		if sc.residualM > maxResidualM {
			maxResidualM = sc.residualM
		}

		switch {
		case sc.residualM < 0.5*sc.threshold:
			e.faults.update(sc.slot, outcomeGood)
		case sc.residualM <= sc.threshold:
			e.faults.update(sc.slot, outcomeMarginal)
		}
		// residualM > threshold is unreachable here: that case was
		// already routed to the rejected arm above, preserving the
		// mutual exclusivity documented in spec.md section 9.

		hdop := float64(sc.hdopCenti) / 100.0
		w := 1.0 / (hdop * hdop)
		sumWeight += w
		sumWeightLat += w * float64(sc.latE7)
		sumWeightLon += w * float64(sc.lonE7)
		sumWeightAlt += w * float64(sc.altCm)
	}

	if usedCount == 0 {
		return Result{
			HasFix:          false,
			Status:          NoFix,
			UsedModules:     0,
			RejectedModules: uint8(rejectedCount),
			LastUpdateTick:  nowMs,
			CycleID:         cycleID,
		}
	}

	result := Result{
		HasFix:          true,
		LatE7:           int32(sumWeightLat / sumWeight),
		LonE7:           int32(sumWeightLon / sumWeight),
		AltCm:           int32(sumWeightAlt / sumWeight),
		UsedModules:     uint8(usedCount),
		RejectedModules: uint8(rejectedCount),
		MaxResidualCm:   saturateU16(maxResidualM * 100),
		AvgHDOPCenti:    saturateU16(float64(sumHDOPCenti) / float64(usedCount)),
		LastUpdateTick:  nowMs,
		CycleID:         cycleID,
	}
	result.Status = classify(result)
	return result
}

// classify implements spec.md section 4.8's status table.
func classify(r Result) Status {
	used := int(r.UsedModules)
	rejected := int(r.RejectedModules)
	switch {
	case used >= 4 && rejected <= 1 && r.MaxResidualCm < 3000 && r.AvgHDOPCenti < 250:
		return OK
	case used >= 2 && (rejected >= 2 || r.MaxResidualCm > 8000 || r.AvgHDOPCenti > 500):
		return Interference
	case used >= 1:
		return Degraded
	default:
		return NoFix
	}
}

// medianCentre sorts candidate latitudes and longitudes independently
// (insertion sort, n <= 8 per spec.md section 4.1's table) and returns the
// upper-median of each, per spec.md section 4.8.
func medianCentre(candidates []candidate) (latE7, lonE7 int32) {
	lats := make([]int32, len(candidates))
	lons := make([]int32, len(candidates))
	for i, c := range candidates {
		lats[i] = c.latE7
		lons[i] = c.lonE7
	}
	insertionSortI32(lats)
	insertionSortI32(lons)
	mid := len(candidates) / 2
	return lats[mid], lons[mid]
}

// insertionSortI32 sorts small slices in place; matches the O(n^2)
// insertion sort spec.md section 4.8 calls for at n<=8.
func insertionSortI32(s []int32) {
	for i := 1; i < len(s); i++ {
		v := s[i]
		j := i - 1
		for j >= 0 && s[j] > v {
			s[j+1] = s[j]
			j--
		}
		s[j+1] = v
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func saturateU16(v float64) uint16 {
	if v < 0 {
		return 0
	}
	if v > 65535 {
		return 65535
	}
	return uint16(v)
}
