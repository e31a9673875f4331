package fusion

import (
	"testing"

	"github.com/rmingon/EchoGuard-8/internal/moduleindex"
	"github.com/rmingon/EchoGuard-8/internal/modulestate"
)

func freshState(latE7, lonE7 int32, hdopCenti uint16, nowMs int64) modulestate.State {
	return modulestate.State{
		HasFix:      true,
		FixQuality:  1,
		Satellites:  8,
		HDOPCenti:   hdopCenti,
		LatE7:       latE7,
		LonE7:       lonE7,
		AltCm:       5000,
		LastFixTick: nowMs,
	}
}

func TestFusionHappyPathAllEightAgree(t *testing.T) {
	const nowMs = 100_000
	var snap [moduleindex.Count]modulestate.State
	for i := range snap {
		snap[i] = freshState(481173000, 115166666, 100, nowMs)
	}

	e := NewEngine()
	r := e.Run(snap, nowMs)

	if r.Status != OK {
		t.Fatalf("status = %v, want OK", r.Status)
	}
	if r.UsedModules != 8 {
		t.Errorf("used_modules = %d, want 8", r.UsedModules)
	}
	if r.RejectedModules != 0 {
		t.Errorf("rejected_modules = %d, want 0", r.RejectedModules)
	}
	if r.MaxResidualCm != 0 {
		t.Errorf("max_residual_cm = %d, want 0", r.MaxResidualCm)
	}
	if r.LatE7 != 481173000 || r.LonE7 != 115166666 {
		t.Errorf("lat/lon = %d/%d, want 481173000/115166666", r.LatE7, r.LonE7)
	}
	if r.AvgHDOPCenti != 100 {
		t.Errorf("avg_hdop_centi = %d, want 100", r.AvgHDOPCenti)
	}
}

func TestFusionOutlierRejection(t *testing.T) {
	const nowMs = 100_000
	var snap [moduleindex.Count]modulestate.State
	for i := 0; i < 7; i++ {
		snap[i] = freshState(481173000, 115166666, 100, nowMs)
	}
	// module 8 (slot 7): ~300m north at the same longitude.
	snap[7] = freshState(481203000, 115166666, 100, nowMs)

	e := NewEngine()
	r := e.Run(snap, nowMs)

	if r.UsedModules != 7 {
		t.Errorf("used_modules = %d, want 7", r.UsedModules)
	}
	if r.RejectedModules != 1 {
		t.Errorf("rejected_modules = %d, want 1", r.RejectedModules)
	}
	if r.Status != OK {
		t.Errorf("status = %v, want OK (<=1 rejection still OK)", r.Status)
	}
	if got := e.FaultScore(8); got != 3 {
		t.Errorf("module 8 fault score = %d, want 3 after one rejection", got)
	}
}

func TestFusionBanishmentAndRecovery(t *testing.T) {
	const baseMs = 100_000
	var snap [moduleindex.Count]modulestate.State
	for i := 0; i < 7; i++ {
		snap[i] = freshState(481173000, 115166666, 100, baseMs)
	}
	snap[7] = freshState(481203000, 115166666, 100, baseMs)

	e := NewEngine()
	for cycle := 0; cycle < 34; cycle++ {
		nowMs := int64(baseMs + int64(cycle)*200)
		snap[7].LastFixTick = nowMs
		for i := 0; i < 7; i++ {
			snap[i].LastFixTick = nowMs
		}
		e.Run(snap, nowMs)
	}

	if got := e.FaultScore(8); got < banishThreshold {
		t.Fatalf("module 8 fault score = %d after 34 rejections, want >= %d", got, banishThreshold)
	}

	// Banished: excluded from the candidate loop entirely, so the only
	// change to its score each cycle is decayBanished's unconditional -1.
	scoreAtBanishment := e.FaultScore(8)
	nowMs := int64(baseMs + 34*200)
	for i := 0; i < 7; i++ {
		snap[i].LastFixTick = nowMs
	}
	snap[7].LastFixTick = nowMs
	e.Run(snap, nowMs)
	if got := e.FaultScore(8); got != scoreAtBanishment-1 {
		t.Errorf("banished module score = %d after one more cycle, want %d (pure decay)", got, scoreAtBanishment-1)
	}

	// Continued decay, unconditional while banished, must cross back below
	// the banishment threshold well within the cycle budget implied by the
	// score's saturation ceiling (<=500 cycles from full saturation).
	for cycle := 0; cycle < 500; cycle++ {
		nowMs = int64(baseMs + int64(35+cycle)*200)
		for i := 0; i < 7; i++ {
			snap[i].LastFixTick = nowMs
		}
		e.Run(snap, nowMs)
		if e.FaultScore(8) < banishThreshold {
			return
		}
	}
	t.Fatalf("module 8 fault score = %d after 500 decay cycles, want rehabilitated below %d", e.FaultScore(8), banishThreshold)
}

func TestFusionZeroCandidatesIsNoFix(t *testing.T) {
	var snap [moduleindex.Count]modulestate.State
	e := NewEngine()
	r := e.Run(snap, 1000)
	if r.Status != NoFix || r.HasFix {
		t.Fatalf("got status=%v has_fix=%v, want NO_FIX/false", r.Status, r.HasFix)
	}
}

func TestFusionStaleModuleExcluded(t *testing.T) {
	const nowMs = 100_000
	var snap [moduleindex.Count]modulestate.State
	for i := 0; i < 4; i++ {
		snap[i] = freshState(481173000, 115166666, 100, nowMs)
	}
	// remaining four stale (last fix 3s ago).
	for i := 4; i < 8; i++ {
		snap[i] = freshState(481173000, 115166666, 100, nowMs-3000)
	}

	e := NewEngine()
	r := e.Run(snap, nowMs)
	if r.UsedModules != 4 {
		t.Errorf("used_modules = %d, want 4 (stale modules excluded)", r.UsedModules)
	}
}
