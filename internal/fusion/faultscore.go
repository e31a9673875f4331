package fusion

import "github.com/rmingon/EchoGuard-8/internal/moduleindex"

// banishThreshold is the fault score at which a module is excluded from the
// candidate filter, per spec.md section 4.8.
const banishThreshold = 100

// maxFaultScore is the saturation ceiling for a module's fault score.
const maxFaultScore = 500

// outcome classifies what happened to one candidate module during a single
// fusion cycle, for the purpose of updating its fault score. The arms are
// deliberately mutually exclusive — see the comment in Engine.Run's
// used-candidate loop in engine.go for the rationale preserved from
// spec.md section 9's first open question.
type outcome int

const (
	// outcomeNotCandidate covers a module that failed the candidate filter
	// this cycle (no fix, stale, or zero HDOP). A module banished at the
	// start of the cycle is skipped and gets no outcome at all.
	outcomeNotCandidate outcome = iota
	// outcomeRejected is a candidate whose residual exceeded the
	// per-module threshold and was excluded from the weighted mean.
	outcomeRejected
	// outcomeGood is a used candidate with residual < 0.5*threshold.
	outcomeGood
	// outcomeMarginal is a used candidate with threshold/2 <= residual <= threshold.
	outcomeMarginal
)

// faultScores holds the asymmetric accrual/decay reliability index for every
// module, owned exclusively by the fusion task per spec.md section 5's
// shared-resource policy ("FaultScore[]: written and read only by the
// fusion task — no sharing").
type faultScores struct {
	scores [moduleindex.Count]int
}

// decayBanished decays every currently-banished module's score by 1,
// unconditionally, once per fusion cycle before the candidate filter runs.
//
// This resolves spec.md section 9's second open question: the source's
// candidate filter excludes banished modules before the used/not-used loop
// can ever decay them, so without an explicit rehabilitation rule a banished
// module would never recover. This repository picks the unconditional
// per-cycle decay: a module banished at score 500 is re-admitted to
// candidacy after at most 401 cycles (~80s at the 200ms fusion period).
// Engine.Run's candidate loop skips entirely (no outcomeNotCandidate) every
// module that was banished when the cycle began, including the cycle in
// which this decay takes it from 100 to 99; otherwise the +1 accrual would
// exactly offset the decay and the module would never rehabilitate.
func (f *faultScores) decayBanished() {
	for i := range f.scores {
		if f.scores[i] >= banishThreshold {
			f.scores[i]--
		}
	}
}

// banished reports whether module i is currently excluded from candidacy.
func (f *faultScores) banished(i int) bool {
	return f.scores[i] >= banishThreshold
}

// update applies exactly one outcome arm's delta to module i's score,
// saturating to [0, maxFaultScore].
func (f *faultScores) update(i int, o outcome) {
	delta := 0
	switch o {
	case outcomeNotCandidate:
		delta = 1
	case outcomeRejected:
		delta = 3
	case outcomeGood:
		delta = -2
	case outcomeMarginal:
		delta = -1
	}
	next := f.scores[i] + delta
	if next < 0 {
		next = 0
	}
	if next > maxFaultScore {
		next = maxFaultScore
	}
	f.scores[i] = next
}

// value returns module i's current fault score, for tests and metrics.
func (f *faultScores) value(i int) int {
	return f.scores[i]
}
