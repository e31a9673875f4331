package acquire

import (
	"testing"

	"github.com/rmingon/EchoGuard-8/internal/modulestate"
)

const ggaSentence = "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47"
const rmcSentenceActive = "$GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,,*11"
const rmcSentenceVoid = "$GPRMC,123519,V,4807.038,N,01131.000,E,022.4,084.4,230394,,*06"

func TestIngestLineAppliesGGA(t *testing.T) {
	store := modulestate.NewStore()
	IngestLine(store, 1, []byte(ggaSentence), 1000)

	got, ok := store.Get(1)
	if !ok || !got.HasFix {
		t.Fatalf("got = %+v, ok = %v, want fix applied", got, ok)
	}
	if got.LatE7 != 481173000 {
		t.Errorf("LatE7 = %d, want 481173000", got.LatE7)
	}
	if got.NMEASentences != 1 {
		t.Errorf("NMEASentences = %d, want 1", got.NMEASentences)
	}
}

func TestIngestLineBadChecksumOnlyBumpsErrorCounter(t *testing.T) {
	store := modulestate.NewStore()
	IngestLine(store, 2, []byte("$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*00"), 1000)

	got, _ := store.Get(2)
	if got.HasFix {
		t.Errorf("HasFix = true, want false for a checksum failure")
	}
	if got.NMEASentences != 1 {
		t.Errorf("NMEASentences = %d, want 1 (counted even on checksum failure)", got.NMEASentences)
	}
	if got.NMEAChecksumErrors != 1 {
		t.Errorf("NMEAChecksumErrors = %d, want 1", got.NMEAChecksumErrors)
	}
}

func TestIngestLineRMCVoidStatusIgnored(t *testing.T) {
	store := modulestate.NewStore()
	IngestLine(store, 3, []byte(rmcSentenceVoid), 1000)

	got, _ := store.Get(3)
	if got.HasFix {
		t.Errorf("HasFix = true, want false for RMC status 'V'")
	}
}

func TestIngestLineRMCActiveStatusApplied(t *testing.T) {
	store := modulestate.NewStore()
	IngestLine(store, 4, []byte(rmcSentenceActive), 2000)

	got, ok := store.Get(4)
	if !ok || !got.HasFix {
		t.Fatalf("got = %+v, ok = %v, want fix applied for RMC status 'A'", got, ok)
	}
	if got.LastFixTick != 2000 {
		t.Errorf("LastFixTick = %d, want 2000", got.LastFixTick)
	}
}
