package acquire

import (
	"github.com/rmingon/EchoGuard-8/internal/modulestate"
	"github.com/rmingon/EchoGuard-8/internal/nmea"
)

// IngestLine applies one assembled NMEA line to module idx's state, mirroring
// original_source/software/src/gnss.c's ingest_line: the sentence counter
// always advances, a bad checksum only advances the error counter, and a good
// checksum is tried first as GGA then as RMC (accepted only for status 'A').
func IngestLine(store *modulestate.Store, idx int, line []byte, nowMs int64) {
	store.BumpSentenceCount(idx)

	if !nmea.ChecksumOK(line) {
		store.BumpChecksumError(idx)
		return
	}

	if gga, ok := nmea.ParseGGA(line); ok {
		store.IngestGGA(idx, gga.FixQuality, gga.Satellites, gga.HDOPCenti, gga.LatE7, gga.LonE7, gga.AltCm, nowMs)
		return
	}

	if rmc, ok := nmea.ParseRMC(line); ok && rmc.Status == 'A' {
		store.IngestRMC(idx, rmc.LatE7, rmc.LonE7, rmc.SpeedCentiMS, rmc.CourseCentiDeg, nowMs)
	}
}
