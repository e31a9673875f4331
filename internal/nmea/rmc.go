package nmea

// RMC is a decoded Recommended Minimum sentence, matching
// original_source/software/include/nmea.h's NmeaRmc layout.
type RMC struct {
	TimeMsOfDay    uint32
	LatE7          int32
	LonE7          int32
	Status         byte // 'A' valid, 'V' invalid
	SpeedCentiMS   uint16
	CourseCentiDeg uint16
}

// knotToCentiMS converts speed in knots*100 to centi-metres-per-second:
// speed_centi_ms = (knots_x100 * 51444) / 100000, truncating, per
// spec.md section 4.6 (1 knot = 0.514444 m/s).
func knotToCentiMS(knotsX100 uint32) uint32 {
	return (knotsX100 * 51444) / 100000
}

// ParseRMC decodes a complete "$...RMC,...*hh" sentence. Requires at least
// 10 tokens; any field conversion failure fails the whole parse. Speed and
// course conversion failures are tolerated (they default to zero) to match
// original_source/software/src/nmea.c's Nmea_ParseRmc, which ignores the
// return value of parse_fixed_u32 for those two fields.
func ParseRMC(sentence []byte) (RMC, bool) {
	var out RMC
	if len(sentence) == 0 || !ChecksumOK(sentence) {
		return out, false
	}
	line := trimLineEnding(sentence)
	if line[0] != '$' {
		return out, false
	}

	tokens := tokenize(line[1:])
	if len(tokens) < 10 {
		return out, false
	}
	if !hasSuffix3(tokens[0], "RMC") {
		return out, false
	}

	tmsod, ok := ParseTimeOfDay(tokens[1])
	if !ok {
		return out, false
	}
	if len(tokens[2]) == 0 {
		return out, false
	}
	lat, ok := ParseLatLon(tokens[3], tokens[4], true)
	if !ok {
		return out, false
	}
	lon, ok := ParseLatLon(tokens[5], tokens[6], false)
	if !ok {
		return out, false
	}

	speedKnotsX100, _ := ParseFixed(tokens[7], 100)
	courseDegX100, _ := ParseFixed(tokens[8], 100)

	out.TimeMsOfDay = tmsod
	out.Status = tokens[2][0]
	out.LatE7 = lat
	out.LonE7 = lon
	out.SpeedCentiMS = saturateU16(knotToCentiMS(speedKnotsX100))
	out.CourseCentiDeg = saturateU16(courseDegX100)
	return out, true
}
