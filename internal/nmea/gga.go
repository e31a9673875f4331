package nmea

// GGA is a decoded GPS Fix Data sentence, matching
// original_source/software/include/nmea.h's NmeaGga layout.
type GGA struct {
	TimeMsOfDay uint32
	LatE7       int32
	LonE7       int32
	AltCm       int32
	HDOPCenti   uint16
	FixQuality  uint8
	Satellites  uint8
}

// ParseGGA decodes a complete "$...GGA,...*hh" sentence (checksum already
// validated by the caller via ChecksumOK, but re-checked here so ParseGGA
// is safe to call standalone). Requires at least 10 tokens; any field
// conversion failure fails the whole parse.
func ParseGGA(sentence []byte) (GGA, bool) {
	var out GGA
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
	if !hasSuffix3(tokens[0], "GGA") {
		return out, false
	}

	tmsod, ok := ParseTimeOfDay(tokens[1])
	if !ok {
		return out, false
	}
	lat, ok := ParseLatLon(tokens[2], tokens[3], true)
	if !ok {
		return out, false
	}
	lon, ok := ParseLatLon(tokens[4], tokens[5], false)
	if !ok {
		return out, false
	}
	fixq, ok := ParseUint(tokens[6])
	if !ok {
		return out, false
	}
	sats, ok := ParseUint(tokens[7])
	if !ok {
		return out, false
	}
	hdopX100, ok := ParseFixed(tokens[8], 100)
	if !ok {
		return out, false
	}
	altCmU, ok := ParseFixed(tokens[9], 100)
	if !ok {
		return out, false
	}

	out.TimeMsOfDay = tmsod
	out.LatE7 = lat
	out.LonE7 = lon
	out.FixQuality = saturateU8(fixq)
	out.Satellites = saturateU8(sats)
	out.HDOPCenti = saturateU16(hdopX100)
	out.AltCm = saturateI32(altCmU)
	return out, true
}

func saturateU8(v uint32) uint8 {
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func saturateU16(v uint32) uint16 {
	if v > 65535 {
		return 65535
	}
	return uint16(v)
}

func saturateI32(v uint32) int32 {
	const maxInt32 = uint32(1<<31 - 1)
	if v > maxInt32 {
		return 1<<31 - 1
	}
	return int32(v)
}
