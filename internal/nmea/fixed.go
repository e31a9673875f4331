package nmea

// ParseUint parses an unsigned decimal integer with no sign and no
// fractional part, failing on any non-digit.
func ParseUint(s []byte) (uint32, bool) {
	if len(s) == 0 {
		return 0, false
	}
	var v uint32
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		v = v*10 + uint32(c-'0')
	}
	return v, true
}

// ParseFixed computes int_part*scale + frac, where frac is the first
// log10(scale) fractional digits, zero-padded on the right — matching
// original_source/software/src/nmea.c's parse_fixed_u32.
func ParseFixed(s []byte, scale uint32) (uint32, bool) {
	if len(s) == 0 || scale == 0 {
		return 0, false
	}
	var intPart, fracPart, fracScale uint32 = 0, 0, 1
	seenDot := false

	for _, c := range s {
		switch {
		case c == '.':
			if seenDot {
				return 0, false
			}
			seenDot = true
		case c < '0' || c > '9':
			return 0, false
		default:
			if !seenDot {
				intPart = intPart*10 + uint32(c-'0')
			} else if fracScale < scale {
				fracPart = fracPart*10 + uint32(c-'0')
				fracScale *= 10
			}
		}
	}
	for fracScale < scale {
		fracPart *= 10
		fracScale *= 10
	}
	return intPart*scale + fracPart, true
}
