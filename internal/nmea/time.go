package nmea

// ParseTimeOfDay parses an NMEA HHMMSS[.sss] time field into
// milliseconds-of-day. HH must be <= 23, MM and SS <= 59. A missing
// fractional part yields 0 milliseconds.
func ParseTimeOfDay(s []byte) (uint32, bool) {
	if len(s) < 6 {
		return 0, false
	}
	for _, c := range s[:6] {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	hh := uint32(s[0]-'0')*10 + uint32(s[1]-'0')
	mm := uint32(s[2]-'0')*10 + uint32(s[3]-'0')
	ss := uint32(s[4]-'0')*10 + uint32(s[5]-'0')
	if hh > 23 || mm > 59 || ss > 59 {
		return 0, false
	}

	var ms uint32
	if len(s) > 6 && s[6] == '.' {
		var frac, fracScale uint32 = 0, 1
		for _, c := range s[7:] {
			if fracScale >= 1000 {
				break
			}
			if c < '0' || c > '9' {
				break
			}
			frac = frac*10 + uint32(c-'0')
			fracScale *= 10
		}
		for fracScale < 1000 {
			frac *= 10
			fracScale *= 10
		}
		ms = frac
	}

	return (((hh*60)+mm)*60+ss)*1000 + ms, true
}
