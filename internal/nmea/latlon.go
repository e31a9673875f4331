package nmea

// ParseLatLon decodes a DDMM.mmmm (latitude, 2 degree digits) or
// DDDMM.mmmm (longitude, 3 degree digits) coordinate plus a hemisphere
// character into degrees * 1e7, signed. The minutes component is scaled up
// to a fixed 1e6 denominator before dividing by 6 so the whole computation
// stays in unsigned integer arithmetic down to sub-centimetre resolution,
// per spec.md section 4.6.
func ParseLatLon(value, hemi []byte, isLat bool) (int32, bool) {
	if len(value) == 0 || len(hemi) == 0 {
		return 0, false
	}
	degDigits := 3
	if isLat {
		degDigits = 2
	}
	if len(value) < degDigits+2 {
		return 0, false
	}

	var deg uint32
	for i := 0; i < degDigits; i++ {
		c := value[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		deg = deg*10 + uint32(c-'0')
	}

	minStr := value[degDigits:]
	if minStr[0] < '0' || minStr[0] > '9' || minStr[1] < '0' || minStr[1] > '9' {
		return 0, false
	}
	minutesInt := uint32(minStr[0]-'0')*10 + uint32(minStr[1]-'0')

	var minutesFrac, fracScale uint32 = 0, 1
	if len(minStr) > 2 && minStr[2] == '.' {
		for _, c := range minStr[3:] {
			if fracScale >= 1000000 {
				break
			}
			if c < '0' || c > '9' {
				break
			}
			minutesFrac = minutesFrac*10 + uint32(c-'0')
			fracScale *= 10
		}
	}
	for fracScale < 1000000 {
		minutesFrac *= 10
		fracScale *= 10
	}

	minutesX1e6 := minutesInt*1000000 + minutesFrac
	signedDegE7 := int32(deg*10000000 + minutesX1e6/6)

	h := hemi[0]
	switch {
	case isLat && h == 'S':
		signedDegE7 = -signedDegE7
	case !isLat && h == 'W':
		signedDegE7 = -signedDegE7
	case isLat && h == 'N':
	case !isLat && h == 'E':
	default:
		return 0, false
	}
	return signedDegE7, true
}
