package geoloc

import (
	"regexp"
	"strconv"

	"github.com/conflictmap/telegram-geo-etl/internal/domain"
)

var (
	// decimalDegreesRe matches "50.4501, 30.5234" style coordinate pairs.
	decimalDegreesRe = regexp.MustCompile(`(-?\d+\.\d+),\s*(-?\d+\.\d+)`)

	// dmsRe matches degrees-minutes-seconds with hemisphere letters,
	// e.g. `40°42'51"N, 74°00'21"W`.
	dmsRe = regexp.MustCompile(`(\d+)°(\d+)'(\d+\.?\d*)"([NS]),\s*(\d+)°(\d+)'(\d+\.?\d*)"([EW])`)

	// labeledRe matches the labeled form "lat: 40.7128 ... lon: -74.0060".
	labeledRe = regexp.MustCompile(`lat:\s*(-?\d+\.\d+).*?lon:\s*(-?\d+\.\d+)`)
)

// ExtractCoordinates recognizes literal coordinate notations in text.
// The notations are tried in fixed priority order (decimal degrees, DMS,
// labeled lat/lon); the first pattern whose first match parses to an
// in-bounds coordinate wins. Out-of-bounds or unparsable matches fall
// through to the next notation. Multiple matches in one text are not
// aggregated.
func ExtractCoordinates(text string) (lat, lon float64, ok bool) {
	if m := decimalDegreesRe.FindStringSubmatch(text); m != nil {
		if lat, lon, ok = parsePair(m[1], m[2]); ok {
			return lat, lon, true
		}
	}

	if m := dmsRe.FindStringSubmatch(text); m != nil {
		if lat, lon, ok = parseDMS(m); ok {
			return lat, lon, true
		}
	}

	if m := labeledRe.FindStringSubmatch(text); m != nil {
		if lat, lon, ok = parsePair(m[1], m[2]); ok {
			return lat, lon, true
		}
	}

	return 0, 0, false
}

func parsePair(latStr, lonStr string) (float64, float64, bool) {
	lat, errLat := strconv.ParseFloat(latStr, 64)
	lon, errLon := strconv.ParseFloat(lonStr, 64)
	if errLat != nil || errLon != nil || !domain.ValidCoordinate(lat, lon) {
		return 0, 0, false
	}
	return lat, lon, true
}

// parseDMS converts a DMS submatch (deg, min, sec, hemisphere × 2) to
// decimal degrees. S and W hemispheres negate the summed magnitude.
func parseDMS(m []string) (float64, float64, bool) {
	lat, okLat := dmsToDecimal(m[1], m[2], m[3], m[4] == "S")
	lon, okLon := dmsToDecimal(m[5], m[6], m[7], m[8] == "W")
	if !okLat || !okLon || !domain.ValidCoordinate(lat, lon) {
		return 0, 0, false
	}
	return lat, lon, true
}

func dmsToDecimal(degStr, minStr, secStr string, negate bool) (float64, bool) {
	deg, errD := strconv.Atoi(degStr)
	mins, errM := strconv.Atoi(minStr)
	secs, errS := strconv.ParseFloat(secStr, 64)
	if errD != nil || errM != nil || errS != nil {
		return 0, false
	}
	v := float64(deg) + float64(mins)/60 + secs/3600
	if negate {
		v = -v
	}
	return v, true
}
