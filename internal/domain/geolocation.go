package domain

import "strings"

// Source tags identifying which strategy produced a result. Exactly one tag
// is set per result.
const (
	SourceCoordinates      = "coordinates_regex"
	SourceFlag             = "flag_emoji"
	SourcePlaceName        = "place_name_geocoding"
	SourceChannelFallback  = "channel_fallback"
	SourceNone             = "none"
	sourceEntityGeocodingP = "llm_geocoding_"
)

// EntityGeocodingSource derives the source tag for a geocoded location
// entity, e.g. "llm_geocoding_city_country".
func EntityGeocodingSource(entityType string) string {
	return sourceEntityGeocodingP + entityType
}

// IsEntityGeocodingSource reports whether a source tag came from the entity
// extraction + geocoding path.
func IsEntityGeocodingSource(source string) bool {
	return strings.HasPrefix(source, sourceEntityGeocodingP)
}

// GeolocationResult is the outcome of running one message through the
// geolocation cascade. It is fully determined by the end of one pipeline
// invocation and never updated in place afterwards.
//
// Lat/Lon are pointers because (0, 0) is a valid coordinate; nil means no
// coordinate was inferred. Confidence is 0.0 exactly when Source is "none".
type GeolocationResult struct {
	Lat               *float64 `json:"lat"`
	Lon               *float64 `json:"lon"`
	CountryCode       string   `json:"country_code,omitempty"`
	Confidence        float64  `json:"confidence"`
	Source            string   `json:"source"`
	PlaceName         string   `json:"place_name,omitempty"`
	GeocodingAttempts []string `json:"geocoding_attempts"`
}

// HasCoordinates reports whether the result carries a usable coordinate.
func (r GeolocationResult) HasCoordinates() bool {
	return r.Lat != nil && r.Lon != nil
}

// ValidCoordinate reports whether lat/lon fall inside WGS-84 bounds.
func ValidCoordinate(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Float64Ptr returns a pointer to v. Helper for building results.
func Float64Ptr(v float64) *float64 { return &v }
