package domain

import "context"

// GeocodingResult contains the best match returned by a geocoding provider.
// A zero PlaceName means the provider found no match; callers must treat
// that as "no match", not as a transient error.
type GeocodingResult struct {
	Lat       float64
	Lon       float64
	PlaceName string
	Relevance float64 // 0.0–1.0 provider confidence score
	PlaceType string  // e.g. "place", "locality", "address"
}

// Found reports whether the provider returned a match.
func (r GeocodingResult) Found() bool { return r.PlaceName != "" }

// Geocoder resolves a free-text place description to coordinates.
type Geocoder interface {
	// Geocode resolves a query string to the provider's best-ranked match.
	// countryHint optionally biases results toward an ISO country code;
	// pass "" for no bias.
	Geocode(ctx context.Context, query, countryHint string) (GeocodingResult, error)
}
