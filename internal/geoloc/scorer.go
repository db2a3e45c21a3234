package geoloc

import (
	"strings"

	"github.com/conflictmap/telegram-geo-etl/internal/domain"
)

// ScoreConfidence normalizes a result's confidence based on the strategy
// that produced it and clamps the final value to 1.0.
//
// In the cascade only entity-geocoding results pass through here: coordinate
// and flag results return early with their fixed confidences (0.95, 0.85),
// so the coordinate/flag rules below are idempotent re-application rather
// than a distinct code path. The centroid and channel caps likewise never
// lower an early-returned fixed value.
func ScoreConfidence(result domain.GeolocationResult) float64 {
	confidence := result.Confidence

	switch {
	case strings.HasPrefix(result.Source, "coordinates"):
		confidence = max(confidence, 0.95)
	case strings.HasPrefix(result.Source, "flag"):
		confidence = max(confidence, 0.85)
	case domain.IsEntityGeocodingSource(result.Source):
		confidence = max(confidence, 0.7)
	case strings.HasPrefix(result.Source, "country_centroid"):
		confidence = min(confidence, 0.5)
	case strings.HasPrefix(result.Source, "channel_fallback"):
		confidence = min(confidence, 0.3)
	}

	return min(confidence, 1.0)
}
