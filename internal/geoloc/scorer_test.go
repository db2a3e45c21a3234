package geoloc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/conflictmap/telegram-geo-etl/internal/domain"
)

func TestScoreConfidence(t *testing.T) {
	tests := []struct {
		name   string
		result domain.GeolocationResult
		want   float64
	}{
		{
			name:   "coordinates raised to floor",
			result: domain.GeolocationResult{Source: domain.SourceCoordinates, Confidence: 0.5},
			want:   0.95,
		},
		{
			name:   "flag raised to floor",
			result: domain.GeolocationResult{Source: domain.SourceFlag, Confidence: 0.3},
			want:   0.85,
		},
		{
			name:   "entity geocoding below floor is raised",
			result: domain.GeolocationResult{Source: domain.EntityGeocodingSource(EntityCityCountry), Confidence: 0.4},
			want:   0.7,
		},
		{
			name:   "entity geocoding above floor is kept",
			result: domain.GeolocationResult{Source: domain.EntityGeocodingSource(EntityCityCountry), Confidence: 0.72},
			want:   0.72,
		},
		{
			name:   "country centroid capped",
			result: domain.GeolocationResult{Source: "country_centroid", Confidence: 0.9},
			want:   0.5,
		},
		{
			name:   "channel fallback capped",
			result: domain.GeolocationResult{Source: domain.SourceChannelFallback, Confidence: 0.8},
			want:   0.3,
		},
		{
			name:   "unknown source passes through",
			result: domain.GeolocationResult{Source: "something_else", Confidence: 0.42},
			want:   0.42,
		},
		{
			name:   "clamped to one",
			result: domain.GeolocationResult{Source: "something_else", Confidence: 1.7},
			want:   1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ScoreConfidence(tt.result), 1e-9)
		})
	}
}

func TestScoreConfidence_Idempotent(t *testing.T) {
	result := domain.GeolocationResult{Source: domain.EntityGeocodingSource(EntityCityOnly), Confidence: 0.36}
	once := ScoreConfidence(result)
	result.Confidence = once
	assert.InDelta(t, once, ScoreConfidence(result), 1e-9)
}
