package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityGeocodingSource(t *testing.T) {
	source := EntityGeocodingSource("city_country")
	assert.Equal(t, "llm_geocoding_city_country", source)
	assert.True(t, IsEntityGeocodingSource(source))
	assert.False(t, IsEntityGeocodingSource(SourceFlag))
	assert.False(t, IsEntityGeocodingSource(SourceNone))
}

func TestHasCoordinates(t *testing.T) {
	assert.False(t, GeolocationResult{}.HasCoordinates())
	assert.False(t, GeolocationResult{Lat: Float64Ptr(1)}.HasCoordinates())

	// (0, 0) is a valid coordinate, distinct from "no coordinate".
	zero := GeolocationResult{Lat: Float64Ptr(0), Lon: Float64Ptr(0)}
	assert.True(t, zero.HasCoordinates())
}

func TestValidCoordinate(t *testing.T) {
	assert.True(t, ValidCoordinate(0, 0))
	assert.True(t, ValidCoordinate(-90, 180))
	assert.True(t, ValidCoordinate(90, -180))
	assert.False(t, ValidCoordinate(90.1, 0))
	assert.False(t, ValidCoordinate(0, -180.1))
}

func TestGeolocationResult_JSON(t *testing.T) {
	result := GeolocationResult{
		Lat:               Float64Ptr(49.0),
		Lon:               Float64Ptr(32.0),
		CountryCode:       "UKR",
		Confidence:        0.85,
		Source:            SourceFlag,
		GeocodingAttempts: []string{"found flag: UKR"},
	}

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"country_code":"UKR"`)
	// Empty place_name is omitted; null lat/lon are not.
	assert.NotContains(t, string(data), "place_name")

	none := GeolocationResult{Source: SourceNone, GeocodingAttempts: []string{"no geolocation found"}}
	data, err = json.Marshal(none)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"lat":null`)
	assert.NotContains(t, string(data), "country_code")
}
