package geoloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conflictmap/telegram-geo-etl/internal/refdata"
)

func testCountryData() *refdata.CountryData {
	return refdata.New(
		map[string]string{
			"🇺🇦": "UKR",
			"🇷🇺": "RUS",
			"🇽🇰": "XKX", // no centroid registered
		},
		map[string]refdata.Centroid{
			"UKR": {Lat: 49.0, Lon: 32.0},
			"RUS": {Lat: 61.524, Lon: 105.3188},
			"ISR": {Lat: 31.0461, Lon: 34.8516},
		},
	)
}

func TestFlagResolver_Resolve(t *testing.T) {
	r := NewFlagResolver(testCountryData())

	code, centroid, ok := r.Resolve("Troop movement near the border 🇺🇦 confirmed")
	require.True(t, ok)
	assert.Equal(t, "UKR", code)
	assert.InDelta(t, 49.0, centroid.Lat, 1e-9)
	assert.InDelta(t, 32.0, centroid.Lon, 1e-9)
}

func TestFlagResolver_NoFlag(t *testing.T) {
	r := NewFlagResolver(testCountryData())

	code, _, ok := r.Resolve("no symbols in this text")
	assert.False(t, ok)
	assert.Empty(t, code)
}

func TestFlagResolver_MissingCentroidYieldsNothing(t *testing.T) {
	r := NewFlagResolver(testCountryData())

	code, _, ok := r.Resolve("statement from 🇽🇰 officials")
	assert.False(t, ok)
	// The flag matched; the country code is reported for diagnostics.
	assert.Equal(t, "XKX", code)
}

func TestFlagResolver_MappingOrderIsAuthoritative(t *testing.T) {
	// Two flags in the text: resolution follows the sorted mapping order,
	// not text left-to-right order. Regional indicator runes sort 🇷🇺
	// before 🇺🇦.
	r := NewFlagResolver(testCountryData())

	code, _, ok := r.Resolve("meeting 🇺🇦 and 🇷🇺 delegations")
	require.True(t, ok)
	assert.Equal(t, "RUS", code)
}

func TestChannelResolver_KnownChannel(t *testing.T) {
	r := NewChannelResolver(nil, testCountryData())

	code, centroid, ok := r.Resolve("militarysummary")
	require.True(t, ok)
	assert.Equal(t, "UKR", code)
	assert.InDelta(t, 49.0, centroid.Lat, 1e-9)
}

func TestChannelResolver_UnknownChannel(t *testing.T) {
	r := NewChannelResolver(nil, testCountryData())

	code, _, ok := r.Resolve("random_channel")
	assert.False(t, ok)
	assert.Empty(t, code)
}

func TestChannelResolver_KnownChannelWithoutCentroid(t *testing.T) {
	r := NewChannelResolver(map[string]string{"mystery": "ZZZ"}, testCountryData())

	code, _, ok := r.Resolve("mystery")
	assert.False(t, ok)
	assert.Equal(t, "ZZZ", code)
}

func TestChannelResolver_CustomMapping(t *testing.T) {
	r := NewChannelResolver(map[string]string{"idf_updates": "ISR"}, testCountryData())

	code, centroid, ok := r.Resolve("idf_updates")
	require.True(t, ok)
	assert.Equal(t, "ISR", code)
	assert.InDelta(t, 31.0461, centroid.Lat, 1e-9)
}
