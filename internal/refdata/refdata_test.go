package refdata

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoad(t *testing.T) {
	data := Load("testdata/countries.yml", testLogger())

	code, ok := data.Country("🇺🇦")
	require.True(t, ok)
	assert.Equal(t, "UKR", code)

	centroid, ok := data.Centroid("UKR")
	require.True(t, ok)
	assert.InDelta(t, 49.0, centroid.Lat, 1e-9)
	assert.InDelta(t, 32.0, centroid.Lon, 1e-9)

	// ISR is mapped from a flag but has no centroid in the fixture.
	_, ok = data.Centroid("ISR")
	assert.False(t, ok)
}

func TestLoad_MissingFileDegrades(t *testing.T) {
	data := Load("testdata/does-not-exist.yml", testLogger())

	require.NotNil(t, data)
	assert.Empty(t, data.Flags())
	_, ok := data.Country("🇺🇦")
	assert.False(t, ok)
	_, ok = data.Centroid("UKR")
	assert.False(t, ok)
}

func TestLoad_MalformedFileDegrades(t *testing.T) {
	data := Load("testdata/malformed.yml", testLogger())

	require.NotNil(t, data)
	assert.Empty(t, data.Flags())
}

func TestFlags_Sorted(t *testing.T) {
	data := Load("testdata/countries.yml", testLogger())

	flags := data.Flags()
	require.Len(t, flags, 3)
	for i := 1; i < len(flags); i++ {
		assert.LessOrEqual(t, flags[i-1], flags[i])
	}
}

func TestNew_NilMaps(t *testing.T) {
	data := New(nil, nil)

	assert.NotNil(t, data.FlagToCountry)
	assert.NotNil(t, data.CountryCentroids)
	assert.Empty(t, data.Flags())
}
