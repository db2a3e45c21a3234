package mapbox

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conflictmap/telegram-geo-etl/internal/domain"
	"github.com/conflictmap/telegram-geo-etl/internal/observability"
)

// countingGeocoder records how many times each query reached the backend.
type countingGeocoder struct {
	results map[string]domain.GeocodingResult
	err     error
	calls   map[string]int
}

func newCountingGeocoder(results map[string]domain.GeocodingResult) *countingGeocoder {
	return &countingGeocoder{results: results, calls: map[string]int{}}
}

func (g *countingGeocoder) Geocode(_ context.Context, query, _ string) (domain.GeocodingResult, error) {
	g.calls[query]++
	if g.err != nil {
		return domain.GeocodingResult{}, g.err
	}
	return g.results[query], nil
}

func TestCachedGeocoder_Hit(t *testing.T) {
	inner := newCountingGeocoder(map[string]domain.GeocodingResult{
		"Kyiv": {Lat: 50.45, Lon: 30.52, PlaceName: "Kyiv, Ukraine", Relevance: 0.9},
	})
	c := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	first, err := c.Geocode(context.Background(), "Kyiv", "")
	require.NoError(t, err)
	second, err := c.Geocode(context.Background(), "Kyiv", "")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls["Kyiv"])
}

func TestCachedGeocoder_CountryHintPartitionsKeys(t *testing.T) {
	inner := newCountingGeocoder(map[string]domain.GeocodingResult{
		"Odesa": {Lat: 46.48, Lon: 30.72, PlaceName: "Odesa", Relevance: 0.9},
	})
	c := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	_, err := c.Geocode(context.Background(), "Odesa", "ua")
	require.NoError(t, err)
	_, err = c.Geocode(context.Background(), "Odesa", "")
	require.NoError(t, err)

	// Different hints are distinct cache keys, so the backend is hit twice.
	assert.Equal(t, 2, inner.calls["Odesa"])
}

func TestCachedGeocoder_NoMatchNotCached(t *testing.T) {
	inner := newCountingGeocoder(nil)
	c := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	for i := 0; i < 2; i++ {
		result, err := c.Geocode(context.Background(), "Nowheresville", "")
		require.NoError(t, err)
		assert.False(t, result.Found())
	}
	assert.Equal(t, 2, inner.calls["Nowheresville"])
}

func TestCachedGeocoder_ErrorNotCached(t *testing.T) {
	inner := newCountingGeocoder(nil)
	inner.err = errors.New("upstream down")
	c := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	for i := 0; i < 2; i++ {
		_, err := c.Geocode(context.Background(), "Kyiv", "")
		require.Error(t, err)
	}
	assert.Equal(t, 2, inner.calls["Kyiv"])
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	cache := newLRUCache(2)
	a := domain.GeocodingResult{PlaceName: "A"}
	b := domain.GeocodingResult{PlaceName: "B"}
	c := domain.GeocodingResult{PlaceName: "C"}

	cache.put("a", a)
	cache.put("b", b)

	// Touch "a" so "b" becomes least recently used.
	_, ok := cache.get("a")
	require.True(t, ok)

	cache.put("c", c)

	_, ok = cache.get("b")
	assert.False(t, ok)
	got, ok := cache.get("a")
	require.True(t, ok)
	assert.Equal(t, "A", got.PlaceName)
	got, ok = cache.get("c")
	require.True(t, ok)
	assert.Equal(t, "C", got.PlaceName)
}

func TestLRUCache_UpdateExistingKey(t *testing.T) {
	cache := newLRUCache(2)
	cache.put("a", domain.GeocodingResult{PlaceName: "old"})
	cache.put("a", domain.GeocodingResult{PlaceName: "new"})

	got, ok := cache.get("a")
	require.True(t, ok)
	assert.Equal(t, "new", got.PlaceName)
}
