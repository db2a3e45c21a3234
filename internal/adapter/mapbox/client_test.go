package mapbox

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conflictmap/telegram-geo-etl/internal/observability"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestClient points a client at a test server with no rate delay so tests
// stay fast.
func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	c := NewClient("test-token", 2*time.Second, time.Nanosecond, observability.NewMetricsForTesting(), testLogger())
	c.baseURL = serverURL
	return c
}

func TestGeocode_Success(t *testing.T) {
	var gotQuery string
	var gotParams map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.EscapedPath()
		gotParams = map[string]string{
			"access_token": r.URL.Query().Get("access_token"),
			"limit":        r.URL.Query().Get("limit"),
			"types":        r.URL.Query().Get("types"),
			"country":      r.URL.Query().Get("country"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"features": [{
				"center": [36.2304, 49.9935],
				"place_name": "Kharkiv, Kharkiv Oblast, Ukraine",
				"text": "Kharkiv",
				"relevance": 0.96,
				"place_type": ["place"]
			}]
		}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	result, err := c.Geocode(context.Background(), "Kharkiv, Ukraine", "ua")

	require.NoError(t, err)
	assert.Equal(t, "/"+url.PathEscape("Kharkiv, Ukraine")+".json", gotQuery)
	assert.Equal(t, "test-token", gotParams["access_token"])
	assert.Equal(t, "1", gotParams["limit"])
	assert.Equal(t, "place,locality,neighborhood,address", gotParams["types"])
	assert.Equal(t, "ua", gotParams["country"])

	assert.True(t, result.Found())
	assert.InDelta(t, 49.9935, result.Lat, 1e-9)
	assert.InDelta(t, 36.2304, result.Lon, 1e-9)
	assert.Equal(t, "Kharkiv, Kharkiv Oblast, Ukraine", result.PlaceName)
	assert.InDelta(t, 0.96, result.Relevance, 1e-9)
	assert.Equal(t, "place", result.PlaceType)
}

func TestGeocode_NoCountryHintOmitsParam(t *testing.T) {
	var hasCountry bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hasCountry = r.URL.Query().Has("country")
		w.Write([]byte(`{"features": []}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Geocode(context.Background(), "Kyiv", "")

	require.NoError(t, err)
	assert.False(t, hasCountry)
}

func TestGeocode_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"features": []}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	result, err := c.Geocode(context.Background(), "Nowheresville", "")

	require.NoError(t, err)
	assert.False(t, result.Found())
}

func TestGeocode_FallsBackToTextWhenPlaceNameEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"features": [{"center": [30.5, 50.4], "text": "Kyiv", "relevance": 0.8}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	result, err := c.Geocode(context.Background(), "Kyiv", "")

	require.NoError(t, err)
	assert.Equal(t, "Kyiv", result.PlaceName)
}

func TestGeocode_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message": "Not Authorized"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Geocode(context.Background(), "Kyiv", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestGeocode_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Geocode(context.Background(), "Kyiv", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestGeocode_RateLimitSpacing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"features": []}`))
	}))
	defer srv.Close()

	interval := 30 * time.Millisecond
	c := NewClient("test-token", 2*time.Second, interval, observability.NewMetricsForTesting(), testLogger())
	c.baseURL = srv.URL

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.Geocode(context.Background(), "Kyiv", "")
		require.NoError(t, err)
	}
	// First call consumes the initial token; the next two each wait a full
	// interval.
	assert.GreaterOrEqual(t, time.Since(start), 2*interval)
}

func TestGeocode_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"features": []}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Geocode(ctx, "Kyiv", "")
	require.Error(t, err)
}

func TestNewClient_DefaultRateInterval(t *testing.T) {
	c := NewClient("test-token", time.Second, 0, observability.NewMetricsForTesting(), testLogger())
	assert.NotNil(t, c.limiter)
}
