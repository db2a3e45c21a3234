// Package mapbox implements the domain Geocoder port against the Mapbox
// Geocoding API, with a fixed inter-call rate limit and an optional LRU
// cache decorator.
package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/conflictmap/telegram-geo-etl/internal/domain"
	"github.com/conflictmap/telegram-geo-etl/internal/observability"
)

// DefaultRateInterval is the minimum delay between geocoding calls. The
// floor is paid whether a call succeeds, fails, or returns no match, so
// batch throughput is bounded by (messages needing geocoding) × interval.
const DefaultRateInterval = 100 * time.Millisecond

// Client implements domain.Geocoder using the Mapbox Geocoding API.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a rate-limited Mapbox geocoding client. A non-positive
// rateInterval falls back to DefaultRateInterval.
func NewClient(token string, timeout, rateInterval time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if rateInterval <= 0 {
		rateInterval = DefaultRateInterval
	}
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.mapbox.com/geocoding/v5/mapbox.places",
		limiter: rate.NewLimiter(rate.Every(rateInterval), 1),
		metrics: metrics,
		logger:  logger,
	}
}

// Geocode resolves a query string to the best-ranked Mapbox match. An empty
// result with a nil error means "no match"; the client never retries.
func (c *Client) Geocode(ctx context.Context, query, countryHint string) (domain.GeocodingResult, error) {
	// The limiter enforces the inter-call floor on every path, including
	// calls that will fail.
	if err := c.limiter.Wait(ctx); err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("rate limit wait: %w", err)
	}

	u := fmt.Sprintf("%s/%s.json", c.baseURL, url.PathEscape(query))
	params := url.Values{
		"access_token": {c.token},
		"limit":        {"1"},
		"types":        {"place,locality,neighborhood,address"},
	}
	if countryHint != "" {
		params.Set("country", countryHint)
	}

	start := time.Now()
	result, err := c.doRequest(ctx, u+"?"+params.Encode())
	c.metrics.GeocodeAPIDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
	case !result.Found():
		c.metrics.GeocodeRequests.WithLabelValues("empty").Inc()
	default:
		c.metrics.GeocodeRequests.WithLabelValues("success").Inc()
	}
	return result, err
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.GeocodingResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.GeocodingResult{}, fmt.Errorf("mapbox API error: status %d: %s", resp.StatusCode, body)
	}

	var mapboxResp response
	if err := json.NewDecoder(resp.Body).Decode(&mapboxResp); err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("decode response: %w", err)
	}

	if len(mapboxResp.Features) == 0 {
		return domain.GeocodingResult{}, nil
	}

	f := mapboxResp.Features[0]
	result := domain.GeocodingResult{
		PlaceName: f.PlaceName,
		Relevance: f.Relevance,
	}
	if result.PlaceName == "" {
		result.PlaceName = f.Text
	}
	if len(f.Center) == 2 {
		// Mapbox uses lon,lat order.
		result.Lon = f.Center[0]
		result.Lat = f.Center[1]
	}
	if len(f.PlaceType) > 0 {
		result.PlaceType = f.PlaceType[0]
	}
	return result, nil
}

// Mapbox API response types.

type response struct {
	Features []feature `json:"features"`
}

type feature struct {
	Center    []float64 `json:"center"` // [lon, lat]
	PlaceName string    `json:"place_name"`
	Text      string    `json:"text"`
	Relevance float64   `json:"relevance"`
	PlaceType []string  `json:"place_type"`
}
