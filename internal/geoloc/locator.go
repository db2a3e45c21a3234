// Package geoloc implements the geolocation inference cascade: an ordered
// sequence of extraction strategies run against one message, short-circuiting
// at the first stage that produces an accepted result.
//
// Strategy priority (see [Locator.Locate]):
//
//  1. literal coordinates in text        → confidence 0.95, unconditional
//  2. flag emoji → country centroid      → confidence 0.85, unconditional
//  3. entity extraction + geocoding      → weight × relevance, accepted > 0.3
//  4. place-name fallback geocoding      → confidence 0.4, any match
//  5. channel → country centroid         → confidence 0.2, known channel
//  6. terminal "none"                    → confidence 0.0
//
// Every stage appends a diagnostic string to the attempts log whether or not
// it matched, so a processed message always carries a non-empty provenance
// trail.
package geoloc

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/conflictmap/telegram-geo-etl/internal/domain"
	"github.com/conflictmap/telegram-geo-etl/internal/refdata"
)

// minTextLength gates the entity-extraction stage: shorter texts carry too
// little signal to be worth geocoder calls. Measured in characters, not
// bytes, so Cyrillic and other multi-byte text is gated the same as ASCII.
const minTextLength = 10

// entityAcceptThreshold is the minimum best-candidate confidence for the
// entity-geocoding stage to win.
const entityAcceptThreshold = 0.3

// placeNameConfidence is the fixed confidence of the place-name fallback
// (not scaled by geocoder relevance).
const placeNameConfidence = 0.4

// strategy is one self-contained extraction method in the cascade. attempt
// appends its diagnostics to the shared attempts log and reports whether it
// produced an accepted result.
type strategy interface {
	name() string
	attempt(ctx context.Context, msg domain.Message, attempts *[]string) (domain.GeolocationResult, bool)
}

// Locator runs the strategy cascade over single messages. It holds only
// read-only state (reference data, channel map) plus the geocoder port, so
// one Locator may be shared across messages.
type Locator struct {
	strategies []strategy
	logger     *slog.Logger
}

// NewLocator wires the cascade. geocoder may be nil, in which case the two
// geocoding stages are skipped (recorded in the attempts log). channels may
// be nil to use DefaultChannelCountries.
func NewLocator(data *refdata.CountryData, geocoder domain.Geocoder, channels map[string]string, logger *slog.Logger) *Locator {
	return &Locator{
		strategies: []strategy{
			&coordinateStrategy{},
			&flagStrategy{flags: NewFlagResolver(data)},
			&entityGeocodingStrategy{geocoder: geocoder, logger: logger},
			&placeNameStrategy{geocoder: geocoder, logger: logger},
			&channelStrategy{channels: NewChannelResolver(channels, data)},
		},
		logger: logger,
	}
}

// Locate runs the cascade over one message and returns a fully-formed
// result. The result is never mutated after return; the attempts log
// accumulates across all stages tried.
func (l *Locator) Locate(ctx context.Context, msg domain.Message) domain.GeolocationResult {
	attempts := make([]string, 0, 4)

	for _, s := range l.strategies {
		result, ok := s.attempt(ctx, msg, &attempts)
		if !ok {
			continue
		}
		result.GeocodingAttempts = attempts
		l.logger.Debug("geolocation resolved",
			"message_id", msg.ID,
			"strategy", s.name(),
			"source", result.Source,
			"confidence", result.Confidence,
		)
		return result
	}

	attempts = append(attempts, "no geolocation found")
	return domain.GeolocationResult{
		Confidence:        0.0,
		Source:            domain.SourceNone,
		GeocodingAttempts: attempts,
	}
}

// --- stage 1: literal coordinates ---

type coordinateStrategy struct{}

func (s *coordinateStrategy) name() string { return "coordinates" }

func (s *coordinateStrategy) attempt(_ context.Context, msg domain.Message, attempts *[]string) (domain.GeolocationResult, bool) {
	lat, lon, ok := ExtractCoordinates(msg.Text)
	if !ok {
		*attempts = append(*attempts, "no coordinate patterns matched")
		return domain.GeolocationResult{}, false
	}
	*attempts = append(*attempts, fmt.Sprintf("found coordinates: (%v, %v)", lat, lon))
	return domain.GeolocationResult{
		Lat:        domain.Float64Ptr(lat),
		Lon:        domain.Float64Ptr(lon),
		Confidence: 0.95,
		Source:     domain.SourceCoordinates,
	}, true
}

// --- stage 2: flag emoji ---

type flagStrategy struct {
	flags *FlagResolver
}

func (s *flagStrategy) name() string { return "flag" }

func (s *flagStrategy) attempt(_ context.Context, msg domain.Message, attempts *[]string) (domain.GeolocationResult, bool) {
	code, centroid, ok := s.flags.Resolve(msg.Text)
	if !ok {
		if code != "" {
			// A flag matched but its country has no registered centroid.
			*attempts = append(*attempts, "no centroid for flag country: "+code)
		} else {
			*attempts = append(*attempts, "no flag symbols found")
		}
		return domain.GeolocationResult{}, false
	}
	*attempts = append(*attempts, "found flag: "+code)
	return domain.GeolocationResult{
		Lat:         domain.Float64Ptr(centroid.Lat),
		Lon:         domain.Float64Ptr(centroid.Lon),
		CountryCode: code,
		Confidence:  0.85,
		Source:      domain.SourceFlag,
	}, true
}

// --- stage 3: entity extraction + geocoding ---

type entityGeocodingStrategy struct {
	geocoder domain.Geocoder
	logger   *slog.Logger
}

func (s *entityGeocodingStrategy) name() string { return "entity_geocoding" }

func (s *entityGeocodingStrategy) attempt(ctx context.Context, msg domain.Message, attempts *[]string) (domain.GeolocationResult, bool) {
	if utf8.RuneCountInString(msg.Text) <= minTextLength {
		*attempts = append(*attempts, "text too short for entity extraction")
		return domain.GeolocationResult{}, false
	}
	if s.geocoder == nil {
		*attempts = append(*attempts, "geocoding disabled")
		return domain.GeolocationResult{}, false
	}

	candidates := ExtractLocationEntities(msg.Text)
	if len(candidates) == 0 {
		*attempts = append(*attempts, "no location entities extracted")
		return domain.GeolocationResult{}, false
	}

	// Geocode every candidate sequentially, then keep the maximum-confidence
	// result; ties break toward the first-seen candidate.
	var best domain.GeolocationResult
	for _, cand := range candidates {
		result := s.geocodeCandidate(ctx, msg, cand, attempts)
		if result.Confidence > best.Confidence {
			best = result
		}
	}

	if best.Confidence <= entityAcceptThreshold {
		*attempts = append(*attempts, fmt.Sprintf("best entity confidence %.2f below threshold", best.Confidence))
		return domain.GeolocationResult{}, false
	}

	best.Confidence = ScoreConfidence(best)
	return best, true
}

func (s *entityGeocodingStrategy) geocodeCandidate(ctx context.Context, msg domain.Message, cand Candidate, attempts *[]string) domain.GeolocationResult {
	*attempts = append(*attempts, "extracted entity: "+cand.Query)

	match, err := s.geocoder.Geocode(ctx, cand.Query, "")
	if err != nil {
		s.logger.Warn("geocoding failed",
			"message_id", msg.ID, "query", cand.Query, "error", err)
		*attempts = append(*attempts, "geocoding error: "+cand.Query)
		return domain.GeolocationResult{}
	}
	if !match.Found() {
		*attempts = append(*attempts, "geocoding returned no match: "+cand.Query)
		return domain.GeolocationResult{}
	}

	*attempts = append(*attempts, "geocoded successfully: "+match.PlaceName)
	return domain.GeolocationResult{
		Lat:        domain.Float64Ptr(match.Lat),
		Lon:        domain.Float64Ptr(match.Lon),
		PlaceName:  match.PlaceName,
		Confidence: cand.Confidence * match.Relevance,
		Source:     domain.EntityGeocodingSource(cand.Type),
	}
}

// --- stage 4: place-name fallback geocoding ---

type placeNameStrategy struct {
	geocoder domain.Geocoder
	logger   *slog.Logger
}

func (s *placeNameStrategy) name() string { return "place_name" }

func (s *placeNameStrategy) attempt(ctx context.Context, msg domain.Message, attempts *[]string) (domain.GeolocationResult, bool) {
	if s.geocoder == nil {
		*attempts = append(*attempts, "geocoding disabled")
		return domain.GeolocationResult{}, false
	}

	places := ExtractPlaceNames(msg.Text)
	if len(places) == 0 {
		*attempts = append(*attempts, "no place names extracted")
		return domain.GeolocationResult{}, false
	}

	// Only the first extracted name is tried.
	query := places[0]
	match, err := s.geocoder.Geocode(ctx, query, "")
	if err != nil {
		s.logger.Warn("place name geocoding failed",
			"message_id", msg.ID, "query", query, "error", err)
		*attempts = append(*attempts, "place name geocoding error: "+query)
		return domain.GeolocationResult{}, false
	}
	if !match.Found() {
		*attempts = append(*attempts, "place name geocoding returned no match: "+query)
		return domain.GeolocationResult{}, false
	}

	*attempts = append(*attempts, "geocoded place: "+query)
	return domain.GeolocationResult{
		Lat:        domain.Float64Ptr(match.Lat),
		Lon:        domain.Float64Ptr(match.Lon),
		PlaceName:  match.PlaceName,
		Confidence: placeNameConfidence,
		Source:     domain.SourcePlaceName,
	}, true
}

// --- stage 5: channel fallback ---

type channelStrategy struct {
	channels *ChannelResolver
}

func (s *channelStrategy) name() string { return "channel_fallback" }

func (s *channelStrategy) attempt(_ context.Context, msg domain.Message, attempts *[]string) (domain.GeolocationResult, bool) {
	code, centroid, ok := s.channels.Resolve(msg.Channel)
	if !ok {
		if code != "" {
			*attempts = append(*attempts, "no centroid for channel country: "+code)
		} else {
			*attempts = append(*attempts, "unknown channel: "+msg.Channel)
		}
		return domain.GeolocationResult{}, false
	}
	*attempts = append(*attempts, "channel fallback: "+code)
	return domain.GeolocationResult{
		Lat:         domain.Float64Ptr(centroid.Lat),
		Lon:         domain.Float64Ptr(centroid.Lon),
		CountryCode: code,
		Confidence:  0.2,
		Source:      domain.SourceChannelFallback,
	}, true
}
