// Command genmock generates a deterministic processed-message fixture by
// running sample raw messages through the real geolocation cascade with a
// table-driven fake geocoder and a frozen clock. The output exercises every
// strategy tag, so downstream consumers and the validate command have a
// stable file to test against.
//
// Usage:
//
//	go run ./cmd/genmock -countries countries.yml -out data/mock/processed_fixture.jsonl
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/conflictmap/telegram-geo-etl/internal/adapter/jsonl"
	"github.com/conflictmap/telegram-geo-etl/internal/domain"
	"github.com/conflictmap/telegram-geo-etl/internal/geoloc"
	"github.com/conflictmap/telegram-geo-etl/internal/refdata"
)

// fakeGeocoder resolves queries from a fixed table; anything else is a miss.
// No rate limiting, no network.
type fakeGeocoder struct {
	table map[string]domain.GeocodingResult
}

func (f *fakeGeocoder) Geocode(_ context.Context, query, _ string) (domain.GeocodingResult, error) {
	return f.table[query], nil
}

var sampleMessages = []domain.Message{
	{Channel: "militarysummary", Text: "Explosion reported at 50.4501, 30.5234 in Kyiv", Timestamp: baseTime, ID: 1001},
	{Channel: "ClashReport", Text: "Columns moving toward the border 🇺🇦", Timestamp: baseTime.Add(1 * time.Minute), ID: 1002},
	{Channel: "ukraine_world", Text: "Heavy shelling near Kharkiv, Ukraine overnight", Timestamp: baseTime.Add(2 * time.Minute), ID: 1003},
	{Channel: "militarysummary", Text: "Air raid sirens sounded across several regions", Timestamp: baseTime.Add(3 * time.Minute), ID: 1004},
	{Channel: "unknown_channel", Text: "no news", Timestamp: baseTime.Add(4 * time.Minute), ID: 1005},
}

var baseTime = time.Date(2024, time.April, 26, 12, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	countriesFile := flag.String("countries", "countries.yml", "reference data file")
	out := flag.String("out", "data/mock/processed_fixture.jsonl", "output path for the processed fixture")
	flag.Parse()

	// Freeze the clock for reproducible processed_at timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	countries := refdata.Load(*countriesFile, logger)

	geocoder := &fakeGeocoder{table: map[string]domain.GeocodingResult{
		"Kharkiv, Ukraine": {Lat: 49.9935, Lon: 36.2304, PlaceName: "Kharkiv, Ukraine", Relevance: 0.9, PlaceType: "place"},
	}}

	locator := geoloc.NewLocator(countries, geocoder, nil, logger)

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	writer, err := jsonl.NewWriter(*out)
	if err != nil {
		return err
	}

	ctx := context.Background()
	events := make([]domain.OutputEvent, 0, len(sampleMessages))
	for _, msg := range sampleMessages {
		geo := locator.Locate(ctx, msg)
		event, err := domain.SerializeProcessed(domain.NewProcessedMessage(msg, geo))
		if err != nil {
			return err
		}
		events = append(events, event)
	}

	if err := writer.LoadBatch(ctx, events); err != nil {
		writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	log.Printf("wrote %d fixture records to %s", len(events), *out)
	return nil
}
