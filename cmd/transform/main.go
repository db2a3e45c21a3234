// Command transform runs the historical backfill mode: every *.jsonl file in
// the input directory is processed through the geolocation cascade and
// written to enhanced_<name>.jsonl in the output directory.
//
// Usage:
//
//	MAPBOX_TOKEN=... go run ./cmd/transform \
//	  -input-dir data/unprocessed \
//	  -output-dir data/processed
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/schollz/progressbar/v3"

	"github.com/conflictmap/telegram-geo-etl/internal/adapter/jsonl"
	"github.com/conflictmap/telegram-geo-etl/internal/adapter/mapbox"
	"github.com/conflictmap/telegram-geo-etl/internal/config"
	"github.com/conflictmap/telegram-geo-etl/internal/domain"
	"github.com/conflictmap/telegram-geo-etl/internal/geoloc"
	"github.com/conflictmap/telegram-geo-etl/internal/observability"
	"github.com/conflictmap/telegram-geo-etl/internal/pipeline"
	"github.com/conflictmap/telegram-geo-etl/internal/refdata"
)

func main() {
	inputDir := flag.String("input-dir", "data/unprocessed", "directory containing raw *.jsonl files")
	outputDir := flag.String("output-dir", "data/processed", "directory for processed output files")
	flag.Parse()

	if err := run(*inputDir, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}
}

func run(inputDir, outputDir string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg.LogLevel, "text")
	metrics := observability.NewMetricsForTesting() // no scrape endpoint in batch mode
	countries := refdata.Load(cfg.CountriesFile, logger)

	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, cfg.MapboxRateInterval, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
	}

	locator := geoloc.NewLocator(countries, geocoder, nil, logger)
	transformer := pipeline.NewTransformer(locator, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	inputs, err := filepath.Glob(filepath.Join(inputDir, "*.jsonl"))
	if err != nil {
		return fmt.Errorf("list input files: %w", err)
	}
	if len(inputs) == 0 {
		logger.Info("no unprocessed files found", "input_dir", inputDir)
		return nil
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	var totalProcessed, totalGeolocated int64
	for _, input := range inputs {
		output := filepath.Join(outputDir, "enhanced_"+filepath.Base(input))

		processed, geolocated, err := processFile(ctx, transformer, logger, cfg.BatchSize, input, output)
		if err != nil {
			return fmt.Errorf("process %s: %w", input, err)
		}
		logger.Info("file processed",
			"input", input,
			"output", output,
			"processed", processed,
			"geolocated", geolocated,
		)
		totalProcessed += processed
		totalGeolocated += geolocated
	}

	logger.Info("backfill complete",
		"files", len(inputs),
		"processed", totalProcessed,
		"geolocated", totalGeolocated,
		"rate", rate(totalGeolocated, totalProcessed),
	)
	return nil
}

// processFile runs one JSONL file through the transformer. Malformed lines
// are skipped with a warning; the batch never aborts on a bad message.
func processFile(ctx context.Context, transformer pipeline.Transformer, logger *slog.Logger, batchSize int, input, output string) (processed, geolocated int64, err error) {
	reader, err := jsonl.NewReader(input, logger)
	if err != nil {
		return 0, 0, err
	}
	defer reader.Close()

	writer, err := jsonl.NewWriter(output)
	if err != nil {
		return 0, 0, err
	}

	bar := progressbar.Default(-1, filepath.Base(input))
	defer bar.Close()

	for {
		batch, extractErr := reader.ExtractBatch(ctx, batchSize)
		if extractErr != nil && !errors.Is(extractErr, io.EOF) {
			writer.Close()
			return 0, 0, extractErr
		}
		if len(batch) == 0 {
			break
		}

		outBatch := make([]domain.OutputEvent, 0, len(batch))
		for _, raw := range batch {
			out, err := transformer.Transform(ctx, raw)
			if err != nil {
				logger.Warn("skipping malformed line", "input", input, "line", raw.Offset, "error", err)
				continue
			}
			outBatch = append(outBatch, out)
			if out.Headers["geo_source"] != domain.SourceNone {
				geolocated++
			}
		}

		if err := writer.LoadBatch(ctx, outBatch); err != nil {
			writer.Close()
			return 0, 0, err
		}
		processed += int64(len(outBatch))
		bar.Add(len(batch)) //nolint:errcheck // progress display only

		if extractErr != nil || ctx.Err() != nil {
			break
		}
	}

	return processed, geolocated, writer.Close()
}

func rate(geolocated, processed int64) string {
	if processed == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", float64(geolocated)/float64(processed)*100)
}
