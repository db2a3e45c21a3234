// Command etl runs the live streaming mode: raw Telegram message records are
// consumed from the source Kafka topic, run through the geolocation cascade,
// and produced to the sink topic. Health, readiness, and metrics endpoints
// are served over HTTP.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/conflictmap/telegram-geo-etl/internal/adapter/http"
	kafkaadapter "github.com/conflictmap/telegram-geo-etl/internal/adapter/kafka"
	"github.com/conflictmap/telegram-geo-etl/internal/adapter/mapbox"
	"github.com/conflictmap/telegram-geo-etl/internal/config"
	"github.com/conflictmap/telegram-geo-etl/internal/domain"
	"github.com/conflictmap/telegram-geo-etl/internal/geoloc"
	"github.com/conflictmap/telegram-geo-etl/internal/observability"
	"github.com/conflictmap/telegram-geo-etl/internal/pipeline"
	"github.com/conflictmap/telegram-geo-etl/internal/refdata"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	// Reference data degrades to empty mappings when unavailable; the
	// geocoding token does not (checked in config.Load).
	countries := refdata.Load(cfg.CountriesFile, logger)

	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, cfg.MapboxRateInterval, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled",
			"cache_size", cfg.MapboxCacheSize,
			"timeout", cfg.MapboxTimeout,
			"rate_interval", cfg.MapboxRateInterval,
		)
	} else {
		logger.Warn("mapbox geocoding disabled, entity and place-name strategies will not match")
	}

	locator := geoloc.NewLocator(countries, geocoder, nil, logger)

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(locator, metrics)

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ETL pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
