package pipeline

import (
	"context"

	"github.com/conflictmap/telegram-geo-etl/internal/domain"
	"github.com/conflictmap/telegram-geo-etl/internal/geoloc"
	"github.com/conflictmap/telegram-geo-etl/internal/observability"
)

// GeoTransformer implements Transformer: it parses a raw message record,
// runs the geolocation cascade, and serializes the augmented record. Batch
// and streaming modes share this transformer, so one message yields the same
// geolocation block in both modes given the same reference data and geocoder.
type GeoTransformer struct {
	locator *geoloc.Locator
	metrics *observability.Metrics
}

// NewTransformer creates a GeoTransformer around a wired cascade.
func NewTransformer(locator *geoloc.Locator, metrics *observability.Metrics) *GeoTransformer {
	return &GeoTransformer{
		locator: locator,
		metrics: metrics,
	}
}

func (t *GeoTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	msg, err := domain.ParseMessage(raw)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	geo := t.locator.Locate(ctx, msg)
	t.metrics.GeolocationSource.WithLabelValues(geo.Source).Inc()

	return domain.SerializeProcessed(domain.NewProcessedMessage(msg, geo))
}
