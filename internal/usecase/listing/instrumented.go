package listing

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	domlisting "github.com/kailas-cloud/unidash/internal/domain/listing"
	"github.com/kailas-cloud/unidash/internal/domain/record"
	"github.com/kailas-cloud/unidash/internal/metrics"
)

// InstrumentedFetcher wraps a Fetcher with logging and fetch metrics.
type InstrumentedFetcher struct {
	inner  Fetcher
	logger *zap.Logger
}

// NewInstrumentedFetcher wraps a fetcher with observability.
func NewInstrumentedFetcher(inner Fetcher, logger *zap.Logger) *InstrumentedFetcher {
	return &InstrumentedFetcher{inner: inner, logger: logger}
}

// Fetch delegates to the inner fetcher and records duration, outcome and size.
func (f *InstrumentedFetcher) Fetch(
	ctx context.Context, def domlisting.Definition,
) ([]record.Record, error) {
	start := time.Now()

	records, err := f.inner.Fetch(ctx, def)

	duration := time.Since(start)
	metrics.FetchDuration.WithLabelValues(def.Name()).Observe(duration.Seconds())

	if err != nil {
		metrics.FetchTotal.WithLabelValues(def.Name(), "error").Inc()
		f.logger.Error("Fetch failed",
			zap.String("page", def.Name()),
			zap.String("source", def.Source()),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, fmt.Errorf("fetch: %w", err)
	}

	metrics.FetchTotal.WithLabelValues(def.Name(), "ok").Inc()
	metrics.CollectionRecords.WithLabelValues(def.Name()).Set(float64(len(records)))

	f.logger.Debug("Fetch completed",
		zap.String("page", def.Name()),
		zap.String("source", def.Source()),
		zap.Duration("duration", duration),
		zap.Int("records", len(records)),
	)

	return records, nil
}
