package unidash

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation outcomes recorded in the status label.
const (
	statusOK    = "ok"
	statusError = "error"
	// statusFetchFailed marks a query answered with an empty view because
	// the page's collection could not be fetched.
	statusFetchFailed = "fetch_failed"
)

// sdkMetrics holds prometheus metrics registered for the SDK.
type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	matches    *prometheus.HistogramVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "unidash",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "Total SDK operations by type, page and status.",
		}, []string{"operation", "page", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "unidash",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "page"}),
		matches: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "unidash",
			Subsystem: "sdk",
			Name:      "query_matches",
			Help:      "Records matching the filters of a query, before pagination.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"page"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.matches); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("unidash: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("unidash: register metric: %w", err)
	}
	return nil
}

// observer provides logging and metrics for SDK operations.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *sdkMetrics
	if reg != nil {
		var err error
		m, err = newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

// observe records an operation. page is empty for client-wide operations.
func (o *observer) observe(op, page string, start time.Time, err error) {
	status := statusOK
	if err != nil {
		status = statusError
	}
	o.record(op, page, start, status, err)
}

// observeQuery records a query. A view carrying a fetch error counts as
// fetch_failed even though Query itself succeeded.
func (o *observer) observeQuery(page string, start time.Time, v View, err error) {
	if o == nil {
		return
	}
	switch {
	case err != nil:
		o.record("query", page, start, statusError, err)
	case v.Err != nil:
		o.record("query", page, start, statusFetchFailed, v.Err)
	default:
		if o.metrics != nil {
			o.metrics.matches.WithLabelValues(page).Observe(float64(v.TotalItems))
		}
		o.record("query", page, start, statusOK, nil)
	}
}

func (o *observer) record(op, page string, start time.Time, status string, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, page, status).Inc()
		o.metrics.duration.WithLabelValues(op, page).Observe(dur.Seconds())
	}

	if o.logger == nil {
		return
	}
	attrs := []any{"op", op, "duration", dur}
	if page != "" {
		attrs = append(attrs, "page", page)
	}
	if err != nil {
		attrs = append(attrs, "status", status, "error", err)
		o.logger.Warn("unidash operation failed", attrs...)
		return
	}
	o.logger.Debug("unidash operation completed", attrs...)
}
