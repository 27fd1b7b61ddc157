package metrics

import "github.com/prometheus/client_golang/prometheus"

// Listing pipeline Prometheus metrics.
var (
	FetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "unidash",
			Name:      "fetch_total",
			Help:      "Total number of record collection fetches",
		},
		[]string{"page", "status"},
	)

	FetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "unidash",
			Name:      "fetch_duration_seconds",
			Help:      "Record collection fetch duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"page"},
	)

	CollectionRecords = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "unidash",
			Name:      "collection_records",
			Help:      "Number of records in the cached collection snapshot",
		},
		[]string{"page"},
	)

	SnapshotTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "unidash",
			Name:      "snapshot_total",
			Help:      "Collection snapshot cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var listingMetricsRegistered bool

// RegisterListingMetrics registers Prometheus listing metrics. Must be called once from main.
func RegisterListingMetrics() {
	if listingMetricsRegistered {
		return
	}
	prometheus.MustRegister(FetchTotal)
	prometheus.MustRegister(FetchDuration)
	prometheus.MustRegister(CollectionRecords)
	prometheus.MustRegister(SnapshotTotal)
	listingMetricsRegistered = true
}
