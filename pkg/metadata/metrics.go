package metadata

import "github.com/prometheus/client_golang/prometheus"

var (
	fetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ets",
			Subsystem: "metadata",
			Name:      "fetch_total",
			Help:      "Metadata document fetches by outcome",
		},
		[]string{"outcome"},
	)

	fetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "ets",
			Subsystem: "metadata",
			Name:      "fetch_duration_seconds",
			Help:      "Latency of metadata document fetches",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(fetchTotal, fetchDuration)
}
