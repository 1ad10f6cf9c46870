package listener

import "github.com/prometheus/client_golang/prometheus"

var (
	deliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ets",
			Subsystem: "listener",
			Name:      "deliveries_total",
			Help:      "Contract log deliveries by topic and outcome",
		},
		[]string{"topic", "outcome"},
	)

	activeRegistrations = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ets",
			Subsystem: "listener",
			Name:      "active_registrations",
			Help:      "Number of running topic registrations",
		},
	)
)

func init() {
	prometheus.MustRegister(deliveries, activeRegistrations)
}
