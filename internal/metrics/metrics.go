package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "motorent",
			Name:      "bookings_total",
			Help:      "Booking requests by outcome.",
		},
		[]string{"outcome"},
	)

	gatewayCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "motorent",
			Name:      "gateway_calls_total",
			Help:      "Payment gateway calls by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	reconciliationGaps = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "motorent",
			Name:      "reconciliation_gaps_total",
			Help:      "Captures that succeeded at the gateway but failed to record.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookings, gatewayCalls, reconciliationGaps)
	})
}

// IncBooking increments the booking counter for an outcome label.
func IncBooking(outcome string) {
	bookings.WithLabelValues(outcome).Inc()
}

// IncGatewayCall increments the gateway call counter.
func IncGatewayCall(operation, outcome string) {
	gatewayCalls.WithLabelValues(operation, outcome).Inc()
}

// IncReconciliationGap counts a capture that could not be recorded.
func IncReconciliationGap() {
	reconciliationGaps.Inc()
}
