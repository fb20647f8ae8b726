// Package metrics holds the Prometheus collectors for the dashboard.
//
// Collectors are registered with the default registry and exposed at
// /metrics by the bootstrap router.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tokenvote"

var (
	ledgerCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "calls_total",
			Help:      "JSON-RPC and contract calls by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)

	backendCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "calls_total",
			Help:      "Backend API calls by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)

	liveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "live",
			Help:      "Dashboard sessions currently held in memory.",
		},
	)

	finality = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "tx_finality_seconds",
			Help:      "Time from submitting a transaction to its receipt.",
			Buckets:   []float64{1, 2, 5, 10, 15, 30, 60, 120, 300},
		},
	)
)

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// LedgerCall counts one ledger operation.
func LedgerCall(op string, err error) {
	ledgerCalls.WithLabelValues(op, outcome(err)).Inc()
}

// BackendCall counts one backend operation.
func BackendCall(op string, err error) {
	backendCalls.WithLabelValues(op, outcome(err)).Inc()
}

// SetLiveSessions records the number of in-memory sessions.
func SetLiveSessions(n int) {
	liveSessions.Set(float64(n))
}

// TxFinality records how long a transaction took to be mined.
func TxFinality(d time.Duration) {
	finality.Observe(d.Seconds())
}
