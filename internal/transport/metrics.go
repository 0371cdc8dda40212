package transport

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the authorized HTTP client.
type Metrics struct {
	// Requests by method and status class ("2xx", "4xx", "error", ...)
	Requests *prometheus.CounterVec

	// Round-trip latency including the interceptor work
	Latency prometheus.Histogram

	// Forced logouts triggered by server-side auth failures
	ForcedLogouts prometheus.Counter
}

// NewMetrics creates and registers all transport metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		Requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "unimart_client_requests_total",
			Help: "Total backend requests by method and status class",
		}, []string{"method", "status_class"}),

		Latency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "unimart_client_request_duration_seconds",
			Help:    "Duration of backend round trips",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),

		ForcedLogouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "unimart_client_forced_logouts_total",
			Help: "Total forced logouts triggered by 401 or stale-token 403 responses",
		}),
	}
}

// CountRequest records one backend round trip.
func (m *Metrics) CountRequest(method, statusClass string, d time.Duration) {
	if m != nil {
		m.Requests.WithLabelValues(method, statusClass).Inc()
		m.Latency.Observe(d.Seconds())
	}
}

// CountForcedLogout records a forced logout.
func (m *Metrics) CountForcedLogout() {
	if m != nil {
		m.ForcedLogouts.Inc()
	}
}
