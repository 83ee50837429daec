package hours

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsObserver exports remote call telemetry as prometheus metrics.
type MetricsObserver struct {
	calls   *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

// NewMetricsObserver registers the client metrics against reg and returns an
// Observer feeding them.
func NewMetricsObserver(reg prometheus.Registerer) *MetricsObserver {
	m := &MetricsObserver{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hourdeck",
			Subsystem: "hours_client",
			Name:      "calls_total",
			Help:      "Remote hours service calls by operation and outcome.",
		}, []string{"op", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hourdeck",
			Subsystem: "hours_client",
			Name:      "call_duration_seconds",
			Help:      "Remote hours service call latency by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}
	reg.MustRegister(m.calls, m.latency)
	return m
}

func (m *MetricsObserver) OnCallComplete(event CallEvent) {
	outcome := "ok"
	if !event.Success {
		outcome = event.ErrorCode
	}
	m.calls.WithLabelValues(string(event.Op), outcome).Inc()
	m.latency.WithLabelValues(string(event.Op)).Observe(float64(event.LatencyMs) / 1000)
}
