// Package metrics defines the Prometheus collectors the server and the
// reminder worker export.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "splitx"

// Reminder outcomes.
const (
	ResultPublished = "published"
	ResultFailed    = "failed"
)

// Metrics holds the registered collectors. A nil *Metrics is valid and
// records nothing, so callers can run without instrumentation.
type Metrics struct {
	registry *prometheus.Registry

	rpcRequests       *prometheus.CounterVec
	integrityWarnings *prometheus.CounterVec
	sweepDuration     prometheus.Histogram
	reminders         *prometheus.CounterVec
}

// New registers all collectors on reg. Pass nil for a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		rpcRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPCs handled, by procedure and result code.",
		}, []string{"procedure", "code"}),
		integrityWarnings: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_integrity_warnings_total",
			Help:      "Malformed or out-of-scope ledger records skipped during a computation.",
		}, []string{"kind"}),
		sweepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reminder_sweep_duration_seconds",
			Help:      "Wall time of one outstanding-debt sweep.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		reminders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_total",
			Help:      "Payment reminders by publish result.",
		}, []string{"result"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) RPC(procedure, code string) {
	if m == nil {
		return
	}
	m.rpcRequests.WithLabelValues(procedure, code).Inc()
}

func (m *Metrics) IntegrityWarning(kind string) {
	if m == nil {
		return
	}
	m.integrityWarnings.WithLabelValues(kind).Inc()
}

func (m *Metrics) SweepDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.sweepDuration.Observe(d.Seconds())
}

func (m *Metrics) Reminder(result string) {
	if m == nil {
		return
	}
	m.reminders.WithLabelValues(result).Inc()
}
