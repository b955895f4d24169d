package ctxlog

import (
	stderrs "errors"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "ctxlog"

// metrics are always live; they are exported only when a Registerer is set.
type metrics struct {
	events    *prometheus.CounterVec
	forwarded prometheus.Counter
	failures  prometheus.Counter
	skipped   prometheus.Counter
	inflight  prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "events_total",
			Help:      "Log events emitted after severity gating.",
		}, []string{"level"}),
		forwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "remote_forwarded_total",
			Help:      "Log events accepted by the remote sink.",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "remote_failures_total",
			Help:      "Log events the remote sink did not accept.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "remote_skipped_total",
			Help:      "Log events withheld from the remote sink by the ignore list.",
		}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "remote_inflight",
			Help:      "Remote forwards currently in progress.",
		}),
	}
	if reg == nil {
		return m, nil
	}

	var err error
	m.events = register(reg, m.events, &err)
	m.forwarded = register(reg, m.forwarded, &err)
	m.failures = register(reg, m.failures, &err)
	m.skipped = register(reg, m.skipped, &err)
	m.inflight = register(reg, m.inflight, &err)
	return m, err
}

// register adopts an already registered collector of the same shape, so
// several services can share one registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C, errp *error) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if stderrs.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		if *errp == nil {
			*errp = err
		}
	}
	return c
}
