package executor

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Aleph-Alpha/dbcore/pkg/limiter"
)

// executorMetrics holds the executor's Prometheus collectors. They are always
// allocated so instrumentation sites need no nil checks; registration on a
// real registry is opt-in via WithRegisterer.
type executorMetrics struct {
	attemptsTotal     *prometheus.CounterVec
	retriesTotal      *prometheus.CounterVec
	failuresTotal     *prometheus.CounterVec
	statementDuration *prometheus.HistogramVec
	limiterInUse      []prometheus.GaugeFunc
}

func newExecutorMetrics(limiters ...*limiter.Limiter) *executorMetrics {
	m := &executorMetrics{
		attemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dbcore_statement_attempts_total",
				Help: "Statement execution attempts, including retries.",
			},
			[]string{"kind"},
		),
		retriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dbcore_statement_retries_total",
				Help: "Retries triggered by transient failures.",
			},
			[]string{"kind"},
		),
		failuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dbcore_statement_failures_total",
				Help: "Final statement failures by outcome classification.",
			},
			[]string{"classification"},
		),
		statementDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dbcore_statement_duration_seconds",
				Help:    "Wall-clock duration of single statement attempts.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
	}

	for _, l := range limiters {
		l := l
		m.limiterInUse = append(m.limiterInUse, prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name:        "dbcore_limiter_slots_in_use",
				Help:        "Currently-held admission slots per pool.",
				ConstLabels: prometheus.Labels{"pool": l.Name()},
			},
			func() float64 { return float64(l.InUse()) },
		))
	}

	return m
}

// register registers every collector on reg. Must be called at most once per
// registry; the fx module does this with the shared metrics registry.
func (m *executorMetrics) register(reg prometheus.Registerer) {
	reg.MustRegister(m.attemptsTotal, m.retriesTotal, m.failuresTotal, m.statementDuration)
	for _, g := range m.limiterInUse {
		reg.MustRegister(g)
	}
}
