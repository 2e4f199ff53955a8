package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	StageLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sigfuse",
			Subsystem: "pipeline",
			Name:      "stage_latency_seconds",
			Help:      "Latency of pipeline stages",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	StageErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sigfuse",
			Subsystem: "pipeline",
			Name:      "stage_errors_total",
			Help:      "Errors by pipeline stage",
		},
		[]string{"stage"},
	)

	SignalsEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sigfuse",
			Subsystem: "pipeline",
			Name:      "signals_emitted_total",
			Help:      "Signals emitted by kind",
		},
		[]string{"kind"},
	)

	CooldownSuppressions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sigfuse",
			Subsystem: "pipeline",
			Name:      "cooldown_suppressions_total",
			Help:      "Signals forced neutral by the per-symbol cooldown",
		},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(StageLatency, StageErrors, SignalsEmitted, CooldownSuppressions)
	})
}
