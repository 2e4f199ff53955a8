package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	candlesTotal   *prometheus.CounterVec
	feedReconnects prometheus.Counter
	errorsTotal    *prometheus.CounterVec
	latency        *prometheus.HistogramVec
	snapshotAge    prometheus.Gauge
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		candlesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sigfuse_candles_ingested_total",
				Help: "Total number of closed candles ingested from the live feed",
			},
			[]string{"symbol"},
		),
		feedReconnects: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "sigfuse_feed_reconnects_total",
				Help: "Total number of websocket feed reconnects",
			},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sigfuse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sigfuse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		snapshotAge: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "sigfuse_snapshot_age_seconds",
				Help: "Age of the served signal snapshot",
			},
		),
	}
}

// RecordCandle records a closed candle ingested for a symbol.
func (r *Recorder) RecordCandle(symbol string) {
	r.candlesTotal.WithLabelValues(symbol).Inc()
}

// RecordFeedReconnect records a feed reconnect attempt.
func (r *Recorder) RecordFeedReconnect() {
	r.feedReconnects.Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordSnapshotAge records the age of the served snapshot.
func (r *Recorder) RecordSnapshotAge(seconds float64) {
	r.snapshotAge.Set(seconds)
}
