package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	signalsGenerated *prometheus.CounterVec
	signalsSkipped   *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
	evalLatency      *prometheus.HistogramVec
	confidence       *prometheus.HistogramVec
	candlesStored    *prometheus.CounterVec
	ingestLatency    prometheus.Histogram
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		signalsGenerated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradepulse_signals_generated_total",
				Help: "Total number of signals emitted",
			},
			[]string{"symbol", "direction"},
		),
		signalsSkipped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradepulse_signals_skipped_total",
				Help: "Evaluations that produced no signal, by reason",
			},
			[]string{"symbol", "reason"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradepulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		evalLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tradepulse_evaluation_duration_seconds",
				Help:    "Duration of one symbol evaluation in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"symbol"},
		),
		confidence: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tradepulse_signal_confidence",
				Help:    "Confidence of emitted signals",
				Buckets: prometheus.LinearBuckets(50, 5, 11),
			},
			[]string{"symbol"},
		),
		candlesStored: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradepulse_candles_stored_total",
				Help: "Candles written to the archive",
			},
			[]string{"symbol"},
		),
		ingestLatency: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tradepulse_candle_ingest_duration_seconds",
				Help:    "Duration of one candle archive write in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// RecordSignalGenerated records an emitted signal.
func (r *Recorder) RecordSignalGenerated(symbol, direction string) {
	r.signalsGenerated.WithLabelValues(symbol, direction).Inc()
}

// RecordSignalSkipped records an evaluation that yielded no signal.
func (r *Recorder) RecordSignalSkipped(symbol, reason string) {
	r.signalsSkipped.WithLabelValues(symbol, reason).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordEvalLatency records evaluation latency in seconds.
func (r *Recorder) RecordEvalLatency(symbol string, seconds float64) {
	r.evalLatency.WithLabelValues(symbol).Observe(seconds)
}

// RecordConfidence records the confidence of an emitted signal.
func (r *Recorder) RecordConfidence(symbol string, confidence float64) {
	r.confidence.WithLabelValues(symbol).Observe(confidence)
}

// RecordCandleStored records a candle archive write.
func (r *Recorder) RecordCandleStored(symbol string) {
	r.candlesStored.WithLabelValues(symbol).Inc()
}

// RecordIngestLatency records one archive write duration in seconds.
func (r *Recorder) RecordIngestLatency(seconds float64) {
	r.ingestLatency.Observe(seconds)
}
