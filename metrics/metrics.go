// Package metrics provides observability for the verification engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all engine instrumentation. Methods are nil-safe so tests
// can pass a nil *Metrics without registering collectors.
type Metrics struct {
	// Sessions created by the capture surface
	SessionsStarted prometheus.Counter

	// Terminal outcomes by result ("passed", "failed") and reason
	VerdictOutcome *prometheus.CounterVec

	// Latency of OCR + field extraction per document submission
	ExtractionLatency prometheus.Histogram

	// Latency of the face match capability call
	FaceMatchLatency prometheus.Histogram
}

// New creates a Metrics instance with all collectors registered on the
// default registry.
func New() *Metrics {
	return &Metrics{
		SessionsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "idverify_sessions_started_total",
			Help: "Total verification sessions started",
		}),

		VerdictOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "idverify_verdict_outcomes_total",
			Help: "Terminal verification outcomes by result and reason",
		}, []string{"result", "reason"}),

		ExtractionLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "idverify_extraction_duration_seconds",
			Help:    "Duration of OCR and field extraction per document",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		FaceMatchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "idverify_face_match_duration_seconds",
			Help:    "Duration of the face match capability call",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

// IncrementSessionsStarted records a newly created session.
func (m *Metrics) IncrementSessionsStarted() {
	if m != nil {
		m.SessionsStarted.Inc()
	}
}

// IncrementVerdict records a terminal outcome.
func (m *Metrics) IncrementVerdict(result, reason string) {
	if m != nil {
		m.VerdictOutcome.WithLabelValues(result, reason).Inc()
	}
}

// ObserveExtractionLatency records one document extraction duration.
func (m *Metrics) ObserveExtractionLatency(d time.Duration) {
	if m != nil {
		m.ExtractionLatency.Observe(d.Seconds())
	}
}

// ObserveFaceMatchLatency records one face match duration.
func (m *Metrics) ObserveFaceMatchLatency(d time.Duration) {
	if m != nil {
		m.FaceMatchLatency.Observe(d.Seconds())
	}
}
