package instrument

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder records call metrics for observability
type Recorder interface {
	// RecordCall records a completed call with its outcome and duration
	RecordCall(function string, err error, duration time.Duration)

	// RecordPanic records a panic surfacing from an instrumented call
	RecordPanic(function string)
}

// NoOpRecorder is a recorder that does nothing
type NoOpRecorder struct{}

func (n *NoOpRecorder) RecordCall(function string, err error, duration time.Duration) {}
func (n *NoOpRecorder) RecordPanic(function string)                                   {}

// SimpleRecorder provides basic in-memory metrics (useful for testing)
type SimpleRecorder struct {
	mu       sync.Mutex
	calls    []CallMetric
	panics   []PanicMetric
	maxCalls int
}

type CallMetric struct {
	Function  string
	Err       error
	Duration  time.Duration
	Timestamp time.Time
}

type PanicMetric struct {
	Function  string
	Timestamp time.Time
}

// NewSimpleRecorder creates a simple in-memory recorder
func NewSimpleRecorder(maxCalls int) *SimpleRecorder {
	return &SimpleRecorder{
		maxCalls: maxCalls,
	}
}

func (s *SimpleRecorder) RecordCall(function string, err error, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, CallMetric{
		Function:  function,
		Err:       err,
		Duration:  duration,
		Timestamp: time.Now(),
	})

	// Keep only last N calls to avoid unbounded growth
	if len(s.calls) > s.maxCalls {
		s.calls = s.calls[len(s.calls)-s.maxCalls:]
	}
}

func (s *SimpleRecorder) RecordPanic(function string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.panics = append(s.panics, PanicMetric{
		Function:  function,
		Timestamp: time.Now(),
	})

	if len(s.panics) > 100 {
		s.panics = s.panics[len(s.panics)-100:]
	}
}

// Calls returns a copy of the recorded call metrics
func (s *SimpleRecorder) Calls() []CallMetric {
	s.mu.Lock()
	defer s.mu.Unlock()

	calls := make([]CallMetric, len(s.calls))
	copy(calls, s.calls)
	return calls
}

// Panics returns a copy of the recorded panic metrics
func (s *SimpleRecorder) Panics() []PanicMetric {
	s.mu.Lock()
	defer s.mu.Unlock()

	panics := make([]PanicMetric, len(s.panics))
	copy(panics, s.panics)
	return panics
}

// PrometheusRecorder records call metrics to a Prometheus registry
type PrometheusRecorder struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	panics   *prometheus.CounterVec
}

// NewPrometheusRecorder creates a recorder registered against reg.
// Pass prometheus.DefaultRegisterer to use the default registry.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	r := &PrometheusRecorder{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "instrument_calls_total",
			Help: "Total instrumented calls by function and outcome.",
		}, []string{"function", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "instrument_call_duration_seconds",
			Help:    "Instrumented call duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"function"}),
		panics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "instrument_panics_total",
			Help: "Total panics surfacing from instrumented calls.",
		}, []string{"function"}),
	}
	if reg != nil {
		reg.MustRegister(r.calls, r.duration, r.panics)
	}
	return r
}

func (r *PrometheusRecorder) RecordCall(function string, err error, duration time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.calls.WithLabelValues(function, status).Inc()
	r.duration.WithLabelValues(function).Observe(duration.Seconds())
}

func (r *PrometheusRecorder) RecordPanic(function string) {
	r.panics.WithLabelValues(function).Inc()
}
