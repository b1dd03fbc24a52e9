package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TransformMetrics records timing and outcome of analytics transforms.
type TransformMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	rows     *prometheus.GaugeVec
}

// NewTransformMetrics registers the transform metrics on the provided registerer.
func NewTransformMetrics(reg prometheus.Registerer) *TransformMetrics {
	if reg == nil {
		return &TransformMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "transform_duration_seconds",
		Help:    "Duration of analytics transforms in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"transform"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "transform_success",
		Help: "Successful transform executions.",
	}, []string{"transform"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "transform_failure",
		Help: "Failed transform executions.",
	}, []string{"transform"})
	rows := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "transform_rows",
		Help: "Rows produced by the last transform execution.",
	}, []string{"transform"})
	reg.MustRegister(duration, success, failure, rows)
	return &TransformMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		rows:     rows,
	}
}

// ObserveDuration records the duration for the named transform.
func (m *TransformMetrics) ObserveDuration(name string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(name)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named transform.
func (m *TransformMetrics) IncSuccess(name string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(name)).Inc()
}

// IncFailure increments the failure counter for the named transform.
func (m *TransformMetrics) IncFailure(name string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(name)).Inc()
}

// SetRows records the row count of the named transform's result.
func (m *TransformMetrics) SetRows(name string, rows int) {
	if m == nil || m.rows == nil {
		return
	}
	m.rows.WithLabelValues(normalizeLabel(name)).Set(float64(rows))
}

func normalizeLabel(name string) string {
	if name == "" {
		return "unknown"
	}
	return name
}
