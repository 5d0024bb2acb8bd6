// Package metrics defines the Prometheus collectors for the ingestion pipeline.
//
// All record methods are safe to call on a nil *Metrics, so components can run
// without a registry in tests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "aviary"

// Upload outcomes.
const (
	UploadAccepted = "accepted"
	UploadRejected = "rejected"
	UploadFailed   = "failed"
)

// Write outcomes.
const (
	WriteCommitted  = "committed"
	WriteFailed     = "failed"
	WriteRolledBack = "rolled_back"
)

// Metrics holds the pipeline collectors.
type Metrics struct {
	uploadsTotal           *prometheus.CounterVec
	uploadBytes            prometheus.Histogram
	classificationsTotal   *prometheus.CounterVec
	classificationDuration prometheus.Histogram
	detectionsPerRecording prometheus.Histogram
	writesTotal            *prometheus.CounterVec

	collectors []prometheus.Collector
}

// New creates the collectors and registers them on registry.
func New(registry prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		uploadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "uploads_total",
				Help:      "Recording uploads by outcome.",
			},
			[]string{"outcome"},
		),
		uploadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_size_bytes",
			Help:      "Size of accepted recordings.",
			Buckets:   prometheus.ExponentialBuckets(16<<10, 4, 8),
		}),
		classificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "classifications_total",
				Help:      "Classifier invocations by status.",
			},
			[]string{"status"},
		),
		classificationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "classification_duration_seconds",
			Help:      "Time spent in the classifier per recording.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		detectionsPerRecording: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "detections_per_recording",
			Help:      "Detections returned by the classifier per recording.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		writesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "detection_writes_total",
				Help:      "Detection row writes by transaction mode and outcome.",
			},
			[]string{"mode", "outcome"},
		),
	}

	m.collectors = []prometheus.Collector{
		m.uploadsTotal,
		m.uploadBytes,
		m.classificationsTotal,
		m.classificationDuration,
		m.detectionsPerRecording,
		m.writesTotal,
	}

	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.collectors {
		c.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.collectors {
		c.Collect(ch)
	}
}

// RecordUpload counts an upload; size is observed only for accepted uploads.
func (m *Metrics) RecordUpload(outcome string, size int64) {
	if m == nil {
		return
	}
	m.uploadsTotal.WithLabelValues(outcome).Inc()
	if outcome == UploadAccepted {
		m.uploadBytes.Observe(float64(size))
	}
}

// RecordClassification counts one classifier call and its duration.
// detections is ignored when err is non-nil.
func (m *Metrics) RecordClassification(d time.Duration, detections int, err error) {
	if m == nil {
		return
	}
	m.classificationDuration.Observe(d.Seconds())
	if err != nil {
		m.classificationsTotal.WithLabelValues("error").Inc()
		return
	}
	m.classificationsTotal.WithLabelValues("success").Inc()
	m.detectionsPerRecording.Observe(float64(detections))
}

// RecordWrites adds n detection writes with the given mode and outcome.
func (m *Metrics) RecordWrites(mode, outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.writesTotal.WithLabelValues(mode, outcome).Add(float64(n))
}
