package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/hubd/pkg/blobstore/s3"
	"github.com/marmos91/hubd/pkg/metrics"
)

// s3Metrics is the Prometheus implementation of s3.Metrics.
type s3Metrics struct {
	operationsTotal     *prometheus.CounterVec
	operationDuration   *prometheus.HistogramVec
	activeUploads       *prometheus.GaugeVec
	multipartPartNumber prometheus.Histogram
	abortedTotal        prometheus.Counter
}

func init() {
	metrics.RegisterS3MetricsConstructor(NewS3Metrics)
}

// NewS3Metrics creates a new Prometheus-backed s3.Metrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewS3Metrics() s3.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &s3Metrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "hub_object_store_operations_total",
				Help: "Total number of object store coordination calls by operation and status",
			},
			[]string{"operation", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hub_object_store_operation_duration_milliseconds",
				Help:    "Duration of object store coordination calls in milliseconds",
				Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 5000},
			},
			[]string{"operation"},
		),
		activeUploads: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "hub_object_store_active_multipart_uploads",
				Help: "Current number of in-progress multipart uploads",
			},
			[]string{"bucket"},
		),
		multipartPartNumber: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "hub_object_store_multipart_part_number",
				Help:    "Distribution of multipart part numbers presigned (indicates object size distribution)",
				Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200},
			},
		),
		abortedTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "hub_object_store_multipart_aborted_total",
				Help: "Total number of multipart uploads aborted",
			},
		),
	}
}

func (m *s3Metrics) ObserveOperation(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds() * 1000)
}

func (m *s3Metrics) RecordActiveUpload(bucket string, delta int) {
	if m == nil {
		return
	}
	m.activeUploads.WithLabelValues(bucket).Add(float64(delta))
}

func (m *s3Metrics) RecordMultipartPartNumber(partNumber int32) {
	if m == nil {
		return
	}
	m.multipartPartNumber.Observe(float64(partNumber))
}

func (m *s3Metrics) RecordAbortedUpload() {
	if m == nil {
		return
	}
	m.abortedTotal.Inc()
}
