package metrics

import (
	"time"

	"github.com/marmos91/hubd/pkg/blobstore/s3"
)

// NewS3Metrics creates a new Prometheus-backed s3.Metrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called). When
// nil is returned, callers should pass nil to blobstore/s3.New, which
// results in zero overhead.
func NewS3Metrics() s3.Metrics {
	if !IsEnabled() {
		return nil
	}
	return newPrometheusS3Metrics()
}

// newPrometheusS3Metrics is implemented in pkg/metrics/prometheus/s3.go.
// This indirection avoids an import cycle while keeping the API clean.
var newPrometheusS3Metrics func() s3.Metrics

// RegisterS3MetricsConstructor registers the Prometheus S3 metrics constructor.
// Called by pkg/metrics/prometheus/s3.go during package initialization.
func RegisterS3MetricsConstructor(constructor func() s3.Metrics) {
	newPrometheusS3Metrics = constructor
}

// ObserveOperation records an S3 operation with its duration and outcome.
func ObserveOperation(m s3.Metrics, operation string, duration time.Duration, err error) {
	if m != nil {
		m.ObserveOperation(operation, duration, err)
	}
}
