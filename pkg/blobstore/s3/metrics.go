package s3

import "time"

// Metrics observes the operations an S3-backed Store performs. A presigning
// call and a coordination call (CreateMultipartUpload, CompleteMultipartUpload,
// HeadObject, DeleteObject) are both "operations"; unlike the teacher's
// content-proxying store, no bytes ever flow through this process, so there
// is nothing analogous to RecordBytes/flush-phase metrics to report.
type Metrics interface {
	ObserveOperation(operation string, duration time.Duration, err error)
	RecordActiveUpload(store string, delta int)
	RecordMultipartPartNumber(partNumber int32)
	RecordAbortedUpload()
}
