package s3

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/marmos91/hubd/pkg/blobstore"
)

func (s *Store) InitiateMultipart(ctx context.Context, key string) (string, error) {
	start := time.Now()
	out, err := s.client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	s.observe("CreateMultipartUpload", start, err)
	if err != nil {
		return "", fmt.Errorf("initiate multipart upload for %q: %w", key, err)
	}

	if s.metrics != nil {
		s.uploadMu.Lock()
		s.metrics.RecordActiveUpload(s.bucket, 1)
		s.uploadMu.Unlock()
	}
	return *out.UploadId, nil
}

func (s *Store) PresignPart(ctx context.Context, key, uploadID string, partNumber int32, ttl time.Duration) (string, error) {
	start := time.Now()
	req, err := s.presign.PresignUploadPart(ctx, &s3.UploadPartInput{
		Bucket:     aws.String(s.bucket),
		Key:        aws.String(key),
		UploadId:   aws.String(uploadID),
		PartNumber: aws.Int32(partNumber),
	}, withExpires(ttl))
	s.observe("PresignUploadPart", start, err)
	if err != nil {
		return "", fmt.Errorf("presign part %d of %q: %w", partNumber, key, err)
	}
	if s.metrics != nil {
		s.metrics.RecordMultipartPartNumber(partNumber)
	}
	return req.URL, nil
}

func (s *Store) CompleteMultipart(ctx context.Context, key, uploadID string, parts []blobstore.CompletedPart) error {
	completed := make([]types.CompletedPart, len(parts))
	for i, p := range parts {
		completed[i] = types.CompletedPart{PartNumber: aws.Int32(p.PartNumber), ETag: aws.String(p.ETag)}
	}

	start := time.Now()
	_, err := s.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          aws.String(s.bucket),
		Key:             aws.String(key),
		UploadId:        aws.String(uploadID),
		MultipartUpload: &types.CompletedMultipartUpload{Parts: completed},
	})
	s.observe("CompleteMultipartUpload", start, err)

	if s.metrics != nil {
		s.uploadMu.Lock()
		s.metrics.RecordActiveUpload(s.bucket, -1)
		s.uploadMu.Unlock()
	}
	if err != nil {
		return fmt.Errorf("complete multipart upload for %q: %w", key, err)
	}
	return nil
}

func (s *Store) AbortMultipart(ctx context.Context, key, uploadID string) error {
	start := time.Now()
	_, err := s.client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(s.bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
	})
	s.observe("AbortMultipartUpload", start, err)

	if s.metrics != nil {
		s.uploadMu.Lock()
		s.metrics.RecordActiveUpload(s.bucket, -1)
		s.uploadMu.Unlock()
		s.metrics.RecordAbortedUpload()
	}
	if err != nil {
		return fmt.Errorf("abort multipart upload for %q: %w", key, err)
	}
	return nil
}
