// Package s3 implements blobstore.Store over Amazon S3 or an S3-compatible
// endpoint, issuing presigned URLs for every data-plane transfer.
package s3

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/marmos91/hubd/pkg/blobstore"
)

// Store implements blobstore.Store using the AWS SDK's presigning client.
//
// Thread safety: Store is safe for concurrent use. It holds no per-upload
// state of its own — multipart upload IDs are opaque tokens the caller
// threads through InitiateMultipart/PresignPart/CompleteMultipart/
// AbortMultipart, so nothing here needs to track sessions in memory.
type Store struct {
	client   *s3.Client
	presign  *s3.PresignClient
	bucket   string
	metrics  Metrics
	uploadMu sync.Mutex // guards metrics.RecordActiveUpload bookkeeping only
}

// Config configures the S3-backed blobstore.
type Config struct {
	// Client is a pre-configured S3 client. If nil, one is built from
	// Endpoint/Region/AccessKeyID/SecretAccessKey/ForcePathStyle.
	Client *s3.Client

	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	ForcePathStyle  bool

	Bucket  string
	Metrics Metrics
}

// NewClientFromConfig builds an S3 client from explicit credentials and
// endpoint settings, for S3-compatible stores (MinIO, R2, etc.) that don't
// participate in the default AWS credential chain.
func NewClientFromConfig(ctx context.Context, endpoint, region, accessKeyID, secretAccessKey string, forcePathStyle bool) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = &endpoint
		}
		o.UsePathStyle = forcePathStyle
	}), nil
}

// New constructs a Store, verifying bucket access via HeadBucket.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	client := cfg.Client
	if client == nil {
		c, err := NewClientFromConfig(ctx, cfg.Endpoint, cfg.Region, cfg.AccessKeyID, cfg.SecretAccessKey, cfg.ForcePathStyle)
		if err != nil {
			return nil, err
		}
		client = c
	}

	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.Bucket)}); err != nil {
		return nil, fmt.Errorf("access bucket %q: %w", cfg.Bucket, err)
	}

	return &Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		metrics: cfg.Metrics,
	}, nil
}

func (s *Store) observe(operation string, start time.Time, err error) {
	if s.metrics != nil {
		s.metrics.ObserveOperation(operation, time.Since(start), err)
	}
}

func withExpires(ttl time.Duration) func(*s3.PresignOptions) {
	return func(o *s3.PresignOptions) {
		if ttl > 0 {
			o.Expires = ttl
		}
	}
}

func (s *Store) PresignPut(ctx context.Context, key string, ttl time.Duration, contentLength int64) (string, error) {
	start := time.Now()
	input := &s3.PutObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)}
	if contentLength > 0 {
		input.ContentLength = aws.Int64(contentLength)
	}

	req, err := s.presign.PresignPutObject(ctx, input, withExpires(ttl))
	s.observe("PresignPutObject", start, err)
	if err != nil {
		return "", fmt.Errorf("presign put %q: %w", key, err)
	}
	return req.URL, nil
}

func (s *Store) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	start := time.Now()
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, withExpires(ttl))
	s.observe("PresignGetObject", start, err)
	if err != nil {
		return "", fmt.Errorf("presign get %q: %w", key, err)
	}
	return req.URL, nil
}

func (s *Store) Stat(ctx context.Context, key string) (*blobstore.ObjectInfo, error) {
	start := time.Now()
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	s.observe("HeadObject", start, err)
	if err != nil {
		if isNotFound(err) {
			return nil, blobstore.ErrNotFound
		}
		return nil, fmt.Errorf("stat %q: %w", key, err)
	}

	info := &blobstore.ObjectInfo{Key: key}
	if out.ContentLength != nil {
		info.Size = *out.ContentLength
	}
	if out.ETag != nil {
		info.ETag = *out.ETag
	}
	if out.LastModified != nil {
		info.LastModified = *out.LastModified
	}
	return info, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	start := time.Now()
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	s.observe("DeleteObject", start, err)
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}
