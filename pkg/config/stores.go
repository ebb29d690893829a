package config

import (
	"context"
	"fmt"

	"github.com/marmos91/hubd/pkg/blobstore"
	"github.com/marmos91/hubd/pkg/blobstore/s3"
	"github.com/marmos91/hubd/pkg/metadata"
	"github.com/marmos91/hubd/pkg/metadata/memory"
	"github.com/marmos91/hubd/pkg/metadata/postgres"
	"github.com/marmos91/hubd/pkg/metrics"
)

// CreateMetadataStore creates the metadata.MetadataStore backend selected by
// cfg.Database.Type.
func CreateMetadataStore(ctx context.Context, cfg DatabaseConfig) (metadata.MetadataStore, error) {
	switch cfg.Type {
	case "memory":
		return memory.New(), nil
	case "postgres":
		return postgres.New(ctx, postgres.Config{
			DSN:             cfg.DSN,
			MaxConns:        cfg.MaxConns,
			MinConns:        cfg.MinConns,
			ConnectTimeout:  cfg.ConnectTimeout,
			MaxConnLifetime: cfg.MaxConnLifetime,
		})
	default:
		return nil, fmt.Errorf("unknown database type: %q", cfg.Type)
	}
}

// CreateBlobStore creates the S3-backed blobstore.Store artifact content is
// read from and presigned against.
func CreateBlobStore(ctx context.Context, cfg ObjectStoreConfig) (blobstore.Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("object_store.bucket is required")
	}

	return s3.New(ctx, s3.Config{
		Endpoint:        cfg.Endpoint,
		Region:          cfg.Region,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		ForcePathStyle:  cfg.ForcePathStyle,
		Bucket:          cfg.Bucket,
		Metrics:         metrics.NewS3Metrics(),
	})
}
