// Package blobstore defines the S3-shape object storage contract (spec
// C5): presigned PUT/GET, multipart upload coordination, stat, and delete.
// The core never proxies bytes itself — every large transfer happens
// directly between the client and the object store over a presigned URL.
package blobstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

var ErrNotFound = errors.New("object not found")

// CompletedPart is one finished part of a multipart upload, reported by
// the client after it PUTs the part directly to the presigned URL.
type CompletedPart struct {
	PartNumber int32
	ETag       string
}

// ObjectInfo is the result of a Stat call.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	LastModified time.Time
}

// Store is the S3-shape interface every object storage backend satisfies.
type Store interface {
	// PresignPut returns a URL the client can PUT bytes to directly. If
	// contentLength is non-zero, the signed request pins Content-Length so
	// the store rejects a mismatched upload.
	PresignPut(ctx context.Context, key string, ttl time.Duration, contentLength int64) (url string, err error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (url string, err error)

	InitiateMultipart(ctx context.Context, key string) (uploadID string, err error)
	PresignPart(ctx context.Context, key, uploadID string, partNumber int32, ttl time.Duration) (url string, err error)
	CompleteMultipart(ctx context.Context, key, uploadID string, parts []CompletedPart) error
	AbortMultipart(ctx context.Context, key, uploadID string) error

	Stat(ctx context.Context, key string) (*ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}

// KeyForOID derives the deterministic, content-addressed storage key for a
// sha256 content hash: sha256/<oid[0:2]>/<oid[2:4]>/<oid>. Identical
// content always maps to the same key, so distinct repositories share one
// physical blob.
func KeyForOID(oid string) string {
	if len(oid) < 4 {
		return "sha256/" + oid
	}
	return "sha256/" + oid[0:2] + "/" + oid[2:4] + "/" + oid
}

// SHA256Hex computes the lowercase hex sha256 digest of data, the form
// used throughout the hub as content_sha256 / oid.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
