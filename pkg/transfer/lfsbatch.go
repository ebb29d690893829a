package transfer

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/hubd/internal/bytesize"
	"github.com/marmos91/hubd/internal/telemetry"
	"github.com/marmos91/hubd/pkg/blobstore"
	"github.com/marmos91/hubd/pkg/metadata"
)

const (
	// DefaultMultipartThreshold is the per-repository default used when
	// LFSConfig has not set its own (spec §4.C6: "multipart_threshold
	// (default 5 GiB)").
	DefaultMultipartThreshold = 5 * bytesize.GiB
	defaultPartSize           = 100 * bytesize.MiB
	defaultPresignTTL         = 15 * time.Minute
	defaultStagingTTL         = 24 * time.Hour
)

// Operation distinguishes the two LFS batch request shapes (spec §4.C6.2).
type Operation string

const (
	OpUpload   Operation = "upload"
	OpDownload Operation = "download"
)

// BatchObject is one {oid, size} pair from a batch request.
type BatchObject struct {
	OID  string
	Size int64
}

// Action is a single presigned href with its expiry, the "upload"/"download"
// action shape of the wire protocol.
type Action struct {
	Href      string
	ExpiresAt time.Time
}

// MultipartPart is one presigned part URL within a MultipartPlan.
type MultipartPart struct {
	PartNumber int32
	Href       string
}

// MultipartPlan is returned instead of a single Action when an upload's
// size crosses the repository's multipart threshold.
type MultipartPlan struct {
	UploadID string
	Parts    []MultipartPart
}

// BatchObjectResult is one object's verdict within a batch response. Dedup
// means the content is already stored and the client should skip uploading
// it entirely; ErrorCode/ErrorMessage are populated instead of Upload/
// Download/Multipart when the object could not be resolved or planned.
type BatchObjectResult struct {
	OID          string
	Size         int64
	Dedup        bool
	Upload       *Action
	Multipart    *MultipartPlan
	Download     *Action
	ErrorCode    string
	ErrorMessage string
}

// Broker implements the LFS batch endpoint: it plans presigned actions for
// every object in a batch request and tracks pending uploads through
// metadata.StagingStore until Verify (or CompleteMultipart, for multipart
// sessions) confirms the bytes actually landed.
type Broker struct {
	store      metadata.MetadataStore
	blobs      blobstore.Store
	presignTTL time.Duration
	partSize   int64
	stagingTTL time.Duration
}

func NewBroker(store metadata.MetadataStore, blobs blobstore.Store) *Broker {
	return &Broker{
		store:      store,
		blobs:      blobs,
		presignTTL: defaultPresignTTL,
		partSize:   int64(defaultPartSize),
		stagingTTL: defaultStagingTTL,
	}
}

// Batch plans actions for every object in one request (spec §4.C6.2).
// wantMultipart mirrors the client's transfer=["multipart"] capability
// advertisement; when false every upload gets a single presigned PUT
// regardless of size.
func (b *Broker) Batch(ctx context.Context, repoID string, op Operation, objects []BatchObject, wantMultipart bool) ([]BatchObjectResult, error) {
	ctx, span := telemetry.StartTransferSpan(ctx, telemetry.SpanTransferBatch, repoID, string(op), len(objects))
	defer span.End()

	switch op {
	case OpDownload:
		return b.batchDownload(ctx, repoID, objects)
	case OpUpload:
		return b.batchUpload(ctx, repoID, objects, wantMultipart)
	default:
		err := metadata.NewInvalidArgumentError("operation", string(op))
		telemetry.RecordError(ctx, err)
		return nil, err
	}
}

func (b *Broker) batchDownload(ctx context.Context, repoID string, objects []BatchObject) ([]BatchObjectResult, error) {
	out := make([]BatchObjectResult, len(objects))
	for i, o := range objects {
		res := BatchObjectResult{OID: o.OID, Size: o.Size}

		ptr, err := b.store.GetLFSPointer(ctx, repoID, o.OID)
		switch {
		case metadata.IsNotFound(err):
			res.ErrorCode = "not_found"
			res.ErrorMessage = "object does not exist"
			out[i] = res
			continue
		case err != nil:
			return nil, err
		}

		url, err := b.blobs.PresignGet(ctx, blobstore.KeyForOID(ptr.OID), b.presignTTL)
		if err != nil {
			return nil, err
		}
		res.Size = ptr.Size
		res.Download = &Action{Href: url, ExpiresAt: time.Now().UTC().Add(b.presignTTL)}
		out[i] = res
	}
	return out, nil
}

func (b *Broker) batchUpload(ctx context.Context, repoID string, objects []BatchObject, wantMultipart bool) ([]BatchObjectResult, error) {
	cfg, err := b.store.GetLFSConfig(ctx, repoID)
	if err != nil && !metadata.IsNotFound(err) {
		return nil, err
	}
	multipartThreshold := int64(DefaultMultipartThreshold)
	if cfg != nil && cfg.MultipartThreshold > 0 {
		multipartThreshold = cfg.MultipartThreshold
	}

	out := make([]BatchObjectResult, len(objects))
	for i, o := range objects {
		res, err := b.planUpload(ctx, repoID, o, wantMultipart, multipartThreshold)
		if err != nil {
			return nil, err
		}
		out[i] = *res
	}
	return out, nil
}

// planUpload dedups against an existing LFSPointer of the same size or a staging
// record that already finished uploading, otherwise opens (or resumes) a
// staging record and presigns either a single PUT or a multipart session.
func (b *Broker) planUpload(ctx context.Context, repoID string, o BatchObject, wantMultipart bool, multipartThreshold int64) (*BatchObjectResult, error) {
	res := &BatchObjectResult{OID: o.OID, Size: o.Size}

	switch existing, err := b.store.GetLFSPointer(ctx, repoID, o.OID); {
	case err == nil && existing.Size == o.Size:
		res.Dedup = true
		return res, nil
	case err != nil && !metadata.IsNotFound(err):
		return nil, err
	}

	key := blobstore.KeyForOID(o.OID)

	switch staged, err := b.store.GetStagingRecord(ctx, repoID, o.OID); {
	case err == nil:
		if staged.Status == metadata.StagingUploaded || staged.Status == metadata.StagingCommitted {
			res.Dedup = true
			return res, nil
		}
	case metadata.IsNotFound(err):
		staging := &metadata.StagingRecord{
			ID:           uuid.NewString(),
			RepositoryID: repoID,
			OID:          o.OID,
			Size:         o.Size,
			Status:       metadata.StagingPending,
			CreatedAt:    time.Now().UTC(),
			ExpiresAt:    time.Now().UTC().Add(b.stagingTTL),
		}
		if err := b.store.CreateStagingRecord(ctx, staging); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if !wantMultipart || o.Size < multipartThreshold {
		url, err := b.blobs.PresignPut(ctx, key, b.presignTTL, o.Size)
		if err != nil {
			return nil, err
		}
		res.Upload = &Action{Href: url, ExpiresAt: time.Now().UTC().Add(b.presignTTL)}
		return res, nil
	}

	uploadID, err := b.blobs.InitiateMultipart(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := b.store.SetStagingUploadID(ctx, repoID, o.OID, uploadID); err != nil {
		return nil, err
	}

	numParts := int32((o.Size + b.partSize - 1) / b.partSize)
	if numParts < 1 {
		numParts = 1
	}
	parts := make([]MultipartPart, numParts)
	for p := int32(0); p < numParts; p++ {
		href, err := b.blobs.PresignPart(ctx, key, uploadID, p+1, b.presignTTL)
		if err != nil {
			return nil, err
		}
		parts[p] = MultipartPart{PartNumber: p + 1, Href: href}
	}
	res.Multipart = &MultipartPlan{UploadID: uploadID, Parts: parts}
	return res, nil
}

// CompleteMultipart finalizes a multipart session once the client has PUT
// every part and collected their ETags, then marks the staged object
// uploaded. A commit may still only reference it once it is fully
// materialized in C3 via the commit engine's link_external step.
func (b *Broker) CompleteMultipart(ctx context.Context, repoID, oid, uploadID string, parts []blobstore.CompletedPart) error {
	if err := b.blobs.CompleteMultipart(ctx, blobstore.KeyForOID(oid), uploadID, parts); err != nil {
		return err
	}
	return b.store.UpdateStagingStatus(ctx, repoID, oid, metadata.StagingUploaded)
}

// AbortUpload cancels an in-progress multipart session, if any, and drops
// its staging record so the oid can be re-planned from scratch.
func (b *Broker) AbortUpload(ctx context.Context, repoID, oid, uploadID string) error {
	if uploadID != "" {
		if err := b.blobs.AbortMultipart(ctx, blobstore.KeyForOID(oid), uploadID); err != nil {
			return err
		}
	}
	return b.store.DeleteStagingRecord(ctx, repoID, oid)
}
