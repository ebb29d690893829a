package transfer

import (
	"context"

	"github.com/marmos91/hubd/pkg/blobstore"
	"github.com/marmos91/hubd/pkg/metadata"
)

// Verifier implements the transfer protocol's verification step (spec
// §4.C6.3): after a client finishes a basic (single presigned PUT) upload
// it calls Verify to confirm the object actually landed in C5 at the
// declared size before a commit is allowed to reference it.
type Verifier struct {
	store metadata.MetadataStore
	blobs blobstore.Store
}

func NewVerifier(store metadata.MetadataStore, blobs blobstore.Store) *Verifier {
	return &Verifier{store: store, blobs: blobs}
}

// Verify stats the object at its content-addressed key and, on a size
// match, marks the staging record uploaded. A size mismatch leaves the
// staging record pending so the client can retry.
func (v *Verifier) Verify(ctx context.Context, repoID, oid string, declaredSize int64) error {
	info, err := v.blobs.Stat(ctx, blobstore.KeyForOID(oid))
	if err != nil {
		return err
	}
	if info.Size != declaredSize {
		return ErrSizeMismatch
	}
	return v.store.UpdateStagingStatus(ctx, repoID, oid, metadata.StagingUploaded)
}

// IsObjectReady reports whether oid may be referenced by a commit's
// link_external step: either it is already tracked by an LFSPointer
// (whatever its reference count), or its staging record has finished
// uploading (spec §4.C7).
func (v *Verifier) IsObjectReady(ctx context.Context, repoID, oid string) (bool, error) {
	switch _, err := v.store.GetLFSPointer(ctx, repoID, oid); {
	case err == nil:
		return true, nil
	case !metadata.IsNotFound(err):
		return false, err
	}

	staged, err := v.store.GetStagingRecord(ctx, repoID, oid)
	switch {
	case metadata.IsNotFound(err):
		return false, nil
	case err != nil:
		return false, err
	}
	return staged.Status == metadata.StagingUploaded || staged.Status == metadata.StagingCommitted, nil
}
