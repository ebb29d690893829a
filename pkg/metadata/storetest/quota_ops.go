package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/hubd/pkg/metadata"
)

func testQuotaEnforcement(t *testing.T, factory StoreFactory) {
	store, cleanup := factory(t)
	defer cleanup()
	ctx := context.Background()

	ns := newTestNamespace(t, ctx, store, "budget")
	require.NoError(t, store.SetQuotaPolicy(ctx, &metadata.QuotaPolicy{
		ID: "q1", NamespaceID: ns.ID, MaxBytes: 1000, MaxObjects: 2,
	}))

	require.NoError(t, store.ReserveQuota(ctx, ns.ID, 600, 1))

	err := store.ReserveQuota(ctx, ns.ID, 600, 1)
	assert.True(t, metadata.IsQuotaExceeded(err))

	require.NoError(t, store.ReserveQuota(ctx, ns.ID, 300, 1))

	got, err := store.GetQuotaPolicy(ctx, ns.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(900), got.UsedBytes)
	assert.Equal(t, int64(2), got.UsedObjects)

	require.NoError(t, store.ReserveQuota(ctx, ns.ID, -900, -2))
	got, err = store.GetQuotaPolicy(ctx, ns.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.UsedBytes)
}

func testLFSReferenceCount(t *testing.T, factory StoreFactory) {
	store, cleanup := factory(t)
	defer cleanup()
	ctx := context.Background()

	ns := newTestNamespace(t, ctx, store, "lfsns")
	repo := newTestRepository(t, ctx, store, ns, "lfsrepo")

	ptr := &metadata.LFSPointer{RepositoryID: repo.ID, OID: "oid1", Size: 2048, UploadedAt: time.Now().UTC()}
	require.NoError(t, store.UpsertLFSPointer(ctx, ptr))

	require.NoError(t, store.IncrementLFSRefCount(ctx, repo.ID, "oid1", 1))

	got, err := store.GetLFSPointer(ctx, repo.ID, "oid1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.ReferenceCount)

	unreferenced, err := store.ListUnreferenced(ctx, repo.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, unreferenced)

	require.NoError(t, store.IncrementLFSRefCount(ctx, repo.ID, "oid1", -1))
	unreferenced, err = store.ListUnreferenced(ctx, repo.ID, 10)
	require.NoError(t, err)
	require.Len(t, unreferenced, 1)

	require.NoError(t, store.DeleteLFSPointer(ctx, repo.ID, "oid1"))
	_, err = store.GetLFSPointer(ctx, repo.ID, "oid1")
	assert.True(t, metadata.IsNotFound(err))

	cfg := &metadata.LFSConfig{RepositoryID: repo.ID, ThresholdBytes: 1 << 20, MultipartThreshold: 5 << 30}
	require.NoError(t, store.SetLFSConfig(ctx, cfg))
	got2, err := store.GetLFSConfig(ctx, repo.ID)
	require.NoError(t, err)
	assert.Equal(t, cfg.ThresholdBytes, got2.ThresholdBytes)
}

func testStagingLifecycle(t *testing.T, factory StoreFactory) {
	store, cleanup := factory(t)
	defer cleanup()
	ctx := context.Background()

	ns := newTestNamespace(t, ctx, store, "stagens")
	repo := newTestRepository(t, ctx, store, ns, "stagerepo")

	rec := &metadata.StagingRecord{
		ID: "stg1", RepositoryID: repo.ID, OID: "oid2", Size: 4096,
		Status: metadata.StagingPending, CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().Add(-time.Minute).UTC(),
	}
	require.NoError(t, store.CreateStagingRecord(ctx, rec))

	got, err := store.GetStagingRecord(ctx, repo.ID, "oid2")
	require.NoError(t, err)
	assert.Equal(t, metadata.StagingPending, got.Status)

	require.NoError(t, store.SetStagingUploadID(ctx, repo.ID, "oid2", "upload-1"))
	require.NoError(t, store.UpdateStagingStatus(ctx, repo.ID, "oid2", metadata.StagingUploaded))

	expired, err := store.ListExpired(ctx, 10)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "upload-1", expired[0].UploadID)

	require.NoError(t, store.DeleteStagingRecord(ctx, repo.ID, "oid2"))
	_, err = store.GetStagingRecord(ctx, repo.ID, "oid2")
	assert.True(t, metadata.IsNotFound(err))
}
