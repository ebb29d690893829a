package gc

import (
	"context"
	"testing"
	"time"

	"github.com/marmos91/hubd/pkg/blobstore"
	"github.com/marmos91/hubd/pkg/metadata"
	"github.com/marmos91/hubd/pkg/metadata/memory"
	"github.com/marmos91/hubd/pkg/versioning"
)

type fakeBlobStore struct {
	deleted map[string]bool
}

func newFakeBlobStore() *fakeBlobStore { return &fakeBlobStore{deleted: map[string]bool{}} }

func (f *fakeBlobStore) PresignPut(context.Context, string, time.Duration, int64) (string, error) {
	return "", nil
}
func (f *fakeBlobStore) PresignGet(context.Context, string, time.Duration) (string, error) {
	return "", nil
}
func (f *fakeBlobStore) InitiateMultipart(context.Context, string) (string, error) { return "", nil }
func (f *fakeBlobStore) PresignPart(context.Context, string, string, int32, time.Duration) (string, error) {
	return "", nil
}
func (f *fakeBlobStore) CompleteMultipart(context.Context, string, string, []blobstore.CompletedPart) error {
	return nil
}
func (f *fakeBlobStore) AbortMultipart(context.Context, string, string) error { return nil }
func (f *fakeBlobStore) Stat(context.Context, string) (*blobstore.ObjectInfo, error) {
	return &blobstore.ObjectInfo{}, nil
}
func (f *fakeBlobStore) Delete(ctx context.Context, key string) error {
	f.deleted[key] = true
	return nil
}

func TestSweeper_ReclaimsUnreferencedOrphan(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	ns := &metadata.Namespace{ID: "ns1", Slug: "acme", Kind: "org", CreatedAt: time.Now().UTC()}
	if err := store.CreateNamespace(ctx, ns); err != nil {
		t.Fatal(err)
	}
	repo := &metadata.Repository{ID: "repo1", NamespaceID: ns.ID, Name: "resnet", Kind: metadata.RepoModel, CreatedAt: time.Now().UTC()}
	if err := store.CreateRepository(ctx, repo); err != nil {
		t.Fatal(err)
	}

	v := versioning.NewEngine(store)
	if _, err := v.CreateRoot(ctx, repo.ID); err != nil {
		t.Fatal(err)
	}

	// "kept" is referenced by the current tip's tree; "orphan" is not
	// referenced anywhere.
	builder, err := v.NewCommitBuilder(ctx, repo.ID, "main")
	if err != nil {
		t.Fatal(err)
	}
	builder.LinkExternal("model.bin", blobstore.KeyForOID("kept"), "kept", 100)
	if _, err := builder.Commit(ctx, "add weights", "", "ada"); err != nil {
		t.Fatal(err)
	}

	if err := store.UpsertLFSPointer(ctx, &metadata.LFSPointer{OID: "kept", RepositoryID: repo.ID, Size: 100, UploadedAt: time.Now().UTC()}); err != nil {
		t.Fatal(err)
	}
	if err := store.UpsertLFSPointer(ctx, &metadata.LFSPointer{OID: "orphan", RepositoryID: repo.ID, Size: 50, UploadedAt: time.Now().UTC()}); err != nil {
		t.Fatal(err)
	}

	blobs := newFakeBlobStore()
	sweeper := NewSweeper(store, v, blobs, WithKeepVersions(5))
	if err := sweeper.SweepRepository(ctx, repo.ID); err != nil {
		t.Fatal(err)
	}

	if !blobs.deleted[blobstore.KeyForOID("orphan")] {
		t.Error("expected orphan object to be deleted")
	}
	if blobs.deleted[blobstore.KeyForOID("kept")] {
		t.Error("expected referenced object not to be deleted")
	}

	if _, err := store.GetLFSPointer(ctx, repo.ID, "orphan"); !metadata.IsNotFound(err) {
		t.Errorf("expected orphan pointer row removed, got err=%v", err)
	}
	if _, err := store.GetLFSPointer(ctx, repo.ID, "kept"); err != nil {
		t.Errorf("expected kept pointer row to remain: %v", err)
	}
}

func TestSweeper_ProtectsZeroRefcountButStillReachableObject(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	ns := &metadata.Namespace{ID: "ns2", Slug: "globex", Kind: "org", CreatedAt: time.Now().UTC()}
	if err := store.CreateNamespace(ctx, ns); err != nil {
		t.Fatal(err)
	}
	repo := &metadata.Repository{ID: "repo2", NamespaceID: ns.ID, Name: "bert", Kind: metadata.RepoModel, CreatedAt: time.Now().UTC()}
	if err := store.CreateRepository(ctx, repo); err != nil {
		t.Fatal(err)
	}

	v := versioning.NewEngine(store)
	if _, err := v.CreateRoot(ctx, repo.ID); err != nil {
		t.Fatal(err)
	}
	builder, err := v.NewCommitBuilder(ctx, repo.ID, "main")
	if err != nil {
		t.Fatal(err)
	}
	builder.LinkExternal("weights.bin", blobstore.KeyForOID("stillreachable"), "stillreachable", 10)
	if _, err := builder.Commit(ctx, "add", "", "ada"); err != nil {
		t.Fatal(err)
	}

	// Simulate a refcount that drifted to zero despite the tree still
	// pointing at it — the sweeper's reachability check must still save it.
	if err := store.UpsertLFSPointer(ctx, &metadata.LFSPointer{OID: "stillreachable", RepositoryID: repo.ID, Size: 10, UploadedAt: time.Now().UTC()}); err != nil {
		t.Fatal(err)
	}

	blobs := newFakeBlobStore()
	sweeper := NewSweeper(store, v, blobs)
	if err := sweeper.SweepRepository(ctx, repo.ID); err != nil {
		t.Fatal(err)
	}

	if blobs.deleted[blobstore.KeyForOID("stillreachable")] {
		t.Error("expected reachable object to survive the sweep")
	}
}
