package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/hubd/pkg/metadata"
)

func testCommitAndTree(t *testing.T, factory StoreFactory) {
	store, cleanup := factory(t)
	defer cleanup()
	ctx := context.Background()

	ns := newTestNamespace(t, ctx, store, "vision")
	repo := newTestRepository(t, ctx, store, ns, "resnet")

	root := &metadata.Commit{ID: "c1", RepositoryID: repo.ID, Message: "init", CreatedAt: time.Now().UTC()}
	files := []*metadata.FileEntry{
		{ID: "f1", Path: "README.md", Kind: metadata.FileRegular, OID: "aaa", Size: 10},
		{ID: "f2", Path: "weights/model.bin", Kind: metadata.FileLFS, OID: "bbb", Size: 0, LFSOID: "bbb", LFSSize: 5_000_000},
	}
	require.NoError(t, store.CreateCommit(ctx, root, files))

	got, err := store.GetCommit(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "init", got.Message)

	tree, err := store.ListTree(ctx, "c1", "", true)
	require.NoError(t, err)
	assert.Len(t, tree, 2)

	scoped, err := store.ListTree(ctx, "c1", "weights", true)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "weights/model.bin", scoped[0].Path)

	entry, err := store.GetFileEntry(ctx, "c1", "README.md")
	require.NoError(t, err)
	assert.Equal(t, int64(10), entry.Size)

	second := &metadata.Commit{ID: "c2", RepositoryID: repo.ID, ParentID: "c1", Message: "update", CreatedAt: time.Now().UTC()}
	secondFiles := []*metadata.FileEntry{
		{ID: "f3", Path: "README.md", Kind: metadata.FileRegular, OID: "aaa", Size: 10},
		{ID: "f4", Path: "weights/model.bin", Kind: metadata.FileLFS, OID: "bbb", Size: 0, LFSOID: "bbb", LFSSize: 5_000_000},
	}
	require.NoError(t, store.CreateCommit(ctx, second, secondFiles))

	log, err := store.Log(ctx, "c2", 10)
	require.NoError(t, err)
	require.Len(t, log, 2)
	assert.Equal(t, "c2", log[0].ID)
	assert.Equal(t, "c1", log[1].ID)
}

func testRevisionCAS(t *testing.T, factory StoreFactory) {
	store, cleanup := factory(t)
	defer cleanup()
	ctx := context.Background()

	ns := newTestNamespace(t, ctx, store, "nlp")
	repo := newTestRepository(t, ctx, store, ns, "bert")

	c1 := &metadata.Commit{ID: "cc1", RepositoryID: repo.ID, CreatedAt: time.Now().UTC()}
	require.NoError(t, store.CreateCommit(ctx, c1, nil))

	main := &metadata.Revision{RepositoryID: repo.ID, Name: "main", Kind: metadata.RevisionBranch, CommitID: "cc1", UpdatedAt: time.Now().UTC()}
	require.NoError(t, store.UpsertRevision(ctx, main, ""))

	c2 := &metadata.Commit{ID: "cc2", RepositoryID: repo.ID, ParentID: "cc1", CreatedAt: time.Now().UTC()}
	require.NoError(t, store.CreateCommit(ctx, c2, nil))

	advance := &metadata.Revision{RepositoryID: repo.ID, Name: "main", Kind: metadata.RevisionBranch, CommitID: "cc2", UpdatedAt: time.Now().UTC()}
	err := store.UpsertRevision(ctx, advance, "wrong-parent")
	assert.True(t, metadata.IsConcurrentUpdate(err))

	require.NoError(t, store.UpsertRevision(ctx, advance, "cc1"))

	got, err := store.GetRevision(ctx, repo.ID, "main")
	require.NoError(t, err)
	assert.Equal(t, "cc2", got.CommitID)

	list, err := store.ListRevisions(ctx, repo.ID, metadata.RevisionBranch)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, store.DeleteRevision(ctx, repo.ID, "main"))
}

func testResolveRevisionName(t *testing.T, factory StoreFactory) {
	store, cleanup := factory(t)
	defer cleanup()
	ctx := context.Background()

	ns := newTestNamespace(t, ctx, store, "cv")
	repo := newTestRepository(t, ctx, store, ns, "yolo")

	commit := &metadata.Commit{ID: "deadbeefcafe", RepositoryID: repo.ID, CreatedAt: time.Now().UTC()}
	require.NoError(t, store.CreateCommit(ctx, commit, nil))

	main := &metadata.Revision{RepositoryID: repo.ID, Name: "main", Kind: metadata.RevisionBranch, CommitID: "deadbeefcafe", UpdatedAt: time.Now().UTC()}
	require.NoError(t, store.UpsertRevision(ctx, main, ""))

	id, err := store.ResolveRevisionName(ctx, repo.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "deadbeefcafe", id)

	id, err = store.ResolveRevisionName(ctx, repo.ID, "main")
	require.NoError(t, err)
	assert.Equal(t, "deadbeefcafe", id)

	id, err = store.ResolveRevisionName(ctx, repo.ID, "deadbeef")
	require.NoError(t, err)
	assert.Equal(t, "deadbeefcafe", id)

	_, err = store.ResolveRevisionName(ctx, repo.ID, "nonexistent")
	assert.True(t, metadata.IsNotFound(err))

	// "dead" is valid hex but shorter than the 7-character minimum (spec
	// §4.C8): it must never be tried as a commit prefix, even though it
	// would otherwise match "deadbeefcafe".
	_, err = store.ResolveRevisionName(ctx, repo.ID, "dead")
	assert.True(t, metadata.IsNotFound(err))

	// Two commits sharing a prefix make that prefix ambiguous; resolving it
	// must fail rather than silently pick one.
	twin := &metadata.Commit{ID: "deadbeefface", RepositoryID: repo.ID, CreatedAt: time.Now().UTC()}
	require.NoError(t, store.CreateCommit(ctx, twin, nil))
	_, err = store.ResolveRevisionName(ctx, repo.ID, "deadbeef")
	assert.True(t, metadata.IsNotFound(err))
}
