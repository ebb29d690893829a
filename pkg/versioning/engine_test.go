package versioning

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/hubd/pkg/metadata"
	"github.com/marmos91/hubd/pkg/metadata/memory"
)

func newTestRepo(t *testing.T, ctx context.Context, store metadata.MetadataStore, name string) *metadata.Repository {
	t.Helper()
	ns := &metadata.Namespace{ID: "ns_" + name, Slug: name, Kind: "user", CreatedAt: time.Now().UTC()}
	require.NoError(t, store.CreateNamespace(ctx, ns))
	repo := &metadata.Repository{ID: "repo_" + name, NamespaceID: ns.ID, Name: name, Kind: metadata.RepoModel, CreatedAt: time.Now().UTC()}
	require.NoError(t, store.CreateRepository(ctx, repo))
	return repo
}

func TestEngine_CreateRootAndCommitFlow(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	repo := newTestRepo(t, ctx, store, "resnet")
	engine := NewEngine(store)

	root, err := engine.CreateRoot(ctx, repo.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, root)

	tip, err := engine.ListTree(ctx, repo.ID, "main", "", true)
	require.NoError(t, err)
	assert.Empty(t, tip)

	builder, err := engine.NewCommitBuilder(ctx, repo.ID, "main")
	require.NoError(t, err)
	assert.Equal(t, root, builder.ParentCommitID())

	builder.UploadInline("README.md", []byte("# resnet"))
	builder.LinkExternal("weights/model.bin", "sha256/ab/cd/abcd...", "abcd1234", 5_000_000)

	commitID, err := builder.Commit(ctx, "initial upload", "", "ada")
	require.NoError(t, err)
	assert.NotEqual(t, root, commitID)

	entries, err := engine.ListTree(ctx, repo.ID, "main", "", true)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	readme, err := engine.Stat(ctx, repo.ID, "main", "README.md")
	require.NoError(t, err)
	assert.Equal(t, []byte("# resnet"), readme.InlineContent)
}

func TestEngine_ConcurrentCommitFailsCAS(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	repo := newTestRepo(t, ctx, store, "bert")
	engine := NewEngine(store)

	_, err := engine.CreateRoot(ctx, repo.ID)
	require.NoError(t, err)

	b1, err := engine.NewCommitBuilder(ctx, repo.ID, "main")
	require.NoError(t, err)
	b2, err := engine.NewCommitBuilder(ctx, repo.ID, "main")
	require.NoError(t, err)

	b1.UploadInline("a.json", []byte("{}"))
	_, err = b1.Commit(ctx, "add a.json", "", "ada")
	require.NoError(t, err)

	b2.UploadInline("b.json", []byte("{}"))
	_, err = b2.Commit(ctx, "add b.json", "", "grace")
	assert.True(t, metadata.IsConcurrentUpdate(err))
}

func TestEngine_BranchTagLifecycle(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	repo := newTestRepo(t, ctx, store, "yolo")
	engine := NewEngine(store)

	root, err := engine.CreateRoot(ctx, repo.ID)
	require.NoError(t, err)

	require.NoError(t, engine.CreateBranch(ctx, repo.ID, "dev", "main"))
	require.NoError(t, engine.CreateTag(ctx, repo.ID, "v1", "main"))

	branches, err := engine.ListRefs(ctx, repo.ID, metadata.RevisionBranch)
	require.NoError(t, err)
	assert.Len(t, branches, 2)

	tags, err := engine.ListRefs(ctx, repo.ID, metadata.RevisionTag)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, root, tags[0].CommitID)

	require.NoError(t, engine.DeleteBranch(ctx, repo.ID, "dev"))
	err = engine.DeleteBranch(ctx, repo.ID, "main")
	assert.Error(t, err)
}

func TestEngine_DiffAndRevert(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	repo := newTestRepo(t, ctx, store, "gpt")
	engine := NewEngine(store)

	c0, err := engine.CreateRoot(ctx, repo.ID)
	require.NoError(t, err)

	b1, err := engine.NewCommitBuilder(ctx, repo.ID, "main")
	require.NoError(t, err)
	b1.UploadInline("a.json", []byte("{}"))
	c1, err := b1.Commit(ctx, "add a.json", "", "ada")
	require.NoError(t, err)

	diff, err := engine.Diff(ctx, repo.ID, c0, c1)
	require.NoError(t, err)
	require.Len(t, diff, 1)
	assert.Equal(t, "added", diff[0].Change)

	// Revert(c1) undoes c1 (which added a.json), so the new commit's tree
	// must equal c1's *parent* c0's tree, not c1's own tree (spec S6).
	c2, err := engine.Revert(ctx, repo.ID, "main", c1, "grace", false)
	require.NoError(t, err)
	assert.NotEqual(t, c1, c2)

	tree, err := engine.ListTree(ctx, repo.ID, c2, "", true)
	require.NoError(t, err)
	assert.Empty(t, tree)

	log, err := engine.Log(ctx, repo.ID, "main", 10, "")
	require.NoError(t, err)
	assert.Len(t, log, 3) // c2 -> c1 -> c0
}

func TestEngine_ResetRestoresTargetsOwnTree(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	repo := newTestRepo(t, ctx, store, "resetdist")
	engine := NewEngine(store)

	_, err := engine.CreateRoot(ctx, repo.ID)
	require.NoError(t, err)

	b1, err := engine.NewCommitBuilder(ctx, repo.ID, "main")
	require.NoError(t, err)
	b1.UploadInline("a.json", []byte("{}"))
	c1, err := b1.Commit(ctx, "add a.json", "", "ada")
	require.NoError(t, err)

	b2, err := engine.NewCommitBuilder(ctx, repo.ID, "main")
	require.NoError(t, err)
	b2.UploadInline("b.json", []byte("{}"))
	_, err = b2.Commit(ctx, "add b.json", "", "grace")
	require.NoError(t, err)

	// Reset(c1) restores c1's own tree ({a.json}), unlike Revert(c1) which
	// would undo c1 and leave an empty tree.
	c3, err := engine.Reset(ctx, repo.ID, "main", c1, "", "ada", false)
	require.NoError(t, err)

	tree, err := engine.ListTree(ctx, repo.ID, c3, "", true)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, "a.json", tree[0].Path)
}

func TestEngine_ResetRequiresForceWhenNoop(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	repo := newTestRepo(t, ctx, store, "space1")
	engine := NewEngine(store)

	root, err := engine.CreateRoot(ctx, repo.ID)
	require.NoError(t, err)

	_, err = engine.Reset(ctx, repo.ID, "main", root, "", "ada", false)
	assert.ErrorIs(t, err, ErrNothingToCommit)
}

func TestCommitBuilder_CopyAndDelete(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	repo := newTestRepo(t, ctx, store, "diffusion")
	engine := NewEngine(store)

	_, err := engine.CreateRoot(ctx, repo.ID)
	require.NoError(t, err)

	b1, err := engine.NewCommitBuilder(ctx, repo.ID, "main")
	require.NoError(t, err)
	b1.UploadInline("config.json", []byte(`{"a":1}`))
	_, err = b1.Commit(ctx, "add config", "", "ada")
	require.NoError(t, err)

	b2, err := engine.NewCommitBuilder(ctx, repo.ID, "main")
	require.NoError(t, err)
	require.NoError(t, b2.Copy(ctx, "config.json", "", "config.bak.json"))
	b2.Delete("config.json")
	_, err = b2.Commit(ctx, "rename config", "", "ada")
	require.NoError(t, err)

	entries, err := engine.ListTree(ctx, repo.ID, "main", "", true)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "config.bak.json", entries[0].Path)
}
