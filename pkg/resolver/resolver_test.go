package resolver

import (
	"context"
	"testing"
	"time"

	"github.com/marmos91/hubd/pkg/blobstore"
	"github.com/marmos91/hubd/pkg/metadata"
	"github.com/marmos91/hubd/pkg/metadata/memory"
	"github.com/marmos91/hubd/pkg/versioning"
)

type fakeBlobStore struct{}

func (fakeBlobStore) PresignPut(context.Context, string, time.Duration, int64) (string, error) {
	return "", nil
}
func (fakeBlobStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "https://blobs.example.com/" + key + "?ttl=" + ttl.String(), nil
}
func (fakeBlobStore) InitiateMultipart(context.Context, string) (string, error) { return "", nil }
func (fakeBlobStore) PresignPart(context.Context, string, string, int32, time.Duration) (string, error) {
	return "", nil
}
func (fakeBlobStore) CompleteMultipart(context.Context, string, string, []blobstore.CompletedPart) error {
	return nil
}
func (fakeBlobStore) AbortMultipart(context.Context, string, string) error { return nil }
func (fakeBlobStore) Stat(context.Context, string) (*blobstore.ObjectInfo, error) {
	return &blobstore.ObjectInfo{}, nil
}
func (fakeBlobStore) Delete(context.Context, string) error { return nil }

func newTestResolver(t *testing.T) (context.Context, string, *Resolver, *versioning.Engine) {
	t.Helper()
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
	return ctx, repo.ID, NewResolver(store, v, fakeBlobStore{}), v
}

func TestResolver_HeadInline(t *testing.T) {
	ctx, repoID, r, v := newTestResolver(t)

	builder, err := v.NewCommitBuilder(ctx, repoID, "main")
	if err != nil {
		t.Fatal(err)
	}
	builder.UploadInline("README.md", []byte("# hello"))
	if _, err := builder.Commit(ctx, "add readme", "", "ada"); err != nil {
		t.Fatal(err)
	}

	res, err := r.Head(ctx, repoID, "main", "README.md")
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != metadata.FileRegular {
		t.Errorf("expected regular kind, got %s", res.Kind)
	}
	if res.Size != 7 {
		t.Errorf("expected size 7, got %d", res.Size)
	}
	if res.Location != "" {
		t.Errorf("expected no redirect for an inline entry, got %q", res.Location)
	}
}

func TestResolver_HeadExternalRedirects(t *testing.T) {
	ctx, repoID, r, v := newTestResolver(t)

	builder, err := v.NewCommitBuilder(ctx, repoID, "main")
	if err != nil {
		t.Fatal(err)
	}
	builder.LinkExternal("model.safetensors", blobstore.KeyForOID("deadbeef"), "deadbeef", 9000)
	if _, err := builder.Commit(ctx, "add weights", "", "ada"); err != nil {
		t.Fatal(err)
	}

	res, err := r.Head(ctx, repoID, "main", "model.safetensors")
	if err != nil {
		t.Fatal(err)
	}
	if res.Location == "" {
		t.Error("expected a presigned redirect for an external entry")
	}
	if res.ETag != "sha256:deadbeef" {
		t.Errorf("unexpected etag: %s", res.ETag)
	}
}

func TestResolver_GetExternalNeverProxiesBytes(t *testing.T) {
	ctx, repoID, r, v := newTestResolver(t)

	builder, err := v.NewCommitBuilder(ctx, repoID, "main")
	if err != nil {
		t.Fatal(err)
	}
	builder.LinkExternal("model.bin", blobstore.KeyForOID("cafe"), "cafe", 123)
	if _, err := builder.Commit(ctx, "add weights", "", "ada"); err != nil {
		t.Fatal(err)
	}

	res, err := r.Get(ctx, repoID, "main", "model.bin")
	if err != nil {
		t.Fatal(err)
	}
	if res.Inline {
		t.Error("expected external entry GET to not be inline")
	}
	if res.RedirectURL == "" {
		t.Error("expected a redirect URL")
	}
	if len(res.Content) != 0 {
		t.Error("expected no bytes returned for an external entry")
	}
}

func TestResolver_GetInlineReturnsBytesAndContentType(t *testing.T) {
	ctx, repoID, r, v := newTestResolver(t)

	builder, err := v.NewCommitBuilder(ctx, repoID, "main")
	if err != nil {
		t.Fatal(err)
	}
	builder.UploadInline("config.json", []byte(`{"a":1}`))
	if _, err := builder.Commit(ctx, "add config", "", "ada"); err != nil {
		t.Fatal(err)
	}

	res, err := r.Get(ctx, repoID, "main", "config.json")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Inline {
		t.Error("expected inline entry")
	}
	if string(res.Content) != `{"a":1}` {
		t.Errorf("unexpected content: %s", res.Content)
	}
	if res.ContentType != "application/json" {
		t.Errorf("unexpected content type: %s", res.ContentType)
	}
}

func TestResolver_TreeRecursiveAndPagination(t *testing.T) {
	ctx, repoID, r, v := newTestResolver(t)

	builder, err := v.NewCommitBuilder(ctx, repoID, "main")
	if err != nil {
		t.Fatal(err)
	}
	builder.UploadInline("a.json", []byte("a"))
	builder.UploadInline("b.json", []byte("b"))
	builder.UploadInline("c.json", []byte("c"))
	if _, err := builder.Commit(ctx, "seed files", "", "ada"); err != nil {
		t.Fatal(err)
	}

	page1, err := r.Tree(ctx, repoID, "main", "", true, false, "", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(page1.Entries) != 2 {
		t.Fatalf("expected 2 entries in first page, got %d", len(page1.Entries))
	}
	if page1.NextCursor == "" {
		t.Fatal("expected a next cursor")
	}

	page2, err := r.Tree(ctx, repoID, "main", "", true, false, page1.NextCursor, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(page2.Entries) != 1 {
		t.Fatalf("expected 1 entry in second page, got %d", len(page2.Entries))
	}
	if page2.NextCursor != "" {
		t.Error("expected no further cursor on last page")
	}
}

func TestResolver_TreeExpandIncludesLastCommitAndLFSPointer(t *testing.T) {
	ctx, repoID, r, v := newTestResolver(t)

	builder, err := v.NewCommitBuilder(ctx, repoID, "main")
	if err != nil {
		t.Fatal(err)
	}
	builder.LinkExternal("model.bin", blobstore.KeyForOID("feed"), "feed", 42)
	commitID, err := builder.Commit(ctx, "add weights", "", "ada")
	if err != nil {
		t.Fatal(err)
	}

	page, err := r.Tree(ctx, repoID, "main", "", true, true, "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(page.Entries))
	}
	entry := page.Entries[0]
	if entry.LastCommit == nil || entry.LastCommit.ID != commitID {
		t.Errorf("expected last commit %s, got %+v", commitID, entry.LastCommit)
	}
}

func TestResolver_PathsInfoReportsMissingPaths(t *testing.T) {
	ctx, repoID, r, v := newTestResolver(t)

	builder, err := v.NewCommitBuilder(ctx, repoID, "main")
	if err != nil {
		t.Fatal(err)
	}
	builder.UploadInline("exists.json", []byte("{}"))
	if _, err := builder.Commit(ctx, "seed", "", "ada"); err != nil {
		t.Fatal(err)
	}

	results, err := r.PathsInfo(ctx, repoID, "main", []string{"exists.json", "missing.json"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if !results[0].Found {
		t.Error("expected exists.json to be found")
	}
	if results[1].Found {
		t.Error("expected missing.json to be reported not found")
	}
}
