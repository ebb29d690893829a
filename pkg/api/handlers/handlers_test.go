package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/hubd/pkg/authz"
	"github.com/marmos91/hubd/pkg/blobstore"
	"github.com/marmos91/hubd/pkg/commit"
	"github.com/marmos91/hubd/pkg/metadata"
	"github.com/marmos91/hubd/pkg/metadata/memory"
	"github.com/marmos91/hubd/pkg/resolver"
	"github.com/marmos91/hubd/pkg/transfer"
	"github.com/marmos91/hubd/pkg/versioning"
)

// withRouteParams attaches chi URL params the way chi's own router would,
// mirroring the teacher's handler test pattern (chi.NewRouteContext +
// chi.RouteCtxKey) for tests that call a handler method directly instead of
// going through the full router.
func withRouteParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// fakeBlobStore mirrors pkg/resolver's test fake: presigned URLs are
// deterministic strings, never real network calls.
type fakeBlobStore struct{}

func (fakeBlobStore) PresignPut(context.Context, string, time.Duration, int64) (string, error) {
	return "https://blobs.example.com/put", nil
}
func (fakeBlobStore) PresignGet(context.Context, string, time.Duration) (string, error) {
	return "https://blobs.example.com/get", nil
}
func (fakeBlobStore) InitiateMultipart(context.Context, string) (string, error) { return "up-1", nil }
func (fakeBlobStore) PresignPart(context.Context, string, string, int32, time.Duration) (string, error) {
	return "https://blobs.example.com/part", nil
}
func (fakeBlobStore) CompleteMultipart(context.Context, string, string, []blobstore.CompletedPart) error {
	return nil
}
func (fakeBlobStore) AbortMultipart(context.Context, string, string) error { return nil }
func (fakeBlobStore) Stat(context.Context, string) (*blobstore.ObjectInfo, error) {
	return &blobstore.ObjectInfo{Size: 5}, nil
}
func (fakeBlobStore) Delete(context.Context, string) error { return nil }

// newTestDeps builds a full Dependencies graph over the in-memory metadata
// store, the same construction every component's own package tests use.
func newTestDeps(t *testing.T) (*Dependencies, *metadata.Namespace, *metadata.Repository) {
	t.Helper()
	store := memory.New()
	ctx := t.Context()

	ns := &metadata.Namespace{ID: "ns1", Slug: "acme", Kind: "user", CreatedAt: time.Now().UTC()}
	if err := store.CreateNamespace(ctx, ns); err != nil {
		t.Fatal(err)
	}
	repo := &metadata.Repository{ID: "repo1", NamespaceID: ns.ID, Name: "resnet", Kind: metadata.RepoModel, CreatedBy: "p1", CreatedAt: time.Now().UTC()}
	if err := store.CreateRepository(ctx, repo); err != nil {
		t.Fatal(err)
	}

	v := versioning.NewEngine(store)
	if _, err := v.CreateRoot(ctx, repo.ID); err != nil {
		t.Fatal(err)
	}

	blobs := fakeBlobStore{}
	quota := authz.NewQuotaGate(store)
	verifier := transfer.NewVerifier(store, blobs)
	commitEngine := commit.NewEngine(store, v, verifier, quota)

	return &Dependencies{
		Store:      store,
		Quota:      quota,
		Versioning: v,
		Classifier: transfer.NewClassifier(store),
		Broker:     transfer.NewBroker(store, blobs),
		Verifier:   verifier,
		Commit:     commitEngine,
		Resolver:   resolver.NewResolver(store, v, blobs),
	}, ns, repo
}

func TestHealthHandler_Liveness(t *testing.T) {
	deps, _, _ := newTestDeps(t)
	h := NewHealthHandler(deps.Store)

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	h.Liveness(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	deps, _, _ := newTestDeps(t)
	h := NewHealthHandler(deps.Store)

	req := httptest.NewRequest("GET", "/health/ready", nil)
	rec := httptest.NewRecorder()
	h.Readiness(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestValidRepoName(t *testing.T) {
	cases := map[string]bool{
		"resnet-50":  true,
		"a":          true,
		"":           false,
		".hidden":    false,
		"with space": false,
	}
	for name, want := range cases {
		if got := validRepoName(name); got != want {
			t.Errorf("validRepoName(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestReposHandler_Create_RequiresAuth(t *testing.T) {
	deps, _, _ := newTestDeps(t)
	h := NewReposHandler(deps)

	req := httptest.NewRequest(http.MethodPost, "/api/repos/create", nil)
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestResolveHandler_Tree(t *testing.T) {
	deps, _, repo := newTestDeps(t)
	h := NewResolveHandler(deps)

	ctx := t.Context()
	builder, err := deps.Versioning.NewCommitBuilder(ctx, repo.ID, "main")
	if err != nil {
		t.Fatal(err)
	}
	builder.UploadInline("README.md", []byte("hello"))
	if _, err := builder.Commit(ctx, "init", "", "alice"); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/models/acme/resnet/tree/main/", nil)
	req = withRouteParams(req, map[string]string{"namespace": "acme", "name": "resnet", "revision": "main", "*": ""})
	rec := httptest.NewRecorder()
	h.Tree(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
}

func TestResolveHandler_Revision(t *testing.T) {
	deps, _, repo := newTestDeps(t)
	h := NewResolveHandler(deps)

	req := httptest.NewRequest(http.MethodGet, "/api/models/acme/resnet/revision/main", nil)
	req = withRouteParams(req, map[string]string{"namespace": "acme", "name": "resnet", "revision": "main"})
	rec := httptest.NewRecorder()
	h.Revision(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
}

func TestResolveHandler_Revision_UnknownRepo(t *testing.T) {
	deps, _, _ := newTestDeps(t)
	h := NewResolveHandler(deps)

	req := httptest.NewRequest(http.MethodGet, "/api/models/acme/missing/revision/main", nil)
	req = withRouteParams(req, map[string]string{"namespace": "acme", "name": "missing", "revision": "main"})
	rec := httptest.NewRecorder()
	h.Revision(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestRepositoryKindFromPath(t *testing.T) {
	if k, ok := repositoryKindFromPath("models"); !ok || k != metadata.RepoModel {
		t.Fatalf("models -> %v, %v", k, ok)
	}
	if _, ok := repositoryKindFromPath("widgets"); ok {
		t.Fatal("expected unknown kind to be rejected")
	}
}
