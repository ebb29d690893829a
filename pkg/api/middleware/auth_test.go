package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/marmos91/hubd/pkg/auth"
	"github.com/marmos91/hubd/pkg/metadata"
	"github.com/marmos91/hubd/pkg/metadata/memory"
)

func newTestService(t *testing.T) (*auth.Service, *metadata.Principal) {
	t.Helper()
	store := memory.New()
	jwtSvc, err := auth.NewJWTService(auth.JWTConfig{Secret: "0123456789012345678901234567890123"})
	if err != nil {
		t.Fatalf("NewJWTService: %v", err)
	}
	tokens := auth.NewTokenService(store)
	svc := auth.NewService(store, jwtSvc, tokens)

	principal := &metadata.Principal{
		ID:       "p1",
		Username: "alice",
		Role:     metadata.RoleWriter,
		Groups:   []string{"acme"},
	}
	if err := store.CreatePrincipal(t.Context(), principal); err != nil {
		t.Fatalf("CreatePrincipal: %v", err)
	}
	return svc, principal
}

func TestRequireAuth_NoHeaderRejected(t *testing.T) {
	svc, _ := newTestService(t)
	handler := RequireAuth(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuth_ValidBearerSetsPrincipal(t *testing.T) {
	svc, principal := newTestService(t)

	jwtSvc, _ := auth.NewJWTService(auth.JWTConfig{Secret: "0123456789012345678901234567890123"})
	tp, err := jwtSvc.GenerateTokenPair(principal)
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}

	var seen *auth.AuthenticatedPrincipal
	handler := RequireAuth(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetPrincipal(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tp.AccessToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if seen == nil || seen.Username != "alice" {
		t.Fatalf("principal not propagated: %+v", seen)
	}
}

func TestOptionalAuth_NoHeaderPassesThrough(t *testing.T) {
	svc, _ := newTestService(t)
	called := false
	handler := OptionalAuth(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if GetPrincipal(r.Context()) != nil {
			t.Fatal("expected nil principal")
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through 200, got %d", rec.Code)
	}
}

func contextWithPrincipal(p *auth.AuthenticatedPrincipal) context.Context {
	return context.WithValue(context.Background(), principalContextKey, p)
}

func TestRequireHubAdmin_RejectsNonAdmin(t *testing.T) {
	ctx := contextWithPrincipal(&auth.AuthenticatedPrincipal{ID: "p1", Username: "alice", Role: metadata.RoleWriter})
	handler := RequireHubAdmin()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestRequireHubAdmin_AllowsAdmin(t *testing.T) {
	ctx := contextWithPrincipal(&auth.AuthenticatedPrincipal{ID: "p1", Username: "root", Role: metadata.RoleAdmin})
	handler := RequireHubAdmin()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestAsMetadataPrincipal_NilSafe(t *testing.T) {
	if AsMetadataPrincipal(nil) != nil {
		t.Fatal("expected nil")
	}
}
