package auth

import (
	"context"
	"testing"

	"github.com/marmos91/hubd/pkg/metadata"
	"github.com/marmos91/hubd/pkg/metadata/memory"
)

func newTestService(t *testing.T) (*Service, metadata.MetadataStore) {
	t.Helper()
	store := memory.New()
	jwtSvc := testJWTService(t)
	tokenSvc := NewTokenService(store)
	return NewService(store, jwtSvc, tokenSvc), store
}

func TestService_LoginSuccess(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	hash, err := HashPassword("correct-horse-battery")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	principal := &metadata.Principal{ID: "p1", Username: "alice", PasswordHash: hash, Role: metadata.RoleWriter}
	if err := store.CreatePrincipal(ctx, principal); err != nil {
		t.Fatalf("CreatePrincipal() error = %v", err)
	}

	pair, err := svc.Login(ctx, "alice", "correct-horse-battery")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	who, err := svc.AuthenticateBearer(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("AuthenticateBearer() error = %v", err)
	}
	if who.ID != "p1" || who.Role != metadata.RoleWriter {
		t.Errorf("unexpected principal: %+v", who)
	}
}

func TestService_LoginWrongPassword(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	hash, _ := HashPassword("correct-horse-battery")
	if err := store.CreatePrincipal(ctx, &metadata.Principal{ID: "p1", Username: "alice", PasswordHash: hash}); err != nil {
		t.Fatalf("CreatePrincipal() error = %v", err)
	}

	if _, err := svc.Login(ctx, "alice", "wrong-password"); err != ErrInvalidCredentials {
		t.Errorf("got %v, want ErrInvalidCredentials", err)
	}
}

func TestService_LoginDisabledPrincipal(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	hash, _ := HashPassword("correct-horse-battery")
	if err := store.CreatePrincipal(ctx, &metadata.Principal{ID: "p1", Username: "alice", PasswordHash: hash, Disabled: true}); err != nil {
		t.Fatalf("CreatePrincipal() error = %v", err)
	}

	if _, err := svc.Login(ctx, "alice", "correct-horse-battery"); err != ErrPrincipalDisabled {
		t.Errorf("got %v, want ErrPrincipalDisabled", err)
	}
}

func TestService_AuthenticateBearerAPIToken(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	if err := store.CreatePrincipal(ctx, &metadata.Principal{ID: "p1", Username: "svc-account", Role: metadata.RoleReader}); err != nil {
		t.Fatalf("CreatePrincipal() error = %v", err)
	}
	raw, _, err := svc.tokens.IssueAPIToken(ctx, "p1", "ci", nil, 0)
	if err != nil {
		t.Fatalf("IssueAPIToken() error = %v", err)
	}

	who, err := svc.AuthenticateBearer(ctx, raw)
	if err != nil {
		t.Fatalf("AuthenticateBearer() error = %v", err)
	}
	if who.ID != "p1" || who.Role != metadata.RoleReader {
		t.Errorf("unexpected principal: %+v", who)
	}
}

func TestService_RefreshToken(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	hash, _ := HashPassword("correct-horse-battery")
	if err := store.CreatePrincipal(ctx, &metadata.Principal{ID: "p1", Username: "alice", PasswordHash: hash}); err != nil {
		t.Fatalf("CreatePrincipal() error = %v", err)
	}
	pair, err := svc.Login(ctx, "alice", "correct-horse-battery")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	refreshed, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Error("Refresh() returned empty access token")
	}
}
