package authz

import (
	"context"
	"testing"

	"github.com/marmos91/hubd/pkg/metadata"
	"github.com/marmos91/hubd/pkg/metadata/memory"
)

func TestQuotaGate_CheckAdvisory(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	if err := store.CreateNamespace(ctx, &metadata.Namespace{ID: "ns1", Slug: "alice", Kind: "user"}); err != nil {
		t.Fatalf("CreateNamespace() error = %v", err)
	}
	if err := store.SetQuotaPolicy(ctx, &metadata.QuotaPolicy{ID: "q1", NamespaceID: "ns1", MaxBytes: 1000}); err != nil {
		t.Fatalf("SetQuotaPolicy() error = %v", err)
	}

	gate := NewQuotaGate(store)

	if err := gate.CheckAdvisory(ctx, "ns1", 500); err != nil {
		t.Errorf("CheckAdvisory(500) = %v, want nil", err)
	}
	if err := gate.CheckAdvisory(ctx, "ns1", 1500); err != ErrQuotaWarning {
		t.Errorf("CheckAdvisory(1500) = %v, want ErrQuotaWarning", err)
	}
}

func TestQuotaGate_CheckAdvisory_NoPolicy(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	gate := NewQuotaGate(store)

	if err := gate.CheckAdvisory(ctx, "unconfigured-ns", 1<<40); err != nil {
		t.Errorf("CheckAdvisory() with no policy = %v, want nil (unlimited)", err)
	}
}

func TestQuotaGate_ReserveAndRelease(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	if err := store.CreateNamespace(ctx, &metadata.Namespace{ID: "ns1", Slug: "alice", Kind: "user"}); err != nil {
		t.Fatalf("CreateNamespace() error = %v", err)
	}
	if err := store.SetQuotaPolicy(ctx, &metadata.QuotaPolicy{ID: "q1", NamespaceID: "ns1", MaxBytes: 1000, MaxObjects: 5}); err != nil {
		t.Fatalf("SetQuotaPolicy() error = %v", err)
	}

	gate := NewQuotaGate(store)

	if err := gate.Reserve(ctx, "ns1", 800, 1); err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}
	if err := gate.Reserve(ctx, "ns1", 800, 1); !metadata.IsQuotaExceeded(err) {
		t.Errorf("Reserve() over budget = %v, want ErrQuotaExceeded", err)
	}
	if err := gate.Release(ctx, "ns1", 800, 1); err != nil {
		t.Fatalf("Release() error = %v", err)
	}

	policy, err := store.GetQuotaPolicy(ctx, "ns1")
	if err != nil {
		t.Fatalf("GetQuotaPolicy() error = %v", err)
	}
	if policy.UsedBytes != 0 || policy.UsedObjects != 0 {
		t.Errorf("after release, usage = %d bytes / %d objects, want 0/0", policy.UsedBytes, policy.UsedObjects)
	}
}
