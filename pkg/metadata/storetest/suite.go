// Package storetest provides a conformance suite that exercises any
// metadata.MetadataStore implementation identically, so the postgres and
// memory backends are held to the same behavioral contract.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/marmos91/hubd/pkg/metadata"
)

// StoreFactory constructs a fresh, empty MetadataStore for one subtest. The
// returned cleanup func releases any resources (e.g. a testcontainer).
type StoreFactory func(t *testing.T) (store metadata.MetadataStore, cleanup func())

// Run executes the full conformance suite against factory.
func Run(t *testing.T, factory StoreFactory) {
	t.Run("NamespaceLifecycle", func(t *testing.T) { testNamespaceLifecycle(t, factory) })
	t.Run("PrincipalLifecycle", func(t *testing.T) { testPrincipalLifecycle(t, factory) })
	t.Run("TokenLifecycle", func(t *testing.T) { testTokenLifecycle(t, factory) })
	t.Run("RepositoryLifecycle", func(t *testing.T) { testRepositoryLifecycle(t, factory) })
	t.Run("CommitAndTree", func(t *testing.T) { testCommitAndTree(t, factory) })
	t.Run("RevisionCAS", func(t *testing.T) { testRevisionCAS(t, factory) })
	t.Run("ResolveRevisionName", func(t *testing.T) { testResolveRevisionName(t, factory) })
	t.Run("QuotaEnforcement", func(t *testing.T) { testQuotaEnforcement(t, factory) })
	t.Run("LFSReferenceCount", func(t *testing.T) { testLFSReferenceCount(t, factory) })
	t.Run("StagingLifecycle", func(t *testing.T) { testStagingLifecycle(t, factory) })
}

func newTestNamespace(t *testing.T, ctx context.Context, store metadata.MetadataStore, slug string) *metadata.Namespace {
	t.Helper()
	ns := &metadata.Namespace{ID: "ns_" + slug, Slug: slug, Kind: "user", CreatedAt: time.Now().UTC()}
	require.NoError(t, store.CreateNamespace(ctx, ns))
	return ns
}

func newTestRepository(t *testing.T, ctx context.Context, store metadata.MetadataStore, ns *metadata.Namespace, name string) *metadata.Repository {
	t.Helper()
	repo := &metadata.Repository{
		ID:          "repo_" + ns.Slug + "_" + name,
		NamespaceID: ns.ID,
		Name:        name,
		Kind:        metadata.RepoModel,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, store.CreateRepository(ctx, repo))
	return repo
}
