package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/hubd/pkg/metadata"
)

func testNamespaceLifecycle(t *testing.T, factory StoreFactory) {
	store, cleanup := factory(t)
	defer cleanup()
	ctx := context.Background()

	ns := &metadata.Namespace{ID: "ns_acme", Slug: "acme", Kind: "org", CreatedAt: time.Now().UTC()}
	require.NoError(t, store.CreateNamespace(ctx, ns))

	err := store.CreateNamespace(ctx, ns)
	assert.True(t, metadata.IsAlreadyExists(err))

	got, err := store.GetNamespace(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, ns.ID, got.ID)

	require.NoError(t, store.DeleteNamespace(ctx, "acme"))

	_, err = store.GetNamespace(ctx, "acme")
	assert.True(t, metadata.IsNotFound(err))
}

func testPrincipalLifecycle(t *testing.T, factory StoreFactory) {
	store, cleanup := factory(t)
	defer cleanup()
	ctx := context.Background()

	p := &metadata.Principal{ID: "user_1", Username: "ada", Role: metadata.RoleWriter, CreatedAt: time.Now().UTC()}
	require.NoError(t, store.CreatePrincipal(ctx, p))

	err := store.CreatePrincipal(ctx, p)
	assert.True(t, metadata.IsAlreadyExists(err))

	got, err := store.GetPrincipalByUsername(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	got.Role = metadata.RoleAdmin
	require.NoError(t, store.UpdatePrincipal(ctx, got))

	got, err = store.GetPrincipalByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, metadata.RoleAdmin, got.Role)

	list, err := store.ListPrincipals(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, store.DeletePrincipal(ctx, p.ID))
	_, err = store.GetPrincipalByID(ctx, p.ID)
	assert.True(t, metadata.IsNotFound(err))
}

func testTokenLifecycle(t *testing.T, factory StoreFactory) {
	store, cleanup := factory(t)
	defer cleanup()
	ctx := context.Background()

	p := &metadata.Principal{ID: "user_2", Username: "grace", Role: metadata.RoleWriter, CreatedAt: time.Now().UTC()}
	require.NoError(t, store.CreatePrincipal(ctx, p))

	tok := &metadata.Token{
		ID: "tok_1", PrincipalID: p.ID, Kind: metadata.TokenKindAPI,
		HashedKey: "deadbeef", Name: "ci", CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.CreateToken(ctx, tok))

	got, err := store.GetTokenByHash(ctx, "deadbeef")
	require.NoError(t, err)
	assert.Equal(t, tok.ID, got.ID)

	require.NoError(t, store.TouchToken(ctx, tok.ID))
	require.NoError(t, store.RevokeToken(ctx, tok.ID))

	_, err = store.GetTokenByHash(ctx, "deadbeef")
	assert.True(t, metadata.IsNotFound(err))

	list, err := store.ListTokens(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func testRepositoryLifecycle(t *testing.T, factory StoreFactory) {
	store, cleanup := factory(t)
	defer cleanup()
	ctx := context.Background()

	ns := newTestNamespace(t, ctx, store, "octo")
	repo := newTestRepository(t, ctx, store, ns, "weights")

	err := store.CreateRepository(ctx, repo)
	assert.True(t, metadata.IsAlreadyExists(err))

	got, err := store.GetRepository(ctx, "octo", "weights")
	require.NoError(t, err)
	assert.Equal(t, repo.ID, got.ID)

	list, err := store.ListRepositories(ctx, "octo")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, store.DeleteRepository(ctx, repo.ID))
	_, err = store.GetRepository(ctx, "octo", "weights")
	assert.True(t, metadata.IsNotFound(err))
}
