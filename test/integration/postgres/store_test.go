// Package postgres_test runs the metadata store conformance suite against a
// real PostgreSQL instance started via testcontainers-go.
package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/marmos91/hubd/pkg/metadata"
	"github.com/marmos91/hubd/pkg/metadata/postgres"
	"github.com/marmos91/hubd/pkg/metadata/storetest"
)

func TestPostgresStoreConformance(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping testcontainers-backed test in -short mode")
	}

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("hub"),
		tcpostgres.WithUsername("hub"),
		tcpostgres.WithPassword("hub"),
		tcpostgres.BasicWaitStrategies(),
		wait.ForListeningPort("5432/tcp"),
	)
	require.NoError(t, err)
	defer func() { require.NoError(t, container.Terminate(ctx)) }()

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, postgres.Migrate(dsn))

	storetest.Run(t, func(t *testing.T) (metadata.MetadataStore, func()) {
		store, err := postgres.New(ctx, postgres.Config{DSN: dsn})
		require.NoError(t, err)
		return store, func() { _ = store.Close(ctx) }
	})
}
