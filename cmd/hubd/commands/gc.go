package commands

import (
	"context"
	"fmt"

	"github.com/marmos91/hubd/internal/logger"
	"github.com/marmos91/hubd/pkg/commit/gc"
	"github.com/marmos91/hubd/pkg/config"
	"github.com/marmos91/hubd/pkg/versioning"
	"github.com/spf13/cobra"
)

var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Run one LFS garbage collection sweep and exit",
	Long: `Run a single pass of the LFS garbage collector across every
namespace and repository, reclaiming unreferenced blobs, then exit.

For a long-running server this is already done on a schedule by "hubd
serve" (see the gc config section); this command is for an out-of-band
sweep, e.g. triggered from cron or right after a bulk deletion.

Examples:
  hubd gc
  hubd gc --config /etc/hubd/config.yaml`,
	RunE: runGC,
}

func runGC(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx := context.Background()

	store, err := config.CreateMetadataStore(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to create metadata store: %w", err)
	}
	blobs, err := config.CreateBlobStore(ctx, cfg.ObjectStore)
	if err != nil {
		return fmt.Errorf("failed to create blob store: %w", err)
	}

	sweeper := gc.NewSweeper(store, versioning.NewEngine(store), blobs,
		gc.WithKeepVersions(cfg.GC.KeepVersions),
		gc.WithBatchSize(cfg.GC.BatchSize),
	)

	namespaces, err := store.ListNamespaces(ctx)
	if err != nil {
		return fmt.Errorf("failed to list namespaces: %w", err)
	}

	swept, failed := 0, 0
	for _, ns := range namespaces {
		repos, err := store.ListRepositories(ctx, ns.Slug)
		if err != nil {
			return fmt.Errorf("failed to list repositories in namespace %q: %w", ns.Slug, err)
		}
		for _, repo := range repos {
			if err := sweeper.SweepRepository(ctx, repo.ID); err != nil {
				logger.Error("gc: sweep failed", "repository", repo.Name, "error", err)
				failed++
				continue
			}
			swept++
		}
	}

	fmt.Printf("GC sweep complete: %d repositories swept, %d failed\n", swept, failed)
	if failed > 0 {
		return fmt.Errorf("%d repositories failed to sweep", failed)
	}
	return nil
}
