package commands

import (
	"fmt"

	"github.com/marmos91/hubd/internal/logger"
	"github.com/marmos91/hubd/pkg/config"
	"github.com/marmos91/hubd/pkg/metadata/postgres"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run metadata store database migrations",
	Long: `Apply pending database migrations to the configured Postgres metadata
store. A no-op when database.type is "memory".

Examples:
  # Run migrations with default config
  hubd migrate

  # Run migrations with custom config
  hubd migrate --config /etc/hubd/config.yaml`,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}

	if cfg.Database.Type != "postgres" {
		fmt.Printf("database.type is %q, nothing to migrate\n", cfg.Database.Type)
		return nil
	}

	logger.Info("running metadata store migrations")
	if err := postgres.Migrate(cfg.Database.DSN); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Println("Migrations completed successfully")
	return nil
}
