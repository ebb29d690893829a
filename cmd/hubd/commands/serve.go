package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/marmos91/hubd/internal/logger"
	"github.com/marmos91/hubd/internal/telemetry"
	"github.com/marmos91/hubd/pkg/api"
	"github.com/marmos91/hubd/pkg/api/handlers"
	"github.com/marmos91/hubd/pkg/auth"
	"github.com/marmos91/hubd/pkg/authz"
	"github.com/marmos91/hubd/pkg/cache"
	"github.com/marmos91/hubd/pkg/commit"
	"github.com/marmos91/hubd/pkg/commit/gc"
	"github.com/marmos91/hubd/pkg/config"
	"github.com/marmos91/hubd/pkg/metadata"
	"github.com/marmos91/hubd/pkg/metrics"
	"github.com/marmos91/hubd/pkg/resolver"
	"github.com/marmos91/hubd/pkg/transfer"
	"github.com/marmos91/hubd/pkg/versioning"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the hub server",
	Long: `Start the hubd HTTP API server: the preupload/commit/resolve wire
protocol, Git-LFS batch transfer, and the background LFS garbage collector.

Examples:
  # Start with default config location
  hubd serve

  # Start with custom config
  hubd serve --config /etc/hubd/config.yaml`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "hubd",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "hubd",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", "error", err)
		}
	}()

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	logger.Info("hubd starting", "database", cfg.Database.Type, "bucket", cfg.ObjectStore.Bucket)

	store, err := config.CreateMetadataStore(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to create metadata store: %w", err)
	}

	blobs, err := config.CreateBlobStore(ctx, cfg.ObjectStore)
	if err != nil {
		return fmt.Errorf("failed to create blob store: %w", err)
	}

	jwtSvc, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to create JWT service: %w", err)
	}
	tokenSvc := auth.NewTokenService(store)
	authSvc := auth.NewService(store, jwtSvc, tokenSvc)

	if err := bootstrapAdmin(ctx, store, cfg.Admin); err != nil {
		return fmt.Errorf("failed to bootstrap admin principal: %w", err)
	}

	quota := authz.NewQuotaGate(store)
	versioningEngine := versioning.NewEngine(store)
	verifier := transfer.NewVerifier(store, blobs)
	classifier := transfer.NewClassifier(store)
	broker := transfer.NewBroker(store, blobs)
	commitEngine := commit.NewEngine(store, versioningEngine, verifier, quota)
	res := resolver.NewResolver(store, versioningEngine, blobs)

	var lookupCache *cache.Cache
	if cfg.Cache.Enabled {
		client, err := cache.NewClient(ctx, cfg.Cache.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to cache: %w", err)
		}
		defer func() { _ = client.Close() }()
		lookupCache = cache.New(client, cfg.Cache.TTL)
		res = res.WithStatCache(lookupCache)
		classifier = classifier.WithIgnoreCache(lookupCache)
		logger.Info("lookup cache enabled", "url", cfg.Cache.URL, "ttl", cfg.Cache.TTL)
	}

	deps := &handlers.Dependencies{
		Store:      store,
		Auth:       authSvc,
		Tokens:     tokenSvc,
		Quota:      quota,
		Versioning: versioningEngine,
		Classifier: classifier,
		Broker:     broker,
		Verifier:   verifier,
		Commit:     commitEngine,
		Resolver:   res,
	}

	sweeper := gc.NewSweeper(store, versioningEngine, blobs,
		gc.WithInterval(cfg.GC.Interval),
		gc.WithKeepVersions(cfg.GC.KeepVersions),
		gc.WithBatchSize(cfg.GC.BatchSize),
	)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
		metricsServer = &http.Server{Addr: fmt.Sprintf(":%d", cfg.Metrics.Port), Handler: mux}
		go func() {
			logger.Info("metrics server listening", "port", cfg.Metrics.Port)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server error", "error", err)
			}
		}()
	}

	var apiServer *api.Server
	if cfg.API.IsEnabled() {
		apiServer = api.NewServer(cfg.API, deps, authSvc)
	}

	serverDone := make(chan error, 1)
	if apiServer != nil {
		go func() { serverDone <- apiServer.Start(ctx) }()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("hubd is running. Press Ctrl+C to stop.")

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received, initiating graceful shutdown")
		cancel()
	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			return fmt.Errorf("API server error: %w", err)
		}
	}

	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", "error", err)
		}
	}

	if apiServer != nil {
		if err := <-serverDone; err != nil {
			return fmt.Errorf("API server shutdown error: %w", err)
		}
	}

	logger.Info("hubd stopped gracefully")
	return nil
}

// bootstrapAdmin creates the configured admin principal if it does not
// already exist. When AdminConfig carries no PasswordHash, a random
// password is generated and printed once so the operator can log in and
// change it.
func bootstrapAdmin(ctx context.Context, store metadata.MetadataStore, cfg config.AdminConfig) error {
	_, err := store.GetPrincipalByUsername(ctx, cfg.Username)
	if err == nil {
		return nil
	}
	if !metadata.IsNotFound(err) {
		return err
	}

	passwordHash := cfg.PasswordHash
	if passwordHash == "" {
		password, err := randomSecret(16)
		if err != nil {
			return err
		}
		passwordHash, err = auth.HashPassword(password)
		if err != nil {
			return err
		}
		fmt.Printf("Created admin principal %q with generated password: %s\n", cfg.Username, password)
		fmt.Println("Log in and change this password as soon as possible.")
	}

	admin := &metadata.Principal{
		ID:           uuid.New().String(),
		Username:     cfg.Username,
		PasswordHash: passwordHash,
		Role:         metadata.RoleAdmin,
		CreatedAt:    time.Now(),
	}
	return store.CreatePrincipal(ctx, admin)
}
