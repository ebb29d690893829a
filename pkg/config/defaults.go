package config

import (
	"strings"
	"time"

	"github.com/marmos91/hubd/internal/bytesize"
	"github.com/marmos91/hubd/pkg/api"
	"github.com/marmos91/hubd/pkg/auth"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// This function is called after loading configuration from file and
// environment variables to fill in any missing values with sensible
// defaults.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyAPIDefaults(&cfg.API)
	applyMetricsDefaults(&cfg.Metrics)
	applyDatabaseDefaults(&cfg.Database)
	applyObjectStoreDefaults(&cfg.ObjectStore)
	applyAuthDefaults(&cfg.Auth)
	applyAdminDefaults(&cfg.Admin)
	applyGCDefaults(&cfg.GC)
	applyCacheDefaults(&cfg.Cache)

	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}

	// Note: no defaults for Quota - a zero QuotaConfig means "unlimited by
	// default", which is itself the correct default.
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyTelemetryDefaults sets OpenTelemetry defaults.
func applyTelemetryDefaults(cfg *TelemetryConfig) {
	// Enabled defaults to false (opt-in).

	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}

	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}

	applyProfilingDefaults(&cfg.Profiling)
}

// applyProfilingDefaults sets Pyroscope profiling defaults.
func applyProfilingDefaults(cfg *ProfilingConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}

	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = []string{
			"cpu",
			"alloc_objects",
			"alloc_space",
			"inuse_objects",
			"inuse_space",
			"goroutines",
		}
	}
}

// applyMetricsDefaults sets metrics defaults.
func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9090
	}
}

// applyAPIDefaults sets API server defaults. api.APIConfig.applyDefaults is
// unexported, so mirror its field defaults here rather than duplicating the
// whole struct; NewServer also calls it again, making this idempotent.
func applyAPIDefaults(cfg *api.APIConfig) {
	if cfg.Enabled == nil {
		enabled := true
		cfg.Enabled = &enabled
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
}

// applyDatabaseDefaults sets metadata store defaults.
func applyDatabaseDefaults(cfg *DatabaseConfig) {
	if cfg.Type == "" {
		cfg.Type = "memory"
	}
	if cfg.MaxConns == 0 {
		cfg.MaxConns = 20
	}
	if cfg.MinConns == 0 {
		cfg.MinConns = 2
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	if cfg.MaxConnLifetime == 0 {
		cfg.MaxConnLifetime = time.Hour
	}
}

// applyObjectStoreDefaults sets S3 object store defaults.
func applyObjectStoreDefaults(cfg *ObjectStoreConfig) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.PresignTTL == 0 {
		cfg.PresignTTL = 15 * time.Minute
	}
}

// applyAuthDefaults sets JWT session signing defaults.
func applyAuthDefaults(cfg *auth.JWTConfig) {
	if cfg.Issuer == "" {
		cfg.Issuer = "hubd"
	}
	if cfg.AccessTokenDuration == 0 {
		cfg.AccessTokenDuration = 15 * time.Minute
	}
	if cfg.RefreshTokenDuration == 0 {
		cfg.RefreshTokenDuration = 7 * 24 * time.Hour
	}
}

// applyAdminDefaults sets the bootstrap admin username default.
func applyAdminDefaults(cfg *AdminConfig) {
	if cfg.Username == "" {
		cfg.Username = "admin"
	}
}

// applyGCDefaults sets LFS garbage collector sweep defaults, mirroring
// pkg/commit/gc.Sweeper's own internal defaults so a zero-value GCConfig
// produces identical behavior whether or not it's passed any gc.Option.
func applyGCDefaults(cfg *GCConfig) {
	if cfg.Interval == 0 {
		cfg.Interval = 10 * time.Minute
	}
	if cfg.KeepVersions == 0 {
		cfg.KeepVersions = 5
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
}

// applyCacheDefaults sets the lookup cache's TTL default. Enabled/URL are
// left as-is: a cache with no URL stays disabled rather than dialing
// localhost by default.
func applyCacheDefaults(cfg *CacheConfig) {
	if cfg.TTL == 0 {
		cfg.TTL = 30 * time.Second
	}
}

// GetDefaultConfig returns a Config struct with all default values applied,
// suitable for generating a sample configuration file or for tests.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Database: DatabaseConfig{
			Type: "memory",
		},
		ObjectStore: ObjectStoreConfig{
			Bucket: "hubd-artifacts",
		},
		Quota: QuotaConfig{
			DefaultMaxBytes:   100 * bytesize.ByteSize(bytesize.GiB),
			DefaultMaxObjects: 100_000,
		},
	}

	ApplyDefaults(cfg)
	return cfg
}
