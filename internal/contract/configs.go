package contract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/seeyebe/gmap/schema"
)

// Default values for configuration.
const (
	DefaultIncludeMerges = true
	DefaultIncludeBinary = false
	DefaultLogLevel      = "warn"
	DefaultWatchInterval = 5 * time.Second
	MinWatchInterval     = time.Second
)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for a command.
// This struct is the "final, validated" config.
type Config struct {
	RepoPath      string
	Revision      string // Commit to show; only set by commands taking a revision
	Range         schema.DateRange
	IncludeMerges bool
	IncludeBinary bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // sqlite file path, or a DSN; prefer the env var as this is plaintext

	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	DryRun        bool
	WatchInterval time.Duration
}

// Clone returns a copy of the config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RepoPathStr string
	RevisionStr string

	Since          string `mapstructure:"since"`
	Until          string `mapstructure:"until"`
	Merges         bool   `mapstructure:"merges"`
	Binary         bool   `mapstructure:"binary"`
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
	CacheDir       string `mapstructure:"cache-dir"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Width          int    `mapstructure:"width"`
	Color          string `mapstructure:"color"`
	LogLevel       string `mapstructure:"log-level"`
	DryRun         bool   `mapstructure:"dry-run"`
	Interval       string `mapstructure:"interval"`
}

// ProcessAndValidate validates input and populates cfg.
// store is the already opened repository; it anchors the cache location and
// resolves revision-valued range bounds.
func ProcessAndValidate(ctx context.Context, cfg *Config, store ObjectStore, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	cfg.RepoPath = store.Root()
	if err := processTimeRange(ctx, cfg, store, input); err != nil {
		return err
	}
	return validateBackendConfigs(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("cache-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("cache-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ResolveCacheTarget validates the backend and returns what NewCommitStore expects:
// the sqlite file path (defaulting under repoRoot) or the server DSN.
func ResolveCacheTarget(backendStr, connStr, cacheDir, repoRoot string) (schema.DatabaseBackend, string, error) {
	backend := schema.DatabaseBackend(strings.ToLower(strings.TrimSpace(backendStr)))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", backendStr)
	}
	if err := ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = GetCacheDBFilePath(repoRoot, cacheDir)
	}
	return backend, connStr, nil
}

// validateBackendConfigs validates the cache backend configuration.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	backend, connStr, err := ResolveCacheTarget(input.CacheBackend, input.CacheDBConnect, input.CacheDir, cfg.RepoPath)
	if err != nil {
		return err
	}
	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr
	return nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.IncludeMerges = input.Merges
	cfg.IncludeBinary = input.Binary
	cfg.OutputFile = input.OutputFile
	cfg.DryRun = input.DryRun
	cfg.Revision = strings.TrimSpace(input.RevisionStr)

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	if input.Width < 0 {
		return fmt.Errorf("width must be non-negative, got %d", input.Width)
	}
	cfg.Width = input.Width

	cfg.UseColors = true
	if input.Color != "" {
		useColors, err := ParseBoolString(input.Color)
		if err != nil {
			return fmt.Errorf("invalid color value: %w", err)
		}
		cfg.UseColors = useColors
	}

	if input.LogLevel != "" {
		if err := SetLogLevel(input.LogLevel); err != nil {
			return err
		}
	}

	cfg.WatchInterval = DefaultWatchInterval
	if input.Interval != "" {
		d, err := time.ParseDuration(input.Interval)
		if err != nil {
			return fmt.Errorf("invalid interval %q: %w", input.Interval, err)
		}
		if d < MinWatchInterval {
			return fmt.Errorf("interval must be at least %s, got %s", MinWatchInterval, d)
		}
		cfg.WatchInterval = d
	}

	return nil
}

// processTimeRange handles the since/until parsing and range validation.
func processTimeRange(ctx context.Context, cfg *Config, store ObjectStore, input *ConfigRawInput) error {
	rng, err := ResolveRange(ctx, input.Since, input.Until, time.Now(), store)
	if err != nil {
		return err
	}
	cfg.Range = rng
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
}
