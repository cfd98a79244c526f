package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/seeyebe/gmap/internal/contract"
	"github.com/seeyebe/gmap/internal/gitrepo"
	"github.com/seeyebe/gmap/internal/iocache"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cacheSetup loads the minimal configuration needed for cache operations.
// Outside a repository the path argument itself anchors the default sqlite location.
// The store is only opened when open is set, so clear never holds the file it removes.
func cacheSetup(args []string, open bool) error {
	if err := loadConfigFile(); err != nil {
		return err
	}
	if level := viper.GetString("log-level"); level != "" {
		if err := contract.SetLogLevel(level); err != nil {
			return err
		}
	}

	path := repoArg(args)
	root, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if repo, err := gitrepo.Open(path); err == nil {
		root = repo.Root()
	}

	backend, connStr, err := contract.ResolveCacheTarget(
		viper.GetString("cache-backend"),
		viper.GetString("cache-db-connect"),
		viper.GetString("cache-dir"),
		root,
	)
	if err != nil {
		return err
	}
	cfg.RepoPath = root
	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr

	if !open {
		return nil
	}
	if err := iocache.InitStores(rootCtx, backend, connStr); err != nil {
		if contract.IsFatal(err) {
			contract.LogFatal("Cannot open cache", err)
		}
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	return nil
}

// cacheCmd focused on cache management.
//
// Note: Cache subcommands use minimal initialization instead of the full sharedSetup.
// This avoids range parsing and output validation for simple cache operations.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the commit stats cache",
	Long: `Manage the cache of per-commit diff stats.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (no persistence)

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove all cached data

Examples:
  # Check cache status
  gmap cache status

  # Clear cache after history was rewritten
  gmap cache clear`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear [repo-path]",
	Short: "Remove all cached commit stats",
	Long: `Delete all cached commit stats from the configured backend.

Use this when:
- The cache reports a schema version mismatch
- Repository history was rewritten and old commits should not linger

For SQLite: Deletes the database file and its lock file
For MySQL/PostgreSQL: Drops the commits, files and schema version tables

Examples:
  # Clear SQLite cache (default)
  gmap cache clear

  # Clear MySQL cache (set connection string via env variable)
  GMAP_CACHE_BACKEND=mysql GMAP_CACHE_DB_CONNECT="..." gmap cache clear`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(_ *cobra.Command, args []string) error {
		return cacheSetup(args, false)
	},
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearCache(cfg.CacheBackend, cfg.CacheDBConnect, cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status [repo-path]",
	Short: "Display cache statistics and connection details",
	Long: `Show detailed information about the commit stats cache.

Displays:
- Backend type and connection status
- Schema version
- Number of cached commits and file rows
- Oldest and newest cached commit times
- Cache database size

Examples:
  gmap cache status
  gmap cache status --cache-backend postgresql`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(_ *cobra.Command, args []string) error {
		return cacheSetup(args, true)
	},
	Run: func(_ *cobra.Command, _ []string) {
		status, err := cacheManager.GetCommitStore().GetStatus(rootCtx)
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(os.Stdout, status, time.Now())
	},
}
