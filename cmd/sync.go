package cmd

import (
	"github.com/seeyebe/gmap/core"
	"github.com/seeyebe/gmap/internal/contract"
	"github.com/spf13/cobra"
)

// syncCmd fills the cache for a range of history.
var syncCmd = &cobra.Command{
	Use:   "sync [repo-path]",
	Short: "Compute and cache diff stats for commits in range",
	Long: `Walk history from HEAD, diff every commit in range that is not cached yet
against its first parent, and store the results.

Commits already in the cache are never diffed again, so a repeated sync only
pays for new commits.

Examples:
  # Cache the whole history of the current repository
  gmap sync

  # Only the last month, without merge commits
  gmap sync --since "1 month ago" --merges=false

  # See how much work a sync would do
  gmap sync --dry-run`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSync(rootCtx, cfg, cacheManager, objects); err != nil {
			contract.LogFatal("Cannot sync commit stats", err)
		}
	},
}
