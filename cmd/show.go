package cmd

import (
	"github.com/seeyebe/gmap/core"
	"github.com/seeyebe/gmap/internal/contract"
	"github.com/spf13/cobra"
)

// showCmd prints a single commit.
var showCmd = &cobra.Command{
	Use:   "show <revision> [repo-path]",
	Short: "Print metadata and per-file line counts of one commit",
	Long: `Resolve a revision and print its author, date, message and the lines
added and deleted per file. Cached stats are used when present.

Examples:
  gmap show HEAD
  gmap show v1.2.0~3 ../other-repo --output json`,
	Args: cobra.RangeArgs(1, 2),
	PreRunE: func(_ *cobra.Command, args []string) error {
		input.RevisionStr = args[0]
		return sharedSetup(rootCtx, args[1:])
	},
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteShow(rootCtx, cfg, cacheManager, objects); err != nil {
			contract.LogFatal("Cannot show commit", err)
		}
	},
}
