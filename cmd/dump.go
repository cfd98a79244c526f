package cmd

import (
	"github.com/seeyebe/gmap/core"
	"github.com/seeyebe/gmap/internal/contract"
	"github.com/spf13/cobra"
)

// dumpCmd writes raw per-file rows.
var dumpCmd = &cobra.Command{
	Use:   "dump [repo-path]",
	Short: "Write one row per changed file for every commit in range",
	Long: `Sync the range, then write flat rows of commit, author, email, timestamp,
path, added, deleted and binary.

Parquet output requires --output-file.

Examples:
  gmap dump --since 2024-01-01 --output csv --output-file changes.csv
  gmap dump --output parquet --output-file changes.parquet`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteDump(rootCtx, cfg, cacheManager, objects); err != nil {
			contract.LogFatal("Cannot dump commit stats", err)
		}
	},
}
