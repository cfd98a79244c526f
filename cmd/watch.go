package cmd

import (
	"github.com/seeyebe/gmap/core"
	"github.com/seeyebe/gmap/internal/contract"
	"github.com/spf13/cobra"
)

// watchCmd keeps the cache current while HEAD moves.
var watchCmd = &cobra.Command{
	Use:   "watch [repo-path]",
	Short: "Poll HEAD and sync whenever it moves",
	Long: `Run a sync, then poll HEAD every --interval and sync again when it changes.
Stop with Ctrl-C.

Examples:
  gmap watch --interval 10s`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteWatch(rootCtx, cfg, cacheManager, objects); err != nil {
			contract.LogFatal("Watch stopped", err)
		}
	},
}
