package cmd

import (
	"github.com/seeyebe/gmap/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [repo-path]",
	Short: "Start the gmap MCP server",
	Long:  `Launch an MCP server on stdio that lets AI agents fetch commit stats and metadata as tools.`,
	Args:  cobra.MaximumNArgs(1),
	// Logs go to stderr, so stdout stays reserved for the protocol.
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager, objects)
	},
}
