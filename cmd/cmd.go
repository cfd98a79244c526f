// Package cmd defines the command-line interface for gmap.
package cmd

import (
	"github.com/seeyebe/gmap/internal/contract"
	"github.com/seeyebe/gmap/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("since", "", "Oldest commit time: RFC3339, YYYY-MM-DD, 'N days ago' or a revision")
	rootCmd.PersistentFlags().String("until", "", "Newest commit time: RFC3339, YYYY-MM-DD, 'N days ago' or a revision")
	rootCmd.PersistentFlags().Bool("merges", contract.DefaultIncludeMerges, "Include merge commits")
	rootCmd.PersistentFlags().Bool("binary", contract.DefaultIncludeBinary, "Include binary files (reported with zero line counts)")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("cache-dir", "", "Directory holding the sqlite cache (default <repo>/.gmap)")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level: panic, fatal, error, warn, info, debug or trace")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of syncCmd to Viper
	syncCmd.Flags().Bool("dry-run", false, "Only report how many commits would be computed")
	if err := viper.BindPFlags(syncCmd.Flags()); err != nil {
		contract.LogFatal("Error binding sync flags", err)
	}

	// Bind all flags of watchCmd to Viper
	watchCmd.Flags().String("interval", contract.DefaultWatchInterval.String(), "How often to poll HEAD")
	if err := viper.BindPFlags(watchCmd.Flags()); err != nil {
		contract.LogFatal("Error binding watch flags", err)
	}
}
