// Package cmd defines the command-line interface for debtlens.
package cmd

import (
	"github.com/huangsam/debtlens/internal/contract"
	"github.com/huangsam/debtlens/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(hotspotsCmd)
	rootCmd.AddCommand(reposCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the results subcommands to the parent results command
	resultsCmd.AddCommand(resultsClearCmd)
	resultsCmd.AddCommand(resultsStatusCmd)
	resultsCmd.AddCommand(resultsExportCmd)
	resultsCmd.AddCommand(resultsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("data-dir", contract.DefaultDataDir, "Directory holding one <owner>.<name>.csv file per repository")
	rootCmd.PersistentFlags().String("cleaned-dir", "", "Optional directory for the cleaned commit tables")
	rootCmd.PersistentFlags().String("zoom-file", "", "Optional CSV of per-repository zoom windows for the zoomed chart")
	rootCmd.PersistentFlags().String("output-dir", contract.DefaultOutputDir, "Directory for aggregate tables, hotspot files, and charts")
	rootCmd.PersistentFlags().StringSlice("exclude", nil, "Comma-separated list of repositories to skip")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultHotspotLimit, "Number of hotspots to display")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of repositories analyzed concurrently")
	rootCmd.PersistentFlags().String("seasonality-test", string(schema.CombinedTest), "Seasonality test: combined or qs or kw")
	rootCmd.PersistentFlags().Int("frequency", contract.DefaultFrequency, "Seasonal period of the daily series")
	rootCmd.PersistentFlags().Int("min-life-span-months", contract.DefaultMinLifeSpanMonths, "Minimum life span in months before seasonality is assessed")
	rootCmd.PersistentFlags().Float64("alpha", contract.DefaultAlpha, "Significance level for every hypothesis test")
	rootCmd.PersistentFlags().Bool("plots", false, "Render per-repository charts into the output directory")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("results-backend", "", "Results tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("results-db-connect", "", "Database connection string for results tracking (SQLite files must differ from the cache file)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of analyzeCmd to Viper
	analyzeCmd.Flags().Bool("pause", false, "Wait for Enter after each repository (forces a single worker)")
	analyzeCmd.Flags().Bool("fail-fast", false, "Abort the run on the first repository failure")
	if err := viper.BindPFlags(analyzeCmd.Flags()); err != nil {
		contract.LogFatal("Error binding analyze flags", err)
	}

	// Bind all flags of resultsMigrateCmd to Viper
	resultsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(resultsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding results migrate flags", err)
	}
}
