package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/debtlens/internal/contract"
	"github.com/huangsam/debtlens/internal/iocache"
	"github.com/huangsam/debtlens/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// sqliteFilePath returns the SQLite file a connection string refers to.
func sqliteFilePath(connStr, defaultPath string) string {
	if connStr != "" {
		return connStr
	}
	return defaultPath
}

// resultsBackendConfig reads and validates the results backend settings.
// An empty backend means results tracking is disabled.
func resultsBackendConfig() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backend := schema.NoneBackend
	if backendStr := viper.GetString("results-backend"); backendStr != "" {
		backend = schema.DatabaseBackend(backendStr)
	}
	connStr := viper.GetString("results-db-connect")

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// resultsSetup loads minimal configuration needed for results operations.
func resultsSetup() error {
	backend, connStr, err := resultsBackendConfig()
	if err != nil {
		return err
	}

	// No cache for results commands
	if err := iocache.InitStores(schema.NoneBackend, "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize results: %w", err)
	}

	cfg.ResultsBackend = backend
	cfg.ResultsDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")

	return nil
}

// resultsSetupWrapper wraps resultsSetup to provide PreRunE for results commands.
func resultsSetupWrapper(_ *cobra.Command, _ []string) error {
	return resultsSetup()
}

// resultsMigrateSetup does NOT open the store, since opening applies every
// pending migration and would defeat --target-version.
func resultsMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := resultsBackendConfig()
	if err != nil {
		return err
	}
	cfg.ResultsBackend = backend
	cfg.ResultsDBConnect = connStr
	return nil
}

// resultsCmd focused on tracked analysis runs.
var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Manage the history of analysis runs",
	Long: `Manage the database that records every analysis run.

When --results-backend is set, each run of 'debtlens analyze' stores its
parameters and the per-repository trend, seasonality, and causality results.

Subcommands:
  status  - Show run statistics and connection info
  export  - Export all tracked results to Parquet files
  clear   - Remove all tracked results
  migrate - Apply or roll back schema migrations

Examples:
  # Track results in a local SQLite file
  debtlens analyze --results-backend sqlite

  # Inspect the run history
  debtlens results status --results-backend sqlite`,
}

// resultsStatusCmd shows results status.
var resultsStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display run statistics and connection details",
	PreRunE: resultsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetResultStore()
		if store == nil {
			iocache.PrintResultsStatus(os.Stdout, schema.ResultsStatus{Backend: string(schema.NoneBackend)})
			return
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get results status", err)
		}
		iocache.PrintResultsStatus(os.Stdout, status)
	},
}

// resultsExportCmd exports tracked results.
var resultsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export tracked results to Parquet files",
	Long: `Write every tracked table to its own Parquet file, named after --output-file:
<prefix>.runs.parquet, <prefix>.trend.parquet, <prefix>.seasonality.parquet,
and <prefix>.causality.parquet.

Examples:
  debtlens results export --results-backend sqlite --output-file thesis`,
	PreRunE: resultsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteResultsExport(iocache.Manager.GetResultStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export results", err)
		}
	},
}

// resultsClearCmd clears tracked results.
var resultsClearCmd = &cobra.Command{
	Use:     "clear",
	Short:   "Remove all tracked analysis runs",
	PreRunE: resultsMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		path := sqliteFilePath(cfg.ResultsDBConnect, contract.GetResultsDBFilePath())
		if err := iocache.ClearResults(cfg.ResultsBackend, path, cfg.ResultsDBConnect); err != nil {
			contract.LogFatal("Failed to clear results", err)
		}
		fmt.Println("Results cleared successfully.")
	},
}

// resultsMigrateCmd manages the results schema.
var resultsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back results schema migrations",
	Long: `Migrate the results schema to a specific version.

Examples:
  # Apply all pending migrations
  debtlens results migrate --results-backend postgresql --results-db-connect "..."

  # Roll back everything
  debtlens results migrate --results-backend sqlite --target-version 0`,
	PreRunE: resultsMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.MigrateResults(cfg.ResultsBackend, cfg.ResultsDBConnect, viper.GetInt("target-version")); err != nil {
			contract.LogFatal("Failed to migrate results", err)
		}
	},
}
