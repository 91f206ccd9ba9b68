package iocache

import (
	"errors"
	"fmt"

	"github.com/huangsam/debtlens/internal/contract"
	"github.com/huangsam/debtlens/internal/parquet"
)

// ExecuteResultsExport writes every tracked run and its aggregate tables to Parquet
// files named after outputFile.
func ExecuteResultsExport(store contract.ResultStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("no result store configured. Set --results-backend")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get results status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no result data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total runs: %d\n", status.TotalRuns)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	trend, err := store.GetAllTrend()
	if err != nil {
		return fmt.Errorf("failed to retrieve trend results: %w", err)
	}
	seasonality, err := store.GetAllSeasonality()
	if err != nil {
		return fmt.Errorf("failed to retrieve seasonality results: %w", err)
	}
	causality, err := store.GetAllCausality()
	if err != nil {
		return fmt.Errorf("failed to retrieve causality results: %w", err)
	}

	exports := []struct {
		suffix string
		label  string
		count  int
		write  func(path string) error
	}{
		{".runs.parquet", "runs", len(runs), func(path string) error {
			return parquet.WriteRunsParquet(parquet.ConvertRunRecords(runs), path)
		}},
		{".trend.parquet", "trend rows", len(trend), func(path string) error {
			return parquet.WriteTrendParquet(parquet.ConvertTrendRecords(trend), path)
		}},
		{".seasonality.parquet", "seasonality rows", len(seasonality), func(path string) error {
			return parquet.WriteSeasonalityParquet(parquet.ConvertSeasonalityRecords(seasonality), path)
		}},
		{".causality.parquet", "causality rows", len(causality), func(path string) error {
			return parquet.WriteCausalityParquet(parquet.ConvertCausalityRecords(causality), path)
		}},
	}
	for _, e := range exports {
		path := outputFile + e.suffix
		if err := e.write(path); err != nil {
			return fmt.Errorf("failed to write %s: %w", e.label, err)
		}
		fmt.Printf("Exported %d %s to: %s\n", e.count, e.label, path)
	}

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - Apache Spark")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Any other Parquet-compatible tool")
	return nil
}
