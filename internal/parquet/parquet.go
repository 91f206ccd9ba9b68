// Package parquet provides data structures and functions for exporting debtlens
// results to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/huangsam/debtlens/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single analysis run with metadata.
// This struct maps to the debtlens_runs database table.
type Run struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalRepos is the number of repositories processed in this run
	TotalRepos int32 `parquet:"total_repos,snappy"`

	// ConfigParams contains the JSON-encoded analysis parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// Trend is one row of the trend table.
type Trend struct {
	RunID  int64    `parquet:"run_id,snappy"`
	Repo   string   `parquet:"repo,snappy,dict"`
	Tau    float64  `parquet:"tau,snappy"`
	PValue *float64 `parquet:"p_value,optional,snappy"`
	Score  float64  `parquet:"s,snappy"`
	N      int32    `parquet:"n,snappy"`
}

// Seasonality is one row of the seasonality table.
// The p-value of a test that did not run is null.
type Seasonality struct {
	RunID          int64    `parquet:"run_id,snappy"`
	Repo           string   `parquet:"repo,snappy,dict"`
	Seasonal       bool     `parquet:"seasonal"`
	Test           string   `parquet:"test,snappy,dict"`
	QSPValue       *float64 `parquet:"qs_p_value,optional,snappy"`
	KWPValue       *float64 `parquet:"kw_p_value,optional,snappy"`
	Frequency      int32    `parquet:"frequency,snappy"`
	LifeSpanMonths int32    `parquet:"life_span_months,snappy"`
}

// Causality is one row of the causality table.
// PValue is null when the Granger test did not run.
type Causality struct {
	RunID       int64    `parquet:"run_id,snappy"`
	Repo        string   `parquet:"repo,snappy,dict"`
	Pass        string   `parquet:"pass,snappy,dict"`
	N           int32    `parquet:"n,snappy"`
	Differenced bool     `parquet:"differenced"`
	LagMax      int32    `parquet:"lag_max,snappy"`
	ConfBand    float64  `parquet:"conf_band,snappy"`
	Breach      bool     `parquet:"breach"`
	VAROrder    int32    `parquet:"var_order,snappy"`
	Tested      bool     `parquet:"tested"`
	Causal      bool     `parquet:"causal"`
	PValue      *float64 `parquet:"p_value,optional,snappy"`
}

// RepoReport is the outcome of one repository in a run summary.
type RepoReport struct {
	Repo        string     `parquet:"repo,snappy,dict"`
	Status      string     `parquet:"status,snappy,dict"`
	Commits     int32      `parquet:"commits,snappy"`
	Cleaned     int32      `parquet:"cleaned,snappy"`
	Days        int32      `parquet:"days,snappy"`
	FirstDate   *time.Time `parquet:"first_date,optional,snappy"`
	LastDate    *time.Time `parquet:"last_date,optional,snappy"`
	Hotspots    int32      `parquet:"hotspots,snappy"`
	TrendTau    *float64   `parquet:"trend_tau,optional,snappy"`
	TrendPValue *float64   `parquet:"trend_p_value,optional,snappy"`
	Seasonal    *bool      `parquet:"seasonal,optional"`
	TDCausal    *bool      `parquet:"td_causal,optional"`
	TDDCausal   *bool      `parquet:"td_derivative_causal,optional"`
	Error       *string    `parquet:"error,optional,snappy"`
	DurationMs  int64      `parquet:"duration_ms,snappy"`
}

// Hotspot is one ranked commit of a repository.
type Hotspot struct {
	Repo          string    `parquet:"repo,snappy,dict"`
	Rank          int32     `parquet:"rank,snappy"`
	Commit        string    `parquet:"commit,snappy"`
	Parents       string    `parquet:"parents,snappy"`
	AuthorDate    time.Time `parquet:"author_date,snappy"`
	Debt          *float64  `parquet:"debt,optional,snappy"`
	Microservices *float64  `parquet:"microservices,optional,snappy"`
	Delta         *float64  `parquet:"delta,optional,snappy"`
}

// writeParquet writes rows to a new Parquet file whose schema is inferred from T.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteTrendParquet writes trend rows to a Parquet file.
func WriteTrendParquet(data []Trend, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteSeasonalityParquet writes seasonality rows to a Parquet file.
func WriteSeasonalityParquet(data []Seasonality, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteCausalityParquet writes causality rows to a Parquet file.
func WriteCausalityParquet(data []Causality, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteRepoReportsParquet writes the per-repository outcomes of a run to a Parquet file.
func WriteRepoReportsParquet(data []RepoReport, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteHotspotsParquet writes a ranked hotspot listing to a Parquet file.
func WriteHotspotsParquet(data []Hotspot, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:         record.RunID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalRepos:    record.TotalRepos,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertTrendRecords converts stored trend rows for Parquet export.
func ConvertTrendRecords(records []schema.TrendRecord) []Trend {
	result := make([]Trend, len(records))
	for i, record := range records {
		result[i] = Trend{
			RunID:  record.RunID,
			Repo:   record.Repo,
			Tau:    record.Tau,
			PValue: optionalFloat(record.PValue),
			Score:  record.Score,
			N:      int32(record.N),
		}
	}
	return result
}

// ConvertSeasonalityRecords converts stored seasonality rows for Parquet export.
func ConvertSeasonalityRecords(records []schema.SeasonalityRecord) []Seasonality {
	result := make([]Seasonality, len(records))
	for i, record := range records {
		result[i] = Seasonality{
			RunID:          record.RunID,
			Repo:           record.Repo,
			Seasonal:       record.Seasonal,
			Test:           string(record.Test),
			QSPValue:       optionalFloat(record.QSPValue),
			KWPValue:       optionalFloat(record.KWPValue),
			Frequency:      int32(record.Frequency),
			LifeSpanMonths: int32(record.LifeSpanMonths),
		}
	}
	return result
}

// ConvertCausalityRecords converts stored causality rows for Parquet export.
func ConvertCausalityRecords(records []schema.CausalityRecord) []Causality {
	result := make([]Causality, len(records))
	for i, record := range records {
		result[i] = Causality{
			RunID:       record.RunID,
			Repo:        record.Repo,
			Pass:        string(record.Pass),
			N:           int32(record.N),
			Differenced: record.Differenced,
			LagMax:      int32(record.LagMax),
			ConfBand:    record.ConfBand,
			Breach:      record.Breach,
			VAROrder:    int32(record.VAROrder),
			Tested:      record.Tested,
			Causal:      record.Causal,
			PValue:      record.PValue,
		}
	}
	return result
}

// ConvertRepoReports flattens the repository reports of a run summary.
func ConvertRepoReports(reports []schema.RepoReport) []RepoReport {
	result := make([]RepoReport, len(reports))
	for i, r := range reports {
		row := RepoReport{
			Repo:       r.Repo,
			Status:     string(r.Status),
			Commits:    int32(r.Commits),
			Cleaned:    int32(r.Cleaned),
			Days:       int32(r.Days),
			Hotspots:   int32(r.Hotspots),
			DurationMs: r.Duration.Milliseconds(),
		}
		if !r.FirstDate.IsZero() {
			row.FirstDate = &r.FirstDate
			row.LastDate = &r.LastDate
		}
		if t := r.Stats.Trend; t != nil {
			row.TrendTau = optionalFloat(t.Tau)
			row.TrendPValue = optionalFloat(t.PValue)
		}
		if s := r.Stats.Seasonality; s != nil {
			row.Seasonal = &s.Seasonal
		}
		if c, ok := r.Stats.CausalityFor(schema.DebtPass); ok && c.Tested {
			row.TDCausal = &c.Causal
		}
		if c, ok := r.Stats.CausalityFor(schema.DebtDerivativePass); ok && c.Tested {
			row.TDDCausal = &c.Causal
		}
		if r.Error != "" {
			row.Error = &r.Error
		}
		result[i] = row
	}
	return result
}

// ConvertHotspots flattens a hotspot listing, keeping its rank order.
func ConvertHotspots(listing schema.HotspotListing) []Hotspot {
	result := make([]Hotspot, len(listing.Hotspots))
	for i, h := range listing.Hotspots {
		result[i] = Hotspot{
			Repo:          listing.Repo,
			Rank:          int32(i + 1),
			Commit:        h.Commit,
			Parents:       strings.Join(h.Parents, " "),
			AuthorDate:    h.Date,
			Debt:          optionalFloat(h.Debt),
			Microservices: optionalFloat(h.Microservices),
			Delta:         optionalFloat(h.Delta),
		}
	}
	return result
}

// optionalFloat maps NaN to null.
func optionalFloat(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
