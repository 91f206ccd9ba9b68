package schema

import "time"

// CacheStatus represents the status of the cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// ResultsStatus represents the status of the result store.
type ResultsStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TotalRepos    int              `json:"total_repos"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}

// RunRecord represents a row from the debtlens_runs table.
type RunRecord struct {
	RunID         int64
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalRepos    int32
	ConfigParams  *string
}

// TrendRecord represents a row from the debtlens_trend_results table.
type TrendRecord struct {
	RunID int64
	TrendResult
}

// SeasonalityRecord represents a row from the debtlens_seasonality_results table.
type SeasonalityRecord struct {
	RunID int64
	SeasonalityResult
}

// CausalityRecord represents a row from the debtlens_causality_results table.
// PValue is nil when the Granger test did not run.
type CausalityRecord struct {
	RunID       int64
	Repo        string
	Pass        CorrelationPass
	N           int
	Differenced bool
	LagMax      int
	ConfBand    float64
	Breach      bool
	VAROrder    int
	Tested      bool
	Causal      bool
	PValue      *float64
}
