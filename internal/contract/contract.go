// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/debtlens/schema"
)

// DataSource defines the operations needed to read mined repository datasets.
// This allows the core analysis logic to be tested without files on disk.
type DataSource interface {
	// ListRepos returns the repositories available in the dataset, in directory order.
	ListRepos() ([]string, error)

	// LoadTable returns the uncleaned commit table of a repository.
	LoadTable(repo string) (*schema.CommitTable, error)

	// LoadCleaned returns the cleaned commit table of a repository.
	// The boolean is false when the table had to be derived from the uncleaned one.
	LoadCleaned(repo string) (*schema.CommitTable, bool, error)

	// Fingerprint returns a digest of every input file a repository depends on.
	Fingerprint(repo string) (string, error)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetResultCache() CacheStore
	GetResultStore() ResultStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// ResultStore defines the interface for tracking runs and storing their aggregate tables.
type ResultStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, totalRepos int) error

	// RecordTrend stores one trend row
	RecordTrend(runID int64, result schema.TrendResult) error

	// RecordSeasonality stores one seasonality row
	RecordSeasonality(runID int64, result schema.SeasonalityResult) error

	// RecordCausality stores one causality row
	RecordCausality(runID int64, result schema.CausalityResult) error

	// GetStatus returns status information about the result store
	GetStatus() (schema.ResultsStatus, error)

	// GetAllRuns retrieves all runs from the database
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllTrend retrieves all stored trend rows
	GetAllTrend() ([]schema.TrendRecord, error)

	// GetAllSeasonality retrieves all stored seasonality rows
	GetAllSeasonality() ([]schema.SeasonalityRecord, error)

	// GetAllCausality retrieves all stored causality rows
	GetAllCausality() ([]schema.CausalityRecord, error)

	// Close closes the underlying connection
	Close() error
}
