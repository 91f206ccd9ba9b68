package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and result tracking.
	DatabaseBackend string

	// SeasonalityTest represents the seasonality test variant.
	SeasonalityTest string

	// CorrelationPass labels one of the two correlation and causality passes.
	CorrelationPass string

	// RepoStatus is the outcome of processing a single repository.
	RepoStatus string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All seasonality test variants supported.
const (
	CombinedTest SeasonalityTest = "combined" // default, QS or Kruskal-Wallis
	QSTest       SeasonalityTest = "qs"
	KWTest       SeasonalityTest = "kw"
)

// Correlation passes. The first relates technical debt to the microservice
// count, the second relates the first derivative of technical debt to it.
const (
	DebtPass           CorrelationPass = "td"
	DebtDerivativePass CorrelationPass = "td_derivative"
)

// All repository outcomes.
const (
	StatusAnalyzed RepoStatus = "analyzed"
	StatusCached   RepoStatus = "cached"
	StatusFailed   RepoStatus = "failed"
)

// AllCorrelationPasses lists the passes in the order they run.
var AllCorrelationPasses = []CorrelationPass{DebtPass, DebtDerivativePass}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidSeasonalityTests lists all valid seasonality test variants.
var ValidSeasonalityTests = map[SeasonalityTest]struct{}{
	CombinedTest: {},
	QSTest:       {},
	KWTest:       {},
}
