package contract

import (
	"fmt"
	"os"
	"runtime"
	"slices"
	"strings"

	"github.com/huangsam/debtlens/schema"
)

// Default values for configuration.
const (
	DefaultDataDir           = "data"
	DefaultOutputDir         = "out"
	DefaultPrecision         = 2
	MaxPrecision             = 4
	DefaultHotspotLimit      = 25
	MaxHotspotLimit          = 100000
	DefaultFrequency         = 365
	DefaultMinLifeSpanMonths = 24
	DefaultAlpha             = 0.05
)

// DefaultWorkers is the default number of concurrent workers to use.
// Repositories are processed sequentially unless asked otherwise.
var DefaultWorkers = 1

// MaxWorkers caps the worker pool.
var MaxWorkers = runtime.GOMAXPROCS(0) * 4

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for the analysis.
// This struct is the "final, validated" config.
type Config struct {
	DataDir    string
	CleanedDir string
	ZoomFile   string
	OutputDir  string
	Excludes   []string
	Pause      bool
	Workers    int
	FailFast   bool
	Plots      bool
	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	Limit      int // Hotspot rows printed by the hotspots command

	SeasonalityTest   schema.SeasonalityTest
	Frequency         int
	MinLifeSpanMonths int
	Alpha             float64

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	ResultsBackend   schema.DatabaseBackend
	ResultsDBConnect string // Please use env var as this is plaintext

	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	DataDir           string   `mapstructure:"data-dir"`
	CleanedDir        string   `mapstructure:"cleaned-dir"`
	ZoomFile          string   `mapstructure:"zoom-file"`
	OutputDir         string   `mapstructure:"output-dir"`
	Exclude           []string `mapstructure:"exclude"`
	Pause             bool     `mapstructure:"pause"`
	Workers           int      `mapstructure:"workers"`
	FailFast          bool     `mapstructure:"fail-fast"`
	Plots             bool     `mapstructure:"plots"`
	Output            string   `mapstructure:"output"`
	OutputFile        string   `mapstructure:"output-file"`
	Precision         int      `mapstructure:"precision"`
	Width             int      `mapstructure:"width"`
	Limit             int      `mapstructure:"limit"`
	SeasonalityTest   string   `mapstructure:"seasonality-test"`
	Frequency         int      `mapstructure:"frequency"`
	MinLifeSpanMonths int      `mapstructure:"min-life-span-months"`
	Alpha             float64  `mapstructure:"alpha"`
	CacheBackend      string   `mapstructure:"cache-backend"`
	CacheDBConnect    string   `mapstructure:"cache-db-connect"`
	ResultsBackend    string   `mapstructure:"results-backend"`
	ResultsDBConnect  string   `mapstructure:"results-db-connect"`
	Color             string   `mapstructure:"color"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Excludes = slices.Clone(c.Excludes)
	return &clone
}

// IsExcluded reports whether a repository is on the exclusion list.
func (c *Config) IsExcluded(repo string) bool {
	return slices.Contains(c.Excludes, repo)
}

// AnalysisParams returns the parameters that change statistical results.
// They take part in cache keys and are stored along with every run.
func (c *Config) AnalysisParams() map[string]any {
	return map[string]any{
		"seasonality_test":     string(c.SeasonalityTest),
		"frequency":            c.Frequency,
		"min_life_span_months": c.MinLifeSpanMonths,
		"alpha":                c.Alpha,
	}
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processAnalysisParams(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return resolveDirectories(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ParseExcludes flattens the exclusion list. Entries may themselves hold
// comma separated names, which happens when the list comes from a flag or env var.
func ParseExcludes(raw []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, entry := range raw {
		for part := range strings.SplitSeq(entry, ",") {
			name := strings.TrimSpace(part)
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

// validateBackendConfigs validates cache and results backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	// --- Results Backend Validation ---
	cfg.ResultsBackend = schema.DatabaseBackend(strings.ToLower(input.ResultsBackend))
	if cfg.ResultsBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.ResultsBackend]; !ok {
		return fmt.Errorf("invalid results backend '%s'. must be sqlite, mysql, postgresql, none", input.ResultsBackend)
	}
	cfg.ResultsDBConnect = input.ResultsDBConnect
	if err := ValidateDatabaseConnectionString(cfg.ResultsBackend, cfg.ResultsDBConnect); err != nil {
		return fmt.Errorf("results-db-connect: %w", err)
	}

	// Cache and results must not share a SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.ResultsBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		resultsPath := cfg.ResultsDBConnect
		if resultsPath == "" {
			resultsPath = GetResultsDBFilePath()
		}
		if cachePath == resultsPath {
			return fmt.Errorf("cache and results storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Pause = input.Pause
	cfg.FailFast = input.FailFast
	cfg.Plots = input.Plots
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Excludes = ParseExcludes(input.Exclude)

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Workers <= 0 || input.Workers > MaxWorkers {
		return fmt.Errorf("workers must be between 1 and %d (received %d)", MaxWorkers, input.Workers)
	}
	cfg.Workers = input.Workers
	if cfg.Pause {
		// Pausing only makes sense when repositories go one at a time
		cfg.Workers = 1
	}

	if input.Limit <= 0 || input.Limit > MaxHotspotLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxHotspotLimit, input.Limit)
	}
	cfg.Limit = input.Limit

	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}
	return nil
}

// processAnalysisParams validates the statistical parameters.
func processAnalysisParams(cfg *Config, input *ConfigRawInput) error {
	cfg.SeasonalityTest = schema.SeasonalityTest(strings.ToLower(input.SeasonalityTest))
	if _, ok := schema.ValidSeasonalityTests[cfg.SeasonalityTest]; !ok {
		return fmt.Errorf("invalid seasonality test '%s'. must be combined, qs, kw", input.SeasonalityTest)
	}
	if input.Frequency < 2 {
		return fmt.Errorf("frequency must be at least 2 (received %d)", input.Frequency)
	}
	cfg.Frequency = input.Frequency
	if input.MinLifeSpanMonths < 0 {
		return fmt.Errorf("min-life-span-months cannot be negative (received %d)", input.MinLifeSpanMonths)
	}
	cfg.MinLifeSpanMonths = input.MinLifeSpanMonths
	if input.Alpha <= 0 || input.Alpha >= 1 {
		return fmt.Errorf("alpha must be in (0, 1) (received %g)", input.Alpha)
	}
	cfg.Alpha = input.Alpha
	return nil
}

// resolveDirectories checks the input directories and fills the output one.
func resolveDirectories(cfg *Config, input *ConfigRawInput) error {
	cfg.DataDir = strings.TrimSpace(input.DataDir)
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir
	}
	if err := requireDir(cfg.DataDir); err != nil {
		return fmt.Errorf("data-dir: %w", err)
	}

	cfg.CleanedDir = strings.TrimSpace(input.CleanedDir)
	if cfg.CleanedDir != "" {
		if err := requireDir(cfg.CleanedDir); err != nil {
			return fmt.Errorf("cleaned-dir: %w", err)
		}
	}

	cfg.ZoomFile = strings.TrimSpace(input.ZoomFile)
	if cfg.ZoomFile != "" {
		if _, err := os.Stat(cfg.ZoomFile); err != nil {
			return fmt.Errorf("zoom-file: %w", err)
		}
	}

	cfg.OutputDir = strings.TrimSpace(input.OutputDir)
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

func requireDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}
