package contract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/debtlens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput returns a raw input that passes validation, rooted at dir.
func validInput(dir string) *ConfigRawInput {
	return &ConfigRawInput{
		DataDir:           dir,
		OutputDir:         filepath.Join(dir, "out"),
		Workers:           1,
		Limit:             DefaultHotspotLimit,
		Precision:         DefaultPrecision,
		Output:            "text",
		SeasonalityTest:   "combined",
		Frequency:         DefaultFrequency,
		MinLifeSpanMonths: DefaultMinLifeSpanMonths,
		Alpha:             DefaultAlpha,
		CacheBackend:      "sqlite",
		Color:             "yes",
	}
}

func TestProcessAndValidate(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
	}{
		{name: "valid minimal config", mutate: func(*ConfigRawInput) {}},
		{name: "invalid output", mutate: func(in *ConfigRawInput) { in.Output = "xml" }, expectError: true},
		{name: "parquet without file", mutate: func(in *ConfigRawInput) { in.Output = "parquet" }, expectError: true},
		{name: "parquet with file", mutate: func(in *ConfigRawInput) {
			in.Output = "parquet"
			in.OutputFile = filepath.Join(dir, "summary.parquet")
		}},
		{name: "zero workers", mutate: func(in *ConfigRawInput) { in.Workers = 0 }, expectError: true},
		{name: "precision too high", mutate: func(in *ConfigRawInput) { in.Precision = 5 }, expectError: true},
		{name: "zero limit", mutate: func(in *ConfigRawInput) { in.Limit = 0 }, expectError: true},
		{name: "invalid seasonality test", mutate: func(in *ConfigRawInput) { in.SeasonalityTest = "x13" }, expectError: true},
		{name: "frequency too small", mutate: func(in *ConfigRawInput) { in.Frequency = 1 }, expectError: true},
		{name: "negative life span", mutate: func(in *ConfigRawInput) { in.MinLifeSpanMonths = -1 }, expectError: true},
		{name: "alpha out of range", mutate: func(in *ConfigRawInput) { in.Alpha = 1.5 }, expectError: true},
		{name: "invalid color", mutate: func(in *ConfigRawInput) { in.Color = "sometimes" }, expectError: true},
		{name: "missing data dir", mutate: func(in *ConfigRawInput) { in.DataDir = filepath.Join(dir, "nope") }, expectError: true},
		{name: "missing cleaned dir", mutate: func(in *ConfigRawInput) { in.CleanedDir = filepath.Join(dir, "nope") }, expectError: true},
		{name: "missing zoom file", mutate: func(in *ConfigRawInput) { in.ZoomFile = filepath.Join(dir, "zoom.csv") }, expectError: true},
		{name: "invalid cache backend", mutate: func(in *ConfigRawInput) { in.CacheBackend = "redis" }, expectError: true},
		{name: "mysql without connection", mutate: func(in *ConfigRawInput) { in.CacheBackend = "mysql" }, expectError: true},
		{name: "same sqlite file", mutate: func(in *ConfigRawInput) {
			in.ResultsBackend = "sqlite"
			in.CacheDBConnect = filepath.Join(dir, "same.db")
			in.ResultsDBConnect = filepath.Join(dir, "same.db")
		}, expectError: true},
		{name: "different sqlite files", mutate: func(in *ConfigRawInput) { in.ResultsBackend = "sqlite" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput(dir)
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, dir, cfg.DataDir)
		})
	}
}

func TestProcessAndValidatePauseForcesSingleWorker(t *testing.T) {
	input := validInput(t.TempDir())
	input.Workers = 4
	input.Pause = true

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Equal(t, 1, cfg.Workers)
	assert.True(t, cfg.Pause)
}

func TestProcessAndValidateDefaults(t *testing.T) {
	dir := t.TempDir()
	zoom := filepath.Join(dir, "zoom.csv")
	require.NoError(t, os.WriteFile(zoom, []byte("repo,from,to\n"), 0o644))

	input := validInput(dir)
	input.OutputDir = ""
	input.CacheBackend = ""
	input.ZoomFile = zoom
	input.SeasonalityTest = "QS"

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, schema.SQLiteBackend, cfg.CacheBackend)
	assert.Equal(t, schema.QSTest, cfg.SeasonalityTest)
	assert.Equal(t, zoom, cfg.ZoomFile)
	assert.Empty(t, cfg.ResultsBackend)
}

func TestParseExcludes(t *testing.T) {
	got := ParseExcludes([]string{"apache.kafka, spring.petclinic", "", " apache.kafka ", "sock-shop"})
	assert.Equal(t, []string{"apache.kafka", "spring.petclinic", "sock-shop"}, got)
	assert.Empty(t, ParseExcludes(nil))
}

func TestConfigExclusionAndClone(t *testing.T) {
	cfg := &Config{Excludes: []string{"a.b"}, Alpha: 0.05, Frequency: 365, SeasonalityTest: schema.CombinedTest}
	assert.True(t, cfg.IsExcluded("a.b"))
	assert.False(t, cfg.IsExcluded("c.d"))

	clone := cfg.Clone()
	clone.Excludes[0] = "changed"
	assert.Equal(t, "a.b", cfg.Excludes[0])

	params := cfg.AnalysisParams()
	assert.Equal(t, 365, params["frequency"])
	assert.Equal(t, "combined", params["seasonality_test"])
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	assert.NoError(t, ValidateDatabaseConnectionString(schema.SQLiteBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.NoneBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "user:pass@tcp(localhost:3306)/debtlens"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "user:pass@localhost"))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost dbname=debtlens"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "dbname=debtlens"))
}

func TestProcessProfilingConfig(t *testing.T) {
	profile := &ProfileConfig{}
	require.NoError(t, ProcessProfilingConfig(profile, ""))
	assert.False(t, profile.Enabled)
	require.NoError(t, ProcessProfilingConfig(profile, "prof"))
	assert.True(t, profile.Enabled)
	assert.Equal(t, "prof", profile.Prefix)
}
