package contract

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTrendLabel(t *testing.T) {
	tests := []struct {
		name     string
		tau      float64
		pValue   float64
		expected string
	}{
		{"significant increase", 0.8, 0.001, IncreasingValue},
		{"significant decrease", -0.4, 0.01, DecreasingValue},
		{"not significant", 0.8, 0.2, NoTrendValue},
		{"exactly alpha", 0.8, 0.05, NoTrendValue},
		{"zero tau", 0, 0.001, NoTrendValue},
		{"missing p-value", 0.8, math.NaN(), NoTrendValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetTrendLabel(tt.tau, tt.pValue, 0.05))
			assert.Contains(t, GetTrendColorLabel(tt.tau, tt.pValue, 0.05), tt.expected)
		})
	}
}

func TestGetCausalLabel(t *testing.T) {
	assert.Equal(t, UntestedValue, GetCausalLabel(false, false))
	assert.Equal(t, UntestedValue, GetCausalLabel(false, true))
	assert.Equal(t, CausalValue, GetCausalLabel(true, true))
	assert.Equal(t, NotCausalValue, GetCausalLabel(true, false))
	assert.Contains(t, GetCausalColorLabel(true, true), CausalValue)
}

func TestGetSeasonalLabel(t *testing.T) {
	assert.Equal(t, SeasonalValue, GetSeasonalLabel(true))
	assert.Equal(t, NotSeasonalValue, GetSeasonalLabel(false))
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "1.23", FormatFloat(1.2345, 2))
	assert.Equal(t, "-0.5000", FormatFloat(-0.5, 4))
	assert.Equal(t, MissingValue, FormatFloat(math.NaN(), 2))
	assert.Equal(t, MissingValue, FormatFloat(math.Inf(1), 2))
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		file, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, file)
	})

	t.Run("valid path creates file", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "test_output.txt")

		file, err := SelectOutputFile(tempFile)
		require.NoError(t, err)
		assert.NotNil(t, file)
		_ = file.Close()

		_, err = os.Stat(tempFile)
		assert.NoError(t, err)
	})
}

func TestGetDBFilePaths(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	cachePath := GetCacheDBFilePath()
	assert.Contains(t, cachePath, ".debtlens_cache.db")
	assert.True(t, strings.HasPrefix(cachePath, homeDir), "path %s should start with home dir %s", cachePath, homeDir)

	resultsPath := GetResultsDBFilePath()
	assert.Contains(t, resultsPath, ".debtlens_results.db")
	assert.NotEqual(t, cachePath, resultsPath)
}

func TestTruncatePath(t *testing.T) {
	assert.Equal(t, "short", TruncatePath("short", 10))
	assert.Equal(t, "...ository", TruncatePath("some/long/repository", 10))
	assert.Equal(t, "abcdef", TruncatePath("abcdef", 3))
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v)
	}
	for _, s := range []string{"no", "False", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, v)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}
