package contract

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Label constants for statistical outcomes.
const (
	IncreasingValue  = "Increasing"
	DecreasingValue  = "Decreasing"
	NoTrendValue     = "No trend"
	CausalValue      = "Causal"
	NotCausalValue   = "Not causal"
	UntestedValue    = "Untested"
	SeasonalValue    = "Seasonal"
	NotSeasonalValue = "Not seasonal"
	MissingValue     = "NA"
)

// Color variables for console output.
var (
	IncreasingColor = color.New(color.FgRed, color.Bold) // debt piling up
	DecreasingColor = color.New(color.FgGreen)
	NeutralColor    = color.New(color.FgCyan)
	CausalColor     = color.New(color.FgMagenta, color.Bold)
	MutedColor      = color.New(color.FgHiBlack)
)

// GetTrendLabel returns a plain label for a Mann-Kendall result.
func GetTrendLabel(tau, pValue, alpha float64) string {
	switch {
	case math.IsNaN(pValue) || pValue >= alpha:
		return NoTrendValue
	case tau > 0:
		return IncreasingValue
	case tau < 0:
		return DecreasingValue
	default:
		return NoTrendValue
	}
}

// GetTrendColorLabel returns a colored trend label for console output.
func GetTrendColorLabel(tau, pValue, alpha float64) string {
	text := GetTrendLabel(tau, pValue, alpha)
	switch text {
	case IncreasingValue:
		return IncreasingColor.Sprint(text)
	case DecreasingValue:
		return DecreasingColor.Sprint(text)
	default:
		return NeutralColor.Sprint(text)
	}
}

// GetCausalLabel returns a plain label for a causality pass.
func GetCausalLabel(tested, causal bool) string {
	switch {
	case !tested:
		return UntestedValue
	case causal:
		return CausalValue
	default:
		return NotCausalValue
	}
}

// GetCausalColorLabel returns a colored causality label for console output.
func GetCausalColorLabel(tested, causal bool) string {
	text := GetCausalLabel(tested, causal)
	switch text {
	case CausalValue:
		return CausalColor.Sprint(text)
	case UntestedValue:
		return MutedColor.Sprint(text)
	default:
		return NeutralColor.Sprint(text)
	}
}

// GetSeasonalLabel returns a plain label for a seasonality outcome.
func GetSeasonalLabel(seasonal bool) string {
	if seasonal {
		return SeasonalValue
	}
	return NotSeasonalValue
}

// FormatFloat renders a float with the given precision, or NA when it is not a number.
func FormatFloat(v float64, precision int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return MissingValue
	}
	return fmt.Sprintf("%.*f", precision, v)
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when the path is empty.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".debtlens_cache.db"
	}
	return filepath.Join(homeDir, ".debtlens_cache.db")
}

// GetResultsDBFilePath returns the path to the SQLite DB file for result storage.
func GetResultsDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".debtlens_results.db"
	}
	return filepath.Join(homeDir, ".debtlens_results.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 so there is room for the "..." prefix and at least one character.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
