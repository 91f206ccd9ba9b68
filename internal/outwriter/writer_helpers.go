package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/huangsam/debtlens/internal/contract"
)

// pValueDigits is the number of significant digits kept for p-values, which
// would otherwise round to zero at the usual precision.
const pValueDigits = 4

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	if err := writeRows(csvWriter); err != nil {
		return err
	}

	return nil
}

// writeCSVFile writes a header and its rows to a file, replacing any previous content.
func writeCSVFile(path string, header []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	err = writeCSVWithHeader(file, header, func(w *csv.Writer) error {
		return w.WriteAll(rows)
	})
	if err != nil {
		_ = file.Close()
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return file.Close()
}

// createFormatters creates the common formatter closures used across multiple output types.
// Both render NaN as the missing value marker.
func createFormatters(precision int) (fmtFloat, fmtPValue func(float64) string) {
	fmtFloat = func(v float64) string {
		return contract.FormatFloat(v, precision)
	}
	fmtPValue = func(v float64) string {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return contract.MissingValue
		}
		return strconv.FormatFloat(v, 'g', pValueDigits, 64)
	}
	return fmtFloat, fmtPValue
}

// optionalFloat maps NaN to a JSON null.
func optionalFloat(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
