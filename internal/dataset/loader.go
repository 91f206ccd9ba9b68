// Package dataset reads the per-repository commit tables produced by the mining step.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/debtlens/schema"
)

var (
	// ErrMissingColumn is returned when a required column is absent from the header.
	ErrMissingColumn = errors.New("missing required column")

	// ErrEmptyDataset is returned when a file has a header but no rows.
	ErrEmptyDataset = errors.New("dataset has no rows")
)

// dateLayouts are tried in order. The mining step writes plain dates.
var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	time.DateTime,
	"2006-01-02T15:04:05",
}

// IsMissing reports whether a cell denotes a missing value.
func IsMissing(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "", "na", "none", "nan", "null":
		return true
	}
	return false
}

// ParseDate parses an author date in any of the supported layouts. Dates keep
// their UTC offset so that the calendar day is the one the author saw.
func ParseDate(cell string) (time.Time, error) {
	cell = strings.TrimSpace(cell)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", cell)
}

// ParseMetric parses a numeric cell. Missing cells yield NaN.
func ParseMetric(cell string) (float64, error) {
	if IsMissing(cell) {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return math.NaN(), fmt.Errorf("invalid number %q", cell)
	}
	return v, nil
}

// LoadFile reads a commit table from a CSV file.
func LoadFile(path, repo string) (*schema.CommitTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	table, err := ReadTable(f, repo)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// ReadTable reads a commit table from CSV content.
// Rows keep their original cells so listings can echo the input schema.
func ReadTable(r io.Reader, repo string) (*schema.CommitTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyDataset
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	idx := make(map[string]int, len(schema.RequiredColumns))
	for _, col := range schema.RequiredColumns {
		pos := slices.Index(header, col)
		if pos < 0 {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
		idx[col] = pos
	}

	table := &schema.CommitTable{Repo: repo, Header: header}
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(row) != len(header) {
			return nil, fmt.Errorf("line %d: expected %d fields, got %d", line, len(header), len(row))
		}

		rec, err := parseRecord(row, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		table.Records = append(table.Records, rec)
	}

	if len(table.Records) == 0 {
		return nil, ErrEmptyDataset
	}
	return table, nil
}

func parseRecord(row []string, idx map[string]int) (schema.CommitRecord, error) {
	date, err := ParseDate(row[idx[schema.ColAuthorDate]])
	if err != nil {
		return schema.CommitRecord{}, err
	}
	debt, err := ParseMetric(row[idx[schema.ColDebt]])
	if err != nil {
		return schema.CommitRecord{}, fmt.Errorf("%s: %w", schema.ColDebt, err)
	}
	ms, err := ParseMetric(row[idx[schema.ColMicroservices]])
	if err != nil {
		return schema.CommitRecord{}, fmt.Errorf("%s: %w", schema.ColMicroservices, err)
	}
	commit := strings.TrimSpace(row[idx[schema.ColCommit]])
	if commit == "" {
		return schema.CommitRecord{}, fmt.Errorf("empty %s", schema.ColCommit)
	}
	return schema.CommitRecord{
		Commit:        commit,
		Parents:       schema.ParseParents(row[idx[schema.ColParent]]),
		Date:          date,
		Debt:          debt,
		Microservices: ms,
		Raw:           row,
	}, nil
}

// Clean returns the analysable series of a table: records carrying a technical
// debt score, stably sorted by author date, one per commit. A missing
// microservice count does not drop a record.
func Clean(table *schema.CommitTable) []schema.CommitRecord {
	seen := make(map[string]struct{}, len(table.Records))
	out := make([]schema.CommitRecord, 0, len(table.Records))
	for _, rec := range table.Records {
		if !rec.HasDebt() {
			continue
		}
		if _, ok := seen[rec.Commit]; ok {
			continue
		}
		seen[rec.Commit] = struct{}{}
		out = append(out, rec)
	}
	slices.SortStableFunc(out, func(a, b schema.CommitRecord) int {
		return a.Date.Compare(b.Date)
	})
	return out
}
