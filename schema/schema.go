// Package schema has configs, models and constants shared by all parts of debtlens.
package schema

import (
	"math"
	"strings"
	"time"
)

// Column names of the mined per-commit CSV that the analysis reads.
const (
	ColRepo          = "REPO"
	ColCommit        = "COMMIT"
	ColParent        = "PARENT"
	ColAuthorDate    = "AUTHOR_DATE"
	ColDebt          = "SQALE_INDEX"
	ColMicroservices = "MICROSERVICES"
	ColDelta         = "DELTA"
)

// RequiredColumns must be present in every mined CSV header.
var RequiredColumns = []string{ColCommit, ColParent, ColAuthorDate, ColDebt, ColMicroservices}

// CommitRecord is one row of a mined repository CSV.
// Debt and Microservices are NaN when the mining tool failed to produce them.
type CommitRecord struct {
	Commit        string    // Commit identifier
	Parents       []string  // Parent identifiers, more than one for merges
	Date          time.Time // Author date in UTC
	Debt          float64   // Technical debt (SQALE index)
	Microservices float64   // Number of detected microservices
	Raw           []string  // Original cells in header order
}

// HasDebt reports whether the record carries a usable technical debt score.
func (c CommitRecord) HasDebt() bool {
	return !math.IsNaN(c.Debt) && !math.IsInf(c.Debt, 0)
}

// HasMicroservices reports whether the record carries a usable microservice count.
func (c CommitRecord) HasMicroservices() bool {
	return !math.IsNaN(c.Microservices) && !math.IsInf(c.Microservices, 0)
}

// IsMerge reports whether the commit has more than one parent.
func (c CommitRecord) IsMerge() bool {
	return len(c.Parents) > 1
}

// IsRoot reports whether the commit has no parent.
func (c CommitRecord) IsRoot() bool {
	return len(c.Parents) == 0
}

// Day returns the calendar day of the author date.
func (c CommitRecord) Day() time.Time {
	return TruncateDay(c.Date)
}

// CommitTable holds every record of one repository CSV in file order.
type CommitTable struct {
	Repo    string
	Header  []string
	Records []CommitRecord
}

// ParseParents splits the PARENT cell into identifiers.
// Merge commits list their parents separated by spaces.
func ParseParents(cell string) []string {
	return strings.Fields(cell)
}

// DailySeries has one value per calendar day starting at Start.
type DailySeries struct {
	Start  time.Time
	Values []float64
}

// Len returns the number of days in the series.
func (d DailySeries) Len() int {
	return len(d.Values)
}

// DateAt returns the calendar day of the i-th value.
func (d DailySeries) DateAt(i int) time.Time {
	return d.Start.AddDate(0, 0, i)
}

// End returns the last calendar day of the series.
func (d DailySeries) End() time.Time {
	if len(d.Values) == 0 {
		return d.Start
	}
	return d.DateAt(len(d.Values) - 1)
}

// ZoomWindow is a date sub-range used to render a narrower chart for a repository.
type ZoomWindow struct {
	Repo string    `json:"repo"`
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Contains reports whether t falls in the window, bounds included.
func (z ZoomWindow) Contains(t time.Time) bool {
	return !t.Before(z.From) && !t.After(z.To)
}

// TruncateDay drops the clock part of t, keeping the calendar day of its own
// location, and returns that day as UTC midnight.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
