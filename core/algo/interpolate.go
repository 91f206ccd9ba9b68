// Package algo holds the per-repository transformations that sit between loading and statistics.
package algo

import (
	"fmt"
	"time"

	"github.com/huangsam/debtlens/schema"
)

// Day is the length of one step of a daily series.
const Day = 24 * time.Hour

// DebtValue selects the technical debt of a record.
func DebtValue(rec schema.CommitRecord) float64 { return rec.Debt }

// MicroservicesValue selects the microservice count of a record.
func MicroservicesValue(rec schema.CommitRecord) float64 { return rec.Microservices }

// CommitSeries pairs the microservice count and technical debt of every record
// that carries both, one point per commit in record order.
func CommitSeries(records []schema.CommitRecord) (micro, debt []float64) {
	for _, rec := range records {
		if !rec.HasDebt() || !rec.HasMicroservices() {
			continue
		}
		micro = append(micro, MicroservicesValue(rec))
		debt = append(debt, DebtValue(rec))
	}
	return micro, debt
}

// Interpolate turns a chronologically sorted series into one value per calendar day,
// from the first to the last commit day inclusive. The last commit of a day sets its
// value; days without commits are linearly interpolated between their neighbours.
func Interpolate(records []schema.CommitRecord, value func(schema.CommitRecord) float64) (schema.DailySeries, error) {
	switch len(records) {
	case 0:
		return schema.DailySeries{}, schema.ErrNoData
	case 1:
		return schema.DailySeries{}, schema.ErrInsufficientData
	}

	start := records[0].Day()
	days := DaysBetween(start, records[len(records)-1].Day()) + 1
	if days < 1 {
		return schema.DailySeries{}, fmt.Errorf("records are out of chronological order")
	}

	known := make([]bool, days)
	values := make([]float64, days)
	for _, rec := range records {
		i := DaysBetween(start, rec.Day())
		if i < 0 || i >= days {
			return schema.DailySeries{}, fmt.Errorf("commit %s is out of chronological order", rec.Commit)
		}
		values[i] = value(rec)
		known[i] = true
	}

	prev := 0
	for i := 1; i < days; i++ {
		if !known[i] {
			continue
		}
		if gap := i - prev; gap > 1 {
			step := (values[i] - values[prev]) / float64(gap)
			for j := prev + 1; j < i; j++ {
				values[j] = values[prev] + step*float64(j-prev)
			}
		}
		prev = i
	}

	return schema.DailySeries{Start: start, Values: values}, nil
}

// DaysBetween counts whole calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(schema.TruncateDay(b).Sub(schema.TruncateDay(a)) / Day)
}

// LifeSpanMonths returns the number of whole months between two dates.
func LifeSpanMonths(first, last time.Time) int {
	months := (last.Year()-first.Year())*12 + int(last.Month()) - int(first.Month())
	if last.Day() < first.Day() {
		months--
	}
	return max(months, 0)
}

// Diff returns the first difference of a series.
func Diff(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, len(values)-1)
	for i := range out {
		out[i] = values[i+1] - values[i]
	}
	return out
}
