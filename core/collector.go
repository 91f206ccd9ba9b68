package core

import (
	"slices"
	"sync"

	"github.com/huangsam/debtlens/schema"
)

// Collector accumulates the reports of a run and the three aggregate tables built
// from them. Every row keeps the repository it came from. It is safe for concurrent use.
type Collector struct {
	mu          sync.Mutex
	reports     []schema.RepoReport
	trend       []schema.TrendResult
	seasonality []schema.SeasonalityResult
	causality   []schema.CausalityResult
	skipped     []string
}

// NewCollector returns a collector with empty tables.
func NewCollector() *Collector {
	return &Collector{
		reports:     []schema.RepoReport{},
		trend:       []schema.TrendResult{},
		seasonality: []schema.SeasonalityResult{},
		causality:   []schema.CausalityResult{},
	}
}

// Add appends a repository report and its result rows.
func (c *Collector) Add(report schema.RepoReport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports = append(c.reports, report)
	if report.Stats.Trend != nil {
		c.trend = append(c.trend, *report.Stats.Trend)
	}
	if report.Stats.Seasonality != nil {
		c.seasonality = append(c.seasonality, *report.Stats.Seasonality)
	}
	c.causality = append(c.causality, report.Stats.Causality...)
}

// Skip records a repository excluded from the run.
func (c *Collector) Skip(repo string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.skipped = append(c.skipped, repo)
}

// Summary returns a snapshot of everything collected so far.
func (c *Collector) Summary() schema.RunSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return schema.RunSummary{
		Reports:     slices.Clone(c.reports),
		Trend:       slices.Clone(c.trend),
		Seasonality: slices.Clone(c.seasonality),
		Causality:   slices.Clone(c.causality),
		Skipped:     slices.Clone(c.skipped),
	}
}
