package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/huangsam/debtlens/core/algo"
	"github.com/huangsam/debtlens/core/stats"
	"github.com/huangsam/debtlens/internal/charts"
	"github.com/huangsam/debtlens/internal/contract"
	"github.com/huangsam/debtlens/internal/dataset"
	"github.com/huangsam/debtlens/internal/outwriter"
	"github.com/huangsam/debtlens/schema"
)

// HotspotsFile is the per-repository hotspot listing written under the output directory.
const HotspotsFile = "hotspots.csv"

// smoothingSpan is the share of the daily series each loess fit of the smoothed chart uses.
const smoothingSpan = 0.75

// RepoAnalysisBuilder runs the analysis steps of one repository in order.
// A step that fails records its error and every later step becomes a no-op.
type RepoAnalysisBuilder struct {
	ctx   context.Context
	cfg   *contract.Config
	src   contract.DataSource
	cache contract.CacheStore
	repo  string
	zoom  *schema.ZoomWindow
	start time.Time

	// Internal data collected during the build process
	table    *schema.CommitTable
	cleaned  []schema.CommitRecord
	debt     schema.DailySeries
	hotspots []schema.HotspotRecord
	stats    schema.RepoStats
	cached   bool
	err      error
}

// NewRepoAnalysisBuilder is the starting point for analysing a repository.
func NewRepoAnalysisBuilder(ctx context.Context, cfg *contract.Config, src contract.DataSource, repo string) *RepoAnalysisBuilder {
	b := &RepoAnalysisBuilder{
		ctx:   ctx,
		cfg:   cfg,
		src:   src,
		repo:  repo,
		start: time.Now(),
	}
	if mgr := cacheManagerFromContext(ctx); mgr != nil {
		b.cache = mgr.GetResultCache()
	}
	return b
}

// WithZoom sets the window of the zoomed chart.
func (b *RepoAnalysisBuilder) WithZoom(window *schema.ZoomWindow) *RepoAnalysisBuilder {
	b.zoom = window
	return b
}

// LoadData reads the uncleaned table and derives the cleaned series from the
// cleaned table, or from the uncleaned one when no cleaned file exists.
func (b *RepoAnalysisBuilder) LoadData() *RepoAnalysisBuilder {
	if b.err != nil {
		return b
	}
	table, err := b.src.LoadTable(b.repo)
	if err != nil {
		b.err = fmt.Errorf("load dataset: %w", err)
		return b
	}
	cleanedTable, found, err := b.src.LoadCleaned(b.repo)
	if err != nil {
		b.err = fmt.Errorf("load cleaned dataset: %w", err)
		return b
	}
	if !found && !shouldSuppressHeader(b.ctx) {
		contract.LogWarn("No cleaned dataset for "+b.repo, errors.New("dropping rows without a score instead"))
	}
	b.table = table
	b.cleaned = dataset.Clean(cleanedTable)
	return b
}

// InterpolateDaily builds the daily technical debt series used by the
// seasonality step and the charts. A series with fewer than two commits is left empty.
func (b *RepoAnalysisBuilder) InterpolateDaily() *RepoAnalysisBuilder {
	if b.err != nil {
		return b
	}
	var err error
	if b.debt, err = algo.Interpolate(b.cleaned, algo.DebtValue); err != nil && !schema.IsSkippable(err) {
		b.err = fmt.Errorf("interpolate technical debt: %w", err)
	}
	return b
}

// RankHotspots computes the parent delta of every non-merge commit.
func (b *RepoAnalysisBuilder) RankHotspots() *RepoAnalysisBuilder {
	if b.err != nil {
		return b
	}
	b.hotspots = algo.RankHotspots(b.cleaned, algo.NewParentIndex(b.table))
	return b
}

// ComputeStats runs the trend, seasonality and correlation steps, reusing cached
// results when the inputs and parameters are unchanged.
func (b *RepoAnalysisBuilder) ComputeStats() *RepoAnalysisBuilder {
	if b.err != nil {
		return b
	}
	res, cached, err := cachedRepoStats(b.cfg, b.cache, b.src, b.repo, b.computeStats)
	if err != nil {
		b.err = err
		return b
	}
	b.stats, b.cached = res, cached
	return b
}

// WriteArtifacts writes the hotspot listing and, when enabled, the charts.
func (b *RepoAnalysisBuilder) WriteArtifacts() *RepoAnalysisBuilder {
	if b.err != nil || b.cfg.OutputDir == "" {
		return b
	}
	dir := filepath.Join(b.cfg.OutputDir, b.repo)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		b.err = fmt.Errorf("create output directory: %w", err)
		return b
	}
	listing := schema.HotspotListing{Repo: b.repo, Header: b.table.Header, Hotspots: b.hotspots}
	if err := outwriter.WriteHotspotsFile(filepath.Join(dir, HotspotsFile), listing, b.cfg.Precision); err != nil {
		b.err = fmt.Errorf("write hotspots: %w", err)
		return b
	}
	if b.cfg.Plots {
		if err := charts.RenderRepo(dir, b.chartData()); err != nil {
			contract.LogWarn("Chart rendering failed for "+b.repo, err)
		}
	}
	return b
}

// Build returns the report of the repository and the error that stopped it, if any.
func (b *RepoAnalysisBuilder) Build() (schema.RepoReport, error) {
	report := schema.RepoReport{
		Repo:     b.repo,
		Status:   schema.StatusAnalyzed,
		Cleaned:  len(b.cleaned),
		Days:     b.debt.Len(),
		Hotspots: len(b.hotspots),
		Stats:    b.stats,
		Duration: time.Since(b.start),
	}
	if b.table != nil {
		report.Commits = len(b.table.Records)
	}
	if len(b.cleaned) > 0 {
		report.FirstDate = b.cleaned[0].Date
		report.LastDate = b.cleaned[len(b.cleaned)-1].Date
	}
	if b.cached {
		report.Status = schema.StatusCached
	}
	if b.err != nil {
		report.Status = schema.StatusFailed
		report.Error = b.err.Error()
		return report, fmt.Errorf("%s: %w", b.repo, b.err)
	}
	return report, nil
}

// Hotspots returns the ranked hotspot listing built so far.
func (b *RepoAnalysisBuilder) Hotspots() schema.HotspotListing {
	listing := schema.HotspotListing{Repo: b.repo, Hotspots: b.hotspots}
	if b.table != nil {
		listing.Header = b.table.Header
	}
	return listing
}

// computeStats runs every statistical step. Steps without enough data are skipped
// and unexpected failures are reported as warnings, so one step never costs the others.
func (b *RepoAnalysisBuilder) computeStats() (schema.RepoStats, error) {
	var res schema.RepoStats
	if err := b.ctx.Err(); err != nil {
		return res, err
	}
	res.Trend = b.trend()
	res.Seasonality = b.seasonality()
	res.Causality = b.causality()
	return res, nil
}

func (b *RepoAnalysisBuilder) trend() *schema.TrendResult {
	values := make([]float64, len(b.cleaned))
	for i, rec := range b.cleaned {
		values[i] = rec.Debt
	}
	mk, err := stats.MannKendall(values)
	if err != nil {
		b.stepFailed("trend", err)
		return nil
	}
	return &schema.TrendResult{Repo: b.repo, Tau: mk.Tau, PValue: mk.PValue, Score: mk.S, N: mk.N}
}

func (b *RepoAnalysisBuilder) seasonality() *schema.SeasonalityResult {
	if b.debt.Len() == 0 {
		return nil
	}
	months := algo.LifeSpanMonths(b.cleaned[0].Date, b.cleaned[len(b.cleaned)-1].Date)
	if months < b.cfg.MinLifeSpanMonths {
		return nil
	}
	out, err := stats.TestSeasonality(b.debt.Values, b.cfg.Frequency, b.cfg.SeasonalityTest)
	if err != nil {
		b.stepFailed("seasonality", err)
		return nil
	}
	return &schema.SeasonalityResult{
		Repo:           b.repo,
		Seasonal:       out.Seasonal,
		Test:           b.cfg.SeasonalityTest,
		QSPValue:       out.QSPValue,
		KWPValue:       out.KWPValue,
		Frequency:      b.cfg.Frequency,
		LifeSpanMonths: months,
	}
}

// causality runs the level pass and the derivative pass over the cleaned
// per-commit series. The derivative pass drops the first commit of the
// microservice series to stay aligned.
func (b *RepoAnalysisBuilder) causality() []schema.CausalityResult {
	micro, debt := algo.CommitSeries(b.cleaned)
	if len(debt) == 0 {
		return nil
	}
	var out []schema.CausalityResult
	if res, ok := b.correlate(schema.DebtPass, micro, debt); ok {
		out = append(out, res)
	}
	if len(debt) > 1 {
		if res, ok := b.correlate(schema.DebtDerivativePass, micro[1:], algo.Diff(debt)); ok {
			out = append(out, res)
		}
	}
	return out
}

func (b *RepoAnalysisBuilder) correlate(pass schema.CorrelationPass, micro, debt []float64) (schema.CausalityResult, bool) {
	out, err := stats.Correlate(micro, debt, b.cfg.Alpha)
	if err != nil {
		b.stepFailed("correlation ("+string(pass)+")", err)
		return schema.CausalityResult{}, false
	}
	res := schema.CausalityResult{
		Repo:         b.repo,
		Pass:         pass,
		N:            out.N,
		Differenced:  out.Differenced,
		LagMax:       out.LagMax,
		ConfBand:     out.Band,
		Breach:       out.Breach,
		VAROrder:     out.VAROrder,
		Tested:       out.Tested,
		Causal:       out.Causal,
		PValue:       out.Granger.PValue,
		Coefficients: out.Coefficients,
	}
	if !out.Tested {
		res.PValue = math.NaN()
	}
	return res, true
}

// stepFailed reports a statistical step that could not run. Missing data is expected
// and stays quiet.
func (b *RepoAnalysisBuilder) stepFailed(step string, err error) {
	if schema.IsSkippable(err) || shouldSuppressHeader(b.ctx) {
		return
	}
	contract.LogWarn(fmt.Sprintf("Skipping %s step for %s", step, b.repo), err)
}

// chartData collects what the chart renderer needs. The decomposition is only
// computed for seasonal repositories.
func (b *RepoAnalysisBuilder) chartData() charts.RepoCharts {
	c := charts.RepoCharts{
		Repo:      b.repo,
		Cleaned:   b.cleaned,
		Debt:      b.debt,
		Zoom:      b.zoom,
		Causality: b.stats.Causality,
	}
	if b.debt.Len() > 0 {
		c.Smooth = stats.LoessSpan(b.debt.Values, smoothingSpan)
	}
	if s := b.stats.Seasonality; s != nil && s.Seasonal {
		d, err := stats.STL(b.debt.Values, s.Frequency)
		if err != nil {
			b.stepFailed("decomposition", err)
			return c
		}
		c.Decomposition = &charts.Decomposition{
			Period:    d.Period,
			Trend:     d.Trend,
			Seasonal:  d.Seasonal,
			Remainder: d.Remainder,
		}
	}
	return c
}
