package core

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/huangsam/debtlens/internal/contract"
	"github.com/huangsam/debtlens/internal/dataset"
	"github.com/huangsam/debtlens/schema"
)

// runner drives one analysis run over every repository of a data source.
type runner struct {
	cfg  *contract.Config
	src  contract.DataSource
	mgr  contract.CacheManager
	in   *bufio.Reader
	zoom map[string]schema.ZoomWindow
}

// newRunner creates a runner. The reader answers the prompts of pause mode.
func newRunner(cfg *contract.Config, src contract.DataSource, mgr contract.CacheManager, in io.Reader) *runner {
	if in == nil {
		in = strings.NewReader("")
	}
	return &runner{cfg: cfg, src: src, mgr: mgr, in: bufio.NewReader(in)}
}

// run analyses every repository that is not excluded and returns the collected tables.
// Failed repositories are reported and skipped unless fail-fast is set, in which case
// the summary of the repositories done so far is returned with the error.
func (r *runner) run(ctx context.Context) (*schema.RunSummary, error) {
	start := time.Now()
	repos, err := r.src.ListRepos()
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	if len(repos) == 0 {
		return nil, errors.New("no repositories found")
	}
	if r.zoom, err = dataset.LoadZoomWindows(r.cfg.ZoomFile); err != nil {
		return nil, fmt.Errorf("load zoom windows: %w", err)
	}

	collector := NewCollector()
	queue := make([]string, 0, len(repos))
	for _, repo := range repos {
		if r.cfg.IsExcluded(repo) {
			collector.Skip(repo)
			continue
		}
		queue = append(queue, repo)
	}

	ctx = contextWithCacheManager(ctx, r.mgr)
	ctx, runID := r.beginRun(ctx)
	if !shouldSuppressHeader(ctx) {
		logRunHeader(r.cfg, len(queue), len(repos)-len(queue))
	}

	var aborted bool
	if r.cfg.Workers > 1 && !r.cfg.Pause {
		err = r.runParallel(ctx, queue, collector)
	} else {
		aborted, err = r.runSequential(ctx, queue, collector)
	}

	summary := collector.Summary()
	summary.RunID = runID
	summary.Aborted = aborted
	summary.Duration = time.Since(start)
	r.endRun(runID, len(summary.Reports))
	return &summary, err
}

// runSequential processes repositories one at a time, pausing between them when asked.
func (r *runner) runSequential(ctx context.Context, queue []string, collector *Collector) (bool, error) {
	for i, repo := range queue {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		report, err := r.analyzeRepo(ctx, repo)
		r.merge(ctx, collector, report)
		if err != nil && r.cfg.FailFast {
			return false, err
		}
		if r.cfg.Pause && i < len(queue)-1 && !r.waitForUser() {
			return true, nil
		}
	}
	return false, nil
}

// runParallel processes repositories with a pool of cfg.Workers goroutines. Reports
// are merged in input order once every worker is done.
func (r *runner) runParallel(ctx context.Context, queue []string, collector *Collector) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		idx    int
		report schema.RepoReport
		err    error
	}
	jobCh := make(chan int, len(queue))
	resultCh := make(chan outcome, len(queue))
	var wg sync.WaitGroup

	// Start worker pool
	for range min(r.cfg.Workers, len(queue)) {
		wg.Go(func() {
			for idx := range jobCh {
				if ctx.Err() != nil {
					continue // Drain remaining jobs after a fail-fast abort
				}
				report, err := r.analyzeRepo(ctx, queue[idx])
				if err != nil && r.cfg.FailFast {
					cancel()
				}
				resultCh <- outcome{idx: idx, report: report, err: err}
			}
		})
	}

	for i := range queue {
		jobCh <- i
	}
	close(jobCh)
	wg.Wait()
	close(resultCh)

	ordered := make([]*outcome, len(queue))
	for o := range resultCh {
		ordered[o.idx] = &o
	}
	var firstErr error
	for _, o := range ordered {
		if o == nil {
			continue
		}
		r.merge(ctx, collector, o.report)
		if o.err != nil && r.cfg.FailFast && firstErr == nil && !errors.Is(o.err, context.Canceled) {
			firstErr = o.err
		}
	}
	return firstErr
}

// analyzeRepo runs the full pipeline of one repository.
func (r *runner) analyzeRepo(ctx context.Context, repo string) (schema.RepoReport, error) {
	var zoom *schema.ZoomWindow
	if w, ok := r.zoom[repo]; ok {
		zoom = &w
	}
	report, err := NewRepoAnalysisBuilder(ctx, r.cfg, r.src, repo).
		WithZoom(zoom).
		LoadData().         // Uncleaned table and cleaned series
		InterpolateDaily(). // Daily debt and microservice series
		RankHotspots().     // Parent deltas of non-merge commits
		ComputeStats().     // Trend, seasonality and correlation
		WriteArtifacts().   // Hotspot listing and charts
		Build()
	if !shouldSuppressHeader(ctx) {
		logRepoReport(report)
	}
	return report, err
}

// merge adds a report to the collector and records its rows in the result store.
func (r *runner) merge(ctx context.Context, collector *Collector, report schema.RepoReport) {
	collector.Add(report)

	runID, ok := getRunID(ctx)
	store := r.resultStore()
	if !ok || store == nil {
		return
	}
	if t := report.Stats.Trend; t != nil {
		if err := store.RecordTrend(runID, *t); err != nil {
			logTrackingError("RecordTrend", report.Repo, err)
		}
	}
	if s := report.Stats.Seasonality; s != nil {
		if err := store.RecordSeasonality(runID, *s); err != nil {
			logTrackingError("RecordSeasonality", report.Repo, err)
		}
	}
	for _, c := range report.Stats.Causality {
		if err := store.RecordCausality(runID, c); err != nil {
			logTrackingError("RecordCausality", report.Repo, err)
		}
	}
}

// waitForUser blocks until the user continues. It returns false when the user quits.
func (r *runner) waitForUser() bool {
	_, _ = fmt.Fprint(os.Stderr, "Press Enter to continue or q to quit: ")
	line, err := r.in.ReadString('\n')
	if err != nil && line == "" {
		return true // No input to wait on
	}
	return !strings.EqualFold(strings.TrimSpace(line), "q")
}

func (r *runner) resultStore() contract.ResultStore {
	if r.mgr == nil {
		return nil
	}
	return r.mgr.GetResultStore()
}

// beginRun registers the run in the result store, if one is configured.
func (r *runner) beginRun(ctx context.Context) (context.Context, int64) {
	store := r.resultStore()
	if store == nil {
		return ctx, 0
	}
	params := r.cfg.AnalysisParams()
	params["data_dir"] = r.cfg.DataDir
	params["workers"] = r.cfg.Workers
	params["exclude"] = r.cfg.Excludes
	runID, err := store.BeginRun(time.Now(), params)
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return ctx, 0
	}
	if runID <= 0 {
		return ctx, 0
	}
	return withRunID(ctx, runID), runID
}

func (r *runner) endRun(runID int64, totalRepos int) {
	store := r.resultStore()
	if store == nil || runID <= 0 {
		return
	}
	if err := store.EndRun(runID, time.Now(), totalRepos); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}

// logTrackingError logs result store errors to stderr without disrupting the run.
func logTrackingError(operation, repo string, err error) {
	contract.LogWarn(fmt.Sprintf("Run tracking failed for %s on %s", operation, repo), err)
}

func logRunHeader(cfg *contract.Config, repos, excluded int) {
	_, _ = fmt.Fprintf(os.Stderr, "🔎 Analyzing %d repositories from %s (%d excluded, %d workers)\n",
		repos, cfg.DataDir, excluded, cfg.Workers)
}

func logRepoReport(report schema.RepoReport) {
	if report.Status == schema.StatusFailed {
		_, _ = fmt.Fprintf(os.Stderr, "❌ %s: %s\n", report.Repo, report.Error)
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "📦 %s: %d commits, %d scored, %d days, %d hotspots (%s, %s)\n",
		report.Repo, report.Commits, report.Cleaned, report.Days, report.Hotspots,
		report.Status, report.Duration.Round(time.Millisecond))
}
