// Package core has the per-repository analysis pipeline and the run driver
// that feeds the aggregate result tables.
package core

import (
	"context"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/huangsam/debtlens/core/algo"
	"github.com/huangsam/debtlens/internal/contract"
	"github.com/huangsam/debtlens/internal/dataset"
	"github.com/huangsam/debtlens/internal/outwriter"
	"github.com/huangsam/debtlens/schema"
)

// ExecutorFunc defines the function signature for executing different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// newDataSource returns the dataset directories of a config.
func newDataSource(cfg *contract.Config) contract.DataSource {
	return dataset.NewDir(cfg.DataDir, cfg.CleanedDir)
}

// ExecuteAnalyze runs the full analysis over the data directory, writes the aggregate
// tables to the output directory and prints the run summary.
// It serves as the main entry point for the 'analyze' command.
func ExecuteAnalyze(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	summary, runErr := GetAnalyzeResults(ctx, cfg, mgr)
	if summary == nil {
		return runErr
	}
	if cfg.OutputDir != "" {
		if err := outwriter.WriteAggregateTables(cfg.OutputDir, summary, cfg.Precision); err != nil {
			return fmt.Errorf("write aggregate tables: %w", err)
		}
	}
	if err := outwriter.PrintRunSummary(summary, cfg); err != nil {
		return err
	}
	return runErr
}

// GetAnalyzeResults runs the full analysis and returns the collected tables.
// Pause prompts are answered from standard input.
func GetAnalyzeResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*schema.RunSummary, error) {
	return newRunner(cfg, newDataSource(cfg), mgr, os.Stdin).run(ctx)
}

// GetRepoReport runs the pipeline for a single repository, ignoring the exclusion list.
func GetRepoReport(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, repo string) (*schema.RepoReport, error) {
	return analyzeSingleRepo(ctx, cfg, newDataSource(cfg), mgr, repo)
}

func analyzeSingleRepo(ctx context.Context, cfg *contract.Config, src contract.DataSource, mgr contract.CacheManager, repo string) (*schema.RepoReport, error) {
	if err := requireRepo(src, repo); err != nil {
		return nil, err
	}
	r := newRunner(cfg, src, mgr, nil)
	zoom, err := dataset.LoadZoomWindows(cfg.ZoomFile)
	if err != nil {
		return nil, fmt.Errorf("load zoom windows: %w", err)
	}
	r.zoom = zoom
	report, err := r.analyzeRepo(contextWithCacheManager(ctx, mgr), repo)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// ExecuteHotspots ranks the commits of one repository and prints the top entries.
// It serves as the main entry point for the 'hotspots' command.
func ExecuteHotspots(ctx context.Context, cfg *contract.Config, repo string) error {
	start := time.Now()
	listing, err := GetHotspotResults(ctx, cfg, repo)
	if err != nil {
		return err
	}
	return outwriter.PrintHotspots(listing, cfg, time.Since(start))
}

// GetHotspotResults ranks the non-merge commits of a repository by their technical
// debt delta and keeps the top cfg.Limit of them.
func GetHotspotResults(ctx context.Context, cfg *contract.Config, repo string) (schema.HotspotListing, error) {
	return rankRepoHotspots(ctx, cfg, newDataSource(cfg), repo)
}

func rankRepoHotspots(ctx context.Context, cfg *contract.Config, src contract.DataSource, repo string) (schema.HotspotListing, error) {
	if err := requireRepo(src, repo); err != nil {
		return schema.HotspotListing{}, err
	}
	b := NewRepoAnalysisBuilder(WithSuppressHeader(ctx), cfg, src, repo).
		LoadData().
		RankHotspots()
	if _, err := b.Build(); err != nil {
		return schema.HotspotListing{}, err
	}
	listing := b.Hotspots()
	listing.Hotspots = algo.TopHotspots(listing.Hotspots, cfg.Limit)
	return listing, nil
}

// ListRepositories returns the repositories of the data directory with their
// exclusion status.
func ListRepositories(cfg *contract.Config) ([]string, []string, error) {
	repos, err := newDataSource(cfg).ListRepos()
	if err != nil {
		return nil, nil, err
	}
	var included, excluded []string
	for _, repo := range repos {
		if cfg.IsExcluded(repo) {
			excluded = append(excluded, repo)
		} else {
			included = append(included, repo)
		}
	}
	return included, excluded, nil
}

// requireRepo fails when the data source has no dataset for repo.
func requireRepo(src contract.DataSource, repo string) error {
	repos, err := src.ListRepos()
	if err != nil {
		return fmt.Errorf("list repositories: %w", err)
	}
	if !slices.Contains(repos, repo) {
		return fmt.Errorf("repository %q not found", repo)
	}
	return nil
}
