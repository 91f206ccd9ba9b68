package cmd

import (
	"fmt"

	"github.com/huangsam/debtlens/core"
	"github.com/huangsam/debtlens/internal/contract"
	"github.com/spf13/cobra"
)

// analyzeCmd runs the full thesis pipeline over the data directory.
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run trend, seasonality, and correlation analysis on every repository",
	Long: `Analyze every <owner>.<name>.csv dataset of the data directory.

For each repository the commit table is cleaned, interpolated to a daily
series, and tested for:
- A monotonic trend (Mann-Kendall)
- Seasonality (QS and Kruskal-Wallis, gated on life span)
- Granger causality between open issues and technical debt

Results are written as three aggregate tables in the output directory,
plus a hotspot file per repository and optional charts.

Examples:
  # Analyze everything with four workers
  debtlens analyze --workers 4

  # Step through repositories one at a time
  debtlens analyze --pause

  # Skip some repositories and render charts
  debtlens analyze --exclude acme.legacy,acme.fork --plots`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAnalyze(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Analysis failed", err)
		}
	},
}

// hotspotsCmd ranks the commits of one repository by debt change.
var hotspotsCmd = &cobra.Command{
	Use:   "hotspots <repo>",
	Short: "Rank the commits of a repository by their change in technical debt",
	Long: `Rank the non-merge commits of a repository by the absolute change in
technical debt relative to their first parent.

Examples:
  # Top 25 commits of one repository
  debtlens hotspots acme.shop

  # Top 10 as JSON
  debtlens hotspots acme.shop --limit 10 --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteHotspots(rootCtx, cfg, args[0]); err != nil {
			contract.LogFatal("Hotspot ranking failed", err)
		}
	},
}

// reposCmd lists the datasets of the data directory.
var reposCmd = &cobra.Command{
	Use:     "repos",
	Short:   "List the repositories found in the data directory",
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		included, excluded, err := core.ListRepositories(cfg)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, repo := range included {
			_, _ = fmt.Fprintln(out, repo)
		}
		for _, repo := range excluded {
			_, _ = fmt.Fprintf(out, "%s (excluded)\n", repo)
		}
		return nil
	},
}
