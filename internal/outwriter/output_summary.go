package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/debtlens/internal/contract"
	"github.com/huangsam/debtlens/internal/parquet"
	"github.com/huangsam/debtlens/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

var summaryCSVHeader = []string{
	"repo", "status", "commits", "cleaned", "days", "first_date", "last_date", "hotspots",
	"trend", "tau", "trend_p_value", "seasonal", "td_causal", "td_derivative_causal", "duration_ms", "error",
}

// PrintRunSummary outputs the per-repository outcomes of a run, dispatching based on
// the output format configured.
func PrintRunSummary(summary *schema.RunSummary, cfg *contract.Config) error {
	fmtFloat, fmtPValue := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSummaryJSON(w, summary)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSummaryCSV(w, summary, cfg.Alpha, fmtFloat, fmtPValue)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WriteRepoReportsParquet(parquet.ConvertRepoReports(summary.Reports), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSummaryTable(w, summary, cfg, fmtFloat)
		}, "Wrote table")
	}
	return nil
}

// writeSummaryTable generates and writes the human-readable run table.
func writeSummaryTable(w io.Writer, summary *schema.RunSummary, cfg *contract.Config, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Repo", "Status", "Commits", "Days", "Trend", "Tau", "Seasonal", "TD", "TD'", "Time"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	trendLabel, causalLabel := labelFuncs(cfg)
	repoWidth := GetMaxTableRepoWidth(cfg)
	var data [][]string
	for _, r := range summary.Reports {
		row := []string{
			contract.TruncatePath(r.Repo, repoWidth),
			string(r.Status),
			strconv.Itoa(r.Commits),
			strconv.Itoa(r.Days),
		}
		if t := r.Stats.Trend; t != nil {
			row = append(row, trendLabel(t.Tau, t.PValue, cfg.Alpha), fmtFloat(t.Tau))
		} else {
			row = append(row, "-", "-")
		}
		if s := r.Stats.Seasonality; s != nil {
			row = append(row, contract.GetSeasonalLabel(s.Seasonal))
		} else {
			row = append(row, "-")
		}
		for _, pass := range schema.AllCorrelationPasses {
			if c, ok := r.Stats.CausalityFor(pass); ok {
				row = append(row, causalLabel(c.Tested, c.Causal))
			} else {
				row = append(row, "-")
			}
		}
		row = append(row, r.Duration.Round(time.Millisecond).String())
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	var failed []string
	for _, r := range summary.Reports {
		if r.Status == schema.StatusFailed {
			failed = append(failed, fmt.Sprintf("%s (%s)", r.Repo, r.Error))
		}
	}
	if _, err := fmt.Fprintf(w, "Processed %d repositories (%d failed, %d skipped). Rows: %s\n",
		len(summary.Reports), len(failed), len(summary.Skipped), tableRowCount(summary)); err != nil {
		return err
	}
	if len(failed) > 0 {
		if _, err := fmt.Fprintf(w, "Failed: %s\n", strings.Join(failed, "; ")); err != nil {
			return err
		}
	}
	if summary.Aborted {
		if _, err := fmt.Fprintln(w, "Run aborted by the operator."); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Analysis completed in %v with %d workers. Cache backend: %s\n",
		summary.Duration.Round(time.Millisecond), cfg.Workers, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// writeSummaryCSV writes one row per repository.
func writeSummaryCSV(w io.Writer, summary *schema.RunSummary, alpha float64, fmtFloat, fmtPValue func(float64) string) error {
	return writeCSVWithHeader(w, summaryCSVHeader, func(cw *csv.Writer) error {
		for _, r := range summary.Reports {
			if err := cw.Write(summaryCSVRow(r, alpha, fmtFloat, fmtPValue)); err != nil {
				return err
			}
		}
		return nil
	})
}

func summaryCSVRow(r schema.RepoReport, alpha float64, fmtFloat, fmtPValue func(float64) string) []string {
	row := []string{
		r.Repo,
		string(r.Status),
		strconv.Itoa(r.Commits),
		strconv.Itoa(r.Cleaned),
		strconv.Itoa(r.Days),
		formatDate(r.FirstDate),
		formatDate(r.LastDate),
		strconv.Itoa(r.Hotspots),
	}
	if t := r.Stats.Trend; t != nil {
		row = append(row, contract.GetTrendLabel(t.Tau, t.PValue, alpha), fmtFloat(t.Tau), fmtPValue(t.PValue))
	} else {
		row = append(row, "", "", "")
	}
	if s := r.Stats.Seasonality; s != nil {
		row = append(row, strconv.FormatBool(s.Seasonal))
	} else {
		row = append(row, "")
	}
	for _, pass := range schema.AllCorrelationPasses {
		if c, ok := r.Stats.CausalityFor(pass); ok && c.Tested {
			row = append(row, strconv.FormatBool(c.Causal))
		} else {
			row = append(row, "")
		}
	}
	return append(row, strconv.FormatInt(r.Duration.Milliseconds(), 10), r.Error)
}

// jsonReport is the JSON form of one repository report.
type jsonReport struct {
	Repo       string            `json:"repo"`
	Status     schema.RepoStatus `json:"status"`
	Commits    int               `json:"commits"`
	Cleaned    int               `json:"cleaned"`
	Days       int               `json:"days"`
	FirstDate  string            `json:"first_date,omitempty"`
	LastDate   string            `json:"last_date,omitempty"`
	Hotspots   int               `json:"hotspots"`
	Trend      *jsonTrend        `json:"trend,omitempty"`
	Season     *jsonSeasonality  `json:"seasonality,omitempty"`
	Causality  []jsonCausality   `json:"causality,omitempty"`
	Error      string            `json:"error,omitempty"`
	DurationMs int64             `json:"duration_ms"`
}

func toJSONReport(r schema.RepoReport) jsonReport {
	var causality []jsonCausality
	if len(r.Stats.Causality) > 0 {
		causality = toJSONCausality(r.Stats.Causality)
	}
	return jsonReport{
		Repo:       r.Repo,
		Status:     r.Status,
		Commits:    r.Commits,
		Cleaned:    r.Cleaned,
		Days:       r.Days,
		FirstDate:  formatDate(r.FirstDate),
		LastDate:   formatDate(r.LastDate),
		Hotspots:   r.Hotspots,
		Trend:      toJSONTrend(r.Stats.Trend),
		Season:     toJSONSeasonality(r.Stats.Seasonality),
		Causality:  causality,
		Error:      r.Error,
		DurationMs: r.Duration.Milliseconds(),
	}
}

// WriteReportJSON writes a single repository report. Missing statistics are null.
func WriteReportJSON(w io.Writer, report schema.RepoReport) error {
	return writeJSON(w, toJSONReport(report))
}

// writeSummaryJSON writes the run with its reports and the three aggregate tables.
func writeSummaryJSON(w io.Writer, summary *schema.RunSummary) error {
	type jsonSummary struct {
		RunID       int64             `json:"run_id,omitempty"`
		Reports     []jsonReport      `json:"reports"`
		Trend       []jsonTrend       `json:"trend"`
		Seasonality []jsonSeasonality `json:"seasonality"`
		Causality   []jsonCausality   `json:"causality"`
		Skipped     []string          `json:"skipped,omitempty"`
		Aborted     bool              `json:"aborted,omitempty"`
		DurationMs  int64             `json:"duration_ms"`
	}

	out := jsonSummary{
		RunID:       summary.RunID,
		Reports:     make([]jsonReport, 0, len(summary.Reports)),
		Trend:       make([]jsonTrend, 0, len(summary.Trend)),
		Seasonality: make([]jsonSeasonality, 0, len(summary.Seasonality)),
		Causality:   toJSONCausality(summary.Causality),
		Skipped:     summary.Skipped,
		Aborted:     summary.Aborted,
		DurationMs:  summary.Duration.Milliseconds(),
	}
	for _, r := range summary.Reports {
		out.Reports = append(out.Reports, toJSONReport(r))
	}
	for _, t := range summary.Trend {
		out.Trend = append(out.Trend, *toJSONTrend(&t))
	}
	for _, s := range summary.Seasonality {
		out.Seasonality = append(out.Seasonality, *toJSONSeasonality(&s))
	}
	return writeJSON(w, out)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}
