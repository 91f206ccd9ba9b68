package outwriter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/huangsam/debtlens/schema"
)

// Aggregate table file names, written once per run.
const (
	TrendFile       = "trend.csv"
	SeasonalityFile = "seasonality.csv"
	CausalityFile   = "causality.csv"
)

var (
	trendHeader       = []string{"repo", "tau", "p_value", "s", "n"}
	seasonalityHeader = []string{"repo", "seasonal", "test", "qs_p_value", "kw_p_value", "frequency", "life_span_months"}
	causalityHeader   = []string{"repo", "pass", "n", "differenced", "lag_max", "conf_band", "breach", "var_order", "tested", "causal", "p_value"}
)

// WriteAggregateTables writes the trend, seasonality and causality tables of a run
// into dir. Tables are written even when empty so that a run always leaves all three.
func WriteAggregateTables(dir string, summary *schema.RunSummary, precision int) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	fmtFloat, fmtPValue := createFormatters(precision)

	var errs []error
	tables := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{TrendFile, trendHeader, trendRows(summary.Trend, fmtFloat, fmtPValue)},
		{SeasonalityFile, seasonalityHeader, seasonalityRows(summary.Seasonality, fmtPValue)},
		{CausalityFile, causalityHeader, causalityRows(summary.Causality, fmtFloat, fmtPValue)},
	}
	for _, table := range tables {
		if err := writeCSVFile(filepath.Join(dir, table.name), table.header, table.rows); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func trendRows(results []schema.TrendResult, fmtFloat, fmtPValue func(float64) string) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			r.Repo,
			fmtFloat(r.Tau),
			fmtPValue(r.PValue),
			strconv.FormatFloat(r.Score, 'f', 0, 64),
			strconv.Itoa(r.N),
		})
	}
	return rows
}

func seasonalityRows(results []schema.SeasonalityResult, fmtPValue func(float64) string) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			r.Repo,
			strconv.FormatBool(r.Seasonal),
			string(r.Test),
			fmtPValue(r.QSPValue),
			fmtPValue(r.KWPValue),
			strconv.Itoa(r.Frequency),
			strconv.Itoa(r.LifeSpanMonths),
		})
	}
	return rows
}

func causalityRows(results []schema.CausalityResult, fmtFloat, fmtPValue func(float64) string) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			r.Repo,
			string(r.Pass),
			strconv.Itoa(r.N),
			strconv.FormatBool(r.Differenced),
			strconv.Itoa(r.LagMax),
			fmtFloat(r.ConfBand),
			strconv.FormatBool(r.Breach),
			strconv.Itoa(r.VAROrder),
			strconv.FormatBool(r.Tested),
			strconv.FormatBool(r.Causal),
			fmtPValue(r.PValue),
		})
	}
	return rows
}

// jsonTrend, jsonSeasonality and jsonCausality mirror the result types with
// nullable floats, since encoding/json rejects NaN.
type jsonTrend struct {
	Repo   string   `json:"repo"`
	Tau    *float64 `json:"tau"`
	PValue *float64 `json:"p_value"`
	Score  float64  `json:"s"`
	N      int      `json:"n"`
}

type jsonSeasonality struct {
	Repo           string                 `json:"repo"`
	Seasonal       bool                   `json:"seasonal"`
	Test           schema.SeasonalityTest `json:"test"`
	QSPValue       *float64               `json:"qs_p_value"`
	KWPValue       *float64               `json:"kw_p_value"`
	Frequency      int                    `json:"frequency"`
	LifeSpanMonths int                    `json:"life_span_months"`
}

type jsonCausality struct {
	Repo         string                 `json:"repo"`
	Pass         schema.CorrelationPass `json:"pass"`
	N            int                    `json:"n"`
	Differenced  bool                   `json:"differenced"`
	LagMax       int                    `json:"lag_max"`
	ConfBand     *float64               `json:"conf_band"`
	Breach       bool                   `json:"breach"`
	VAROrder     int                    `json:"var_order"`
	Tested       bool                   `json:"tested"`
	Causal       bool                   `json:"causal"`
	PValue       *float64               `json:"p_value"`
	Coefficients []*float64             `json:"ccf,omitempty"`
}

func toJSONTrend(r *schema.TrendResult) *jsonTrend {
	if r == nil {
		return nil
	}
	return &jsonTrend{Repo: r.Repo, Tau: optionalFloat(r.Tau), PValue: optionalFloat(r.PValue), Score: r.Score, N: r.N}
}

func toJSONSeasonality(r *schema.SeasonalityResult) *jsonSeasonality {
	if r == nil {
		return nil
	}
	return &jsonSeasonality{
		Repo:           r.Repo,
		Seasonal:       r.Seasonal,
		Test:           r.Test,
		QSPValue:       optionalFloat(r.QSPValue),
		KWPValue:       optionalFloat(r.KWPValue),
		Frequency:      r.Frequency,
		LifeSpanMonths: r.LifeSpanMonths,
	}
}

func toJSONCausality(results []schema.CausalityResult) []jsonCausality {
	out := make([]jsonCausality, 0, len(results))
	for _, r := range results {
		var coefficients []*float64
		for _, c := range r.Coefficients {
			coefficients = append(coefficients, optionalFloat(c))
		}
		out = append(out, jsonCausality{
			Repo:         r.Repo,
			Pass:         r.Pass,
			N:            r.N,
			Differenced:  r.Differenced,
			LagMax:       r.LagMax,
			ConfBand:     optionalFloat(r.ConfBand),
			Breach:       r.Breach,
			VAROrder:     r.VAROrder,
			Tested:       r.Tested,
			Causal:       r.Causal,
			PValue:       optionalFloat(r.PValue),
			Coefficients: coefficients,
		})
	}
	return out
}

// tableRowCount describes the sizes of the aggregate tables for the summary footer.
func tableRowCount(summary *schema.RunSummary) string {
	return fmt.Sprintf("trend %d, seasonality %d, causality %d",
		len(summary.Trend), len(summary.Seasonality), len(summary.Causality))
}
