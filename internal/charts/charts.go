// Package charts renders the per-repository PNG charts with gonum/plot.
package charts

import (
	"errors"
	"fmt"
	"image/color"
	"path/filepath"
	"time"

	"github.com/huangsam/debtlens/schema"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Chart file names.
const (
	TDByDateFile        = "td_by_date.png"
	TDByCommitFile      = "td_by_commit.png"
	TDZoomFile          = "td_zoom.png"
	TDSmoothFile        = "td_smooth.png"
	TDDecompositionFile = "td_decomposition.png"
	CCFFilePrefix       = "ccf_"
)

const (
	chartWidth  = 10 * vg.Inch
	chartHeight = 5 * vg.Inch
	dateFormat  = "2006-01"
)

var (
	debtColor   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	commitColor = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	smoothColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	bandColor   = color.RGBA{R: 120, G: 120, B: 120, A: 255}
)

// Decomposition is a seasonal decomposition to draw as stacked panels.
type Decomposition struct {
	Period    int
	Trend     []float64
	Seasonal  []float64
	Remainder []float64
}

// RepoCharts is everything the charts of one repository are drawn from.
// Missing parts skip their charts.
type RepoCharts struct {
	Repo          string
	Cleaned       []schema.CommitRecord
	Debt          schema.DailySeries
	Smooth        []float64
	Zoom          *schema.ZoomWindow
	Decomposition *Decomposition
	Causality     []schema.CausalityResult
}

// RenderRepo draws every chart the data allows into dir. Each chart is attempted
// even if an earlier one fails; the errors are joined.
func RenderRepo(dir string, c RepoCharts) error {
	var errs []error
	save := func(name string, p *plot.Plot, err error) {
		if err == nil && p != nil {
			err = p.Save(chartWidth, chartHeight, filepath.Join(dir, name))
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	if c.Debt.Len() > 0 {
		p, err := DebtByDate(c.Repo, c.Debt, c.Cleaned)
		save(TDByDateFile, p, err)
	}
	if len(c.Cleaned) > 0 {
		p, err := DebtByCommit(c.Repo, c.Cleaned)
		save(TDByCommitFile, p, err)
	}
	if c.Zoom != nil {
		if p, err := DebtZoom(*c.Zoom, c.Cleaned); !errors.Is(err, schema.ErrNoData) {
			save(TDZoomFile, p, err)
		}
	}
	if c.Debt.Len() > 0 && len(c.Smooth) == c.Debt.Len() {
		p, err := DebtSmooth(c.Repo, c.Debt, c.Smooth)
		save(TDSmoothFile, p, err)
	}
	if c.Decomposition != nil {
		if err := SaveDecomposition(filepath.Join(dir, TDDecompositionFile), c.Repo, c.Debt.Start, *c.Decomposition); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", TDDecompositionFile, err))
		}
	}
	for _, res := range c.Causality {
		p, err := CrossCorrelation(res)
		save(CCFFilePrefix+string(res.Pass)+".png", p, err)
	}
	return errors.Join(errs...)
}

// DebtByDate plots the daily technical debt series with the commits on top.
func DebtByDate(repo string, debt schema.DailySeries, cleaned []schema.CommitRecord) (*plot.Plot, error) {
	p := newTimePlot(repo+": technical debt by date", "SQALE index")
	line, err := plotter.NewLine(dailyXYs(debt))
	if err != nil {
		return nil, err
	}
	line.Color = debtColor
	points, err := commitScatter(cleaned)
	if err != nil {
		return nil, err
	}
	p.Add(plotter.NewGrid(), line, points)
	p.Legend.Add("daily", line)
	p.Legend.Add("commits", points)
	return p, nil
}

// DebtByCommit plots technical debt against the commit sequence number.
func DebtByCommit(repo string, cleaned []schema.CommitRecord) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = repo + ": technical debt by commit"
	p.X.Label.Text = "commit"
	p.Y.Label.Text = "SQALE index"

	xys := make(plotter.XYs, len(cleaned))
	for i, rec := range cleaned {
		xys[i] = plotter.XY{X: float64(i), Y: rec.Debt}
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, err
	}
	line.Color = debtColor
	p.Add(plotter.NewGrid(), line)
	return p, nil
}

// DebtZoom plots the commits inside a zoom window. It returns ErrNoData when the
// window holds no commit.
func DebtZoom(window schema.ZoomWindow, cleaned []schema.CommitRecord) (*plot.Plot, error) {
	var inside []schema.CommitRecord
	for _, rec := range cleaned {
		if window.Contains(rec.Date) {
			inside = append(inside, rec)
		}
	}
	if len(inside) == 0 {
		return nil, schema.ErrNoData
	}

	p := newTimePlot(fmt.Sprintf("%s: technical debt from %s to %s", window.Repo,
		window.From.Format(time.DateOnly), window.To.Format(time.DateOnly)), "SQALE index")
	xys := commitXYs(inside)
	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, err
	}
	line.Color = debtColor
	points, err := commitScatter(inside)
	if err != nil {
		return nil, err
	}
	p.Add(plotter.NewGrid(), line, points)
	return p, nil
}

// DebtSmooth plots the daily series with its loess smoothing.
func DebtSmooth(repo string, debt schema.DailySeries, smooth []float64) (*plot.Plot, error) {
	p := newTimePlot(repo+": smoothed technical debt", "SQALE index")
	raw, err := plotter.NewScatter(dailyXYs(debt))
	if err != nil {
		return nil, err
	}
	raw.GlyphStyle.Color = debtColor
	raw.GlyphStyle.Radius = vg.Points(1)

	fit, err := plotter.NewLine(dailyXYs(schema.DailySeries{Start: debt.Start, Values: smooth}))
	if err != nil {
		return nil, err
	}
	fit.Color = smoothColor
	fit.Width = vg.Points(2)

	p.Add(plotter.NewGrid(), raw, fit)
	p.Legend.Add("daily", raw)
	p.Legend.Add("loess", fit)
	return p, nil
}

// CrossCorrelation plots the coefficients of a correlation pass against their lag,
// with the white noise band as dashed lines.
func CrossCorrelation(res schema.CausalityResult) (*plot.Plot, error) {
	if len(res.Coefficients) == 0 {
		return nil, schema.ErrNoData
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s: CCF microservices vs %s", res.Repo, passLabel(res.Pass))
	p.X.Label.Text = "lag (days, negative: microservices lead)"
	p.Y.Label.Text = "correlation"

	bars, err := plotter.NewBarChart(plotter.Values(res.Coefficients), vg.Points(3))
	if err != nil {
		return nil, err
	}
	bars.XMin = float64(-res.LagMax)
	bars.Color = debtColor
	bars.LineStyle.Width = 0

	upper := bandLine(res.ConfBand, res.LagMax)
	lower := bandLine(-res.ConfBand, res.LagMax)
	p.Add(plotter.NewGrid(), bars, upper, lower)
	p.Legend.Add(fmt.Sprintf("band ±%.3f", res.ConfBand), upper)
	return p, nil
}

func passLabel(pass schema.CorrelationPass) string {
	if pass == schema.DebtDerivativePass {
		return "technical debt derivative"
	}
	return "technical debt"
}

func bandLine(level float64, lagMax int) *plotter.Function {
	f := plotter.NewFunction(func(float64) float64 { return level })
	f.XMin = float64(-lagMax)
	f.XMax = float64(lagMax)
	f.Color = bandColor
	f.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	return f
}

func newTimePlot(title, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "date"
	p.Y.Label.Text = yLabel
	p.X.Tick.Marker = plot.TimeTicks{Format: dateFormat}
	return p
}

func dailyXYs(series schema.DailySeries) plotter.XYs {
	xys := make(plotter.XYs, series.Len())
	for i, v := range series.Values {
		xys[i] = plotter.XY{X: float64(series.DateAt(i).Unix()), Y: v}
	}
	return xys
}

func commitXYs(records []schema.CommitRecord) plotter.XYs {
	xys := make(plotter.XYs, len(records))
	for i, rec := range records {
		xys[i] = plotter.XY{X: float64(rec.Date.Unix()), Y: rec.Debt}
	}
	return xys
}

func commitScatter(records []schema.CommitRecord) (*plotter.Scatter, error) {
	s, err := plotter.NewScatter(commitXYs(records))
	if err != nil {
		return nil, err
	}
	s.GlyphStyle.Color = commitColor
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	s.GlyphStyle.Radius = vg.Points(2)
	return s, nil
}
