package charts

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/debtlens/schema"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// SaveDecomposition writes the trend, seasonal and remainder components as three
// stacked panels sharing the date axis.
func SaveDecomposition(path, repo string, start time.Time, d Decomposition) error {
	n := len(d.Trend)
	if n == 0 || len(d.Seasonal) != n || len(d.Remainder) != n {
		return fmt.Errorf("decomposition components differ in length: %w", schema.ErrInsufficientData)
	}

	panels := []struct {
		name   string
		values []float64
	}{
		{"trend", d.Trend},
		{"seasonal", d.Seasonal},
		{"remainder", d.Remainder},
	}
	plots := make([][]*plot.Plot, len(panels))
	for i, panel := range panels {
		p := newTimePlot("", panel.name)
		if i == 0 {
			p.Title.Text = fmt.Sprintf("%s: decomposition (period %d days)", repo, d.Period)
		}
		if i < len(panels)-1 {
			p.X.Label.Text = ""
		}
		line, err := plotter.NewLine(dailyXYs(schema.DailySeries{Start: start, Values: panel.values}))
		if err != nil {
			return fmt.Errorf("%s panel: %w", panel.name, err)
		}
		line.Color = debtColor
		p.Add(plotter.NewGrid(), line)
		plots[i] = []*plot.Plot{p}
	}

	img := vgimg.New(chartWidth, 3*chartHeight/2)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: len(panels),
		Cols: 1,
		PadX: vg.Millimeter,
		PadY: vg.Millimeter,
	}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
