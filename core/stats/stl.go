package stats

import (
	"math"

	"github.com/huangsam/debtlens/schema"
)

// Decomposition splits a series into trend, seasonal and remainder components
// such that Series = Trend + Seasonal + Remainder.
type Decomposition struct {
	Period    int
	Series    []float64
	Trend     []float64
	Seasonal  []float64
	Remainder []float64
}

// stlInnerLoops is the number of inner iterations without robustness weights.
const stlInnerLoops = 2

// nextOdd rounds x up to an odd integer.
func nextOdd(x float64) int {
	v := int(math.Round(x))
	if v%2 == 0 {
		v++
	}
	return v
}

// STL performs a seasonal-trend decomposition by loess with a periodic seasonal
// component: the seasonal value depends only on the position in the cycle.
func STL(y []float64, period int) (Decomposition, error) {
	n := len(y)
	if period < 2 || n <= 2*period {
		return Decomposition{}, schema.ErrInsufficientData
	}

	// Periodic seasonal window as used by the reference STL
	seasonalWindow := 10*n + 1
	trendWindow := nextOdd(math.Ceil(1.5 * float64(period) / (1 - 1.5/float64(seasonalWindow))))
	lowPassWindow := nextOdd(float64(period))

	trend := make([]float64, n)
	seasonal := make([]float64, n)
	detrended := make([]float64, n)
	deseasoned := make([]float64, n)

	for range stlInnerLoops {
		for i := range n {
			detrended[i] = y[i] - trend[i]
		}

		cycle := cycleSubseriesMeans(detrended, period)
		low := movingAverage(movingAverage(movingAverage(cycle, period), period), 3)
		low = Loess(low, lowPassWindow, 1)

		for i := range n {
			seasonal[i] = cycle[period+i] - low[i]
			deseasoned[i] = y[i] - seasonal[i]
		}
		trend = Loess(deseasoned, trendWindow, 1)
	}

	// Periodic: replace each seasonal value by its cycle position mean
	means := make([]float64, period)
	counts := make([]int, period)
	for i, v := range seasonal {
		means[i%period] += v
		counts[i%period]++
	}
	for p := range period {
		means[p] /= float64(counts[p])
	}

	d := Decomposition{
		Period:    period,
		Series:    y,
		Trend:     trend,
		Seasonal:  make([]float64, n),
		Remainder: make([]float64, n),
	}
	for i := range n {
		d.Seasonal[i] = means[i%period]
		d.Remainder[i] = y[i] - d.Seasonal[i] - trend[i]
	}
	return d, nil
}

// cycleSubseriesMeans smooths every cycle subseries to its mean and extends the
// result by one period on both ends, giving n+2*period values.
func cycleSubseriesMeans(x []float64, period int) []float64 {
	sums := make([]float64, period)
	counts := make([]int, period)
	for i, v := range x {
		sums[i%period] += v
		counts[i%period]++
	}
	out := make([]float64, len(x)+2*period)
	for j := range out {
		p := j % period
		out[j] = sums[p] / float64(counts[p])
	}
	return out
}

// movingAverage returns the len(x)-w+1 means of consecutive windows of w values.
func movingAverage(x []float64, w int) []float64 {
	n := len(x) - w + 1
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	var sum float64
	for i := range w {
		sum += x[i]
	}
	out[0] = sum / float64(w)
	for i := 1; i < n; i++ {
		sum += x[i+w-1] - x[i-1]
		out[i] = sum / float64(w)
	}
	return out
}
