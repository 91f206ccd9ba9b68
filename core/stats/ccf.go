package stats

import (
	"math"

	"github.com/huangsam/debtlens/schema"
	"gonum.org/v1/gonum/stat"
)

// DefaultLagMax returns floor(10*log10(n/2)) capped at n-1, the default number of
// lags for the cross-correlation of two series of length n.
func DefaultLagMax(n int) int {
	if n < 2 {
		return 0
	}
	lag := int(math.Floor(10 * math.Log10(float64(n)/2)))
	return max(0, min(lag, n-1))
}

// ConfidenceBand returns the two-sided white noise band |z(alpha/2)|/sqrt(n).
func ConfidenceBand(n int, alpha float64) float64 {
	return math.Abs(NormalQuantile(alpha/2)) / math.Sqrt(float64(n))
}

// CrossCorrelation returns the sample cross-correlation of x and y for lags
// -lagMax..lagMax. Element i holds lag i-lagMax, the correlation of x[t+lag] with y[t],
// so negative lags are those where x leads y.
func CrossCorrelation(x, y []float64, lagMax int) ([]float64, error) {
	n := len(x)
	if n != len(y) || n < 2 {
		return nil, schema.ErrInsufficientData
	}
	if lagMax > n-1 {
		lagMax = n - 1
	}
	mx, my := stat.Mean(x, nil), stat.Mean(y, nil)
	var cxx, cyy float64
	for t := range n {
		cxx += (x[t] - mx) * (x[t] - mx)
		cyy += (y[t] - my) * (y[t] - my)
	}
	if cxx == 0 || cyy == 0 {
		return nil, schema.ErrConstantSeries
	}
	denom := math.Sqrt(cxx * cyy)

	out := make([]float64, 2*lagMax+1)
	for lag := -lagMax; lag <= lagMax; lag++ {
		var sum float64
		for t := max(0, -lag); t < min(n, n-lag); t++ {
			sum += (x[t+lag] - mx) * (y[t] - my)
		}
		out[lag+lagMax] = sum / denom
	}
	return out, nil
}

// LeadingBreach reports whether any coefficient at a negative lag, where x leads y,
// falls outside the band.
func LeadingBreach(coefficients []float64, lagMax int, band float64) bool {
	for lag := -lagMax; lag < 0; lag++ {
		if math.Abs(coefficients[lag+lagMax]) > band {
			return true
		}
	}
	return false
}
