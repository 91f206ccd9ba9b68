package stats

import (
	"math"

	"github.com/huangsam/debtlens/schema"
)

// ADFResult is the outcome of an augmented Dickey-Fuller unit root test.
// A small p-value rejects the unit root, i.e. the series is stationary.
type ADFResult struct {
	Statistic float64
	PValue    float64
	Lag       int
}

// Critical values of the Dickey-Fuller test with constant and trend (negated),
// one row per p-level, one column per sample size.
var (
	adfSampleSizes = []float64{25, 50, 100, 250, 500, 100000}
	adfPLevels     = []float64{0.01, 0.025, 0.05, 0.10, 0.90, 0.95, 0.975, 0.99}
	adfCritical    = [][]float64{
		{4.38, 4.15, 4.04, 3.99, 3.98, 3.96},
		{3.95, 3.80, 3.73, 3.69, 3.68, 3.66},
		{3.60, 3.50, 3.45, 3.43, 3.42, 3.41},
		{3.24, 3.18, 3.15, 3.13, 3.13, 3.12},
		{1.14, 1.19, 1.22, 1.23, 1.24, 1.25},
		{0.80, 0.87, 0.90, 0.92, 0.93, 0.94},
		{0.50, 0.58, 0.62, 0.64, 0.65, 0.66},
		{0.15, 0.24, 0.28, 0.31, 0.32, 0.33},
	}
)

// DefaultADFLag returns the default lag order trunc((n-1)^(1/3)).
func DefaultADFLag(n int) int {
	if n < 2 {
		return 0
	}
	return int(math.Trunc(math.Cbrt(float64(n - 1))))
}

// ADF runs the augmented Dickey-Fuller test with constant and linear trend at the
// default lag order. P-values are interpolated from the Dickey-Fuller table and
// therefore clipped to [0.01, 0.99].
func ADF(x []float64) (ADFResult, error) {
	return ADFWithLag(x, DefaultADFLag(len(x)))
}

// ADFWithLag runs the augmented Dickey-Fuller test with the given lag order.
func ADFWithLag(x []float64, lag int) (ADFResult, error) {
	if lag < 0 {
		lag = 0
	}
	k := lag + 1
	if len(x) < 2 {
		return ADFResult{}, schema.ErrInsufficientData
	}
	y := make([]float64, len(x)-1)
	for i := range y {
		y[i] = x[i+1] - x[i]
	}
	n := len(y)
	// k+2 regressors and at least one residual degree of freedom
	if n-k+1 <= k+2 {
		return ADFResult{}, schema.ErrInsufficientData
	}

	start := k - 1
	rows := n - start
	yt := y[start:]
	xt1 := x[start:n]
	tt := make([]float64, rows)
	for i := range tt {
		tt[i] = float64(start + i + 1)
	}
	cols := [][]float64{ones(rows), xt1, tt}
	for j := 1; j < k; j++ {
		cols = append(cols, lagged(y, start, j))
	}

	fit, err := fitOLS(designMatrix(cols...), yt, true)
	if err != nil {
		return ADFResult{}, err
	}
	if perfectFit(fit, yt) || fit.SE[1] == 0 || math.IsNaN(fit.SE[1]) {
		return ADFResult{}, schema.ErrConstantSeries
	}
	stat := fit.Coef[1] / fit.SE[1]

	interpolated := make([]float64, len(adfPLevels))
	for i, row := range adfCritical {
		neg := make([]float64, len(row))
		for j, v := range row {
			neg[j] = -v
		}
		interpolated[i] = approx(adfSampleSizes, neg, float64(n))
	}
	return ADFResult{
		Statistic: stat,
		PValue:    approx(interpolated, adfPLevels, stat),
		Lag:       lag,
	}, nil
}

// IsStationary reports whether the ADF test rejects a unit root at alpha.
func (r ADFResult) IsStationary(alpha float64) bool {
	return r.PValue <= alpha
}
