// Package stats implements the time series tests behind the technical debt analysis:
// Mann-Kendall trend, augmented Dickey-Fuller, cross-correlation, VAR order selection,
// Granger causality, seasonality tests and STL decomposition.
package stats

import (
	"math"

	"github.com/huangsam/debtlens/schema"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Standardize rescales x to zero mean and unit sample variance.
func Standardize(x []float64) ([]float64, error) {
	if len(x) < 2 {
		return nil, schema.ErrInsufficientData
	}
	if IsConstant(x) {
		return nil, schema.ErrConstantSeries
	}
	mean, sd := stat.MeanStdDev(x, nil)
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - mean) / sd
	}
	return out, nil
}

// IsConstant reports whether every value of x is the same.
func IsConstant(x []float64) bool {
	if len(x) == 0 {
		return true
	}
	return floats.Max(x) == floats.Min(x)
}

// NormalQuantile returns the standard normal quantile of p.
func NormalQuantile(p float64) float64 {
	return distuv.UnitNormal.Quantile(p)
}

// chiSquaredPValue returns the upper tail probability of a chi-squared statistic.
func chiSquaredPValue(q, df float64) float64 {
	if df <= 0 || math.IsNaN(q) {
		return math.NaN()
	}
	if q <= 0 {
		return 1
	}
	return 1 - distuv.ChiSquared{K: df}.CDF(q)
}

// approx linearly interpolates y at x over ascending xs, clamping to the end values
// outside the range.
func approx(xs, ys []float64, x float64) float64 {
	n := len(xs)
	if x <= xs[0] {
		return ys[0]
	}
	if x >= xs[n-1] {
		return ys[n-1]
	}
	for i := 1; i < n; i++ {
		if x <= xs[i] {
			t := (x - xs[i-1]) / (xs[i] - xs[i-1])
			return ys[i-1] + t*(ys[i]-ys[i-1])
		}
	}
	return ys[n-1]
}

// lagged returns the column of x shifted back by lag for rows start..len(x)-1.
func lagged(x []float64, start, lag int) []float64 {
	out := make([]float64, len(x)-start)
	for t := start; t < len(x); t++ {
		out[t-start] = x[t-lag]
	}
	return out
}
