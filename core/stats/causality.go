package stats

import (
	"errors"
	"fmt"
	"math"

	"github.com/huangsam/debtlens/schema"
	"gonum.org/v1/gonum/floats"
)

// MinCorrelationPoints is the shortest series the correlation step accepts.
const MinCorrelationPoints = 10

const flatTolerance = 1e-9

// CorrelationOutcome is one correlation and causality pass between a leading
// series x and a response y.
type CorrelationOutcome struct {
	N            int
	Differenced  bool
	ADFX         ADFResult
	ADFY         ADFResult
	LagMax       int
	Band         float64
	Coefficients []float64
	Breach       bool
	VAROrder     int
	Tested       bool
	Causal       bool
	Granger      GrangerResult
}

// Correlate standardizes both series, differences them once when either fails the
// ADF test at alpha, computes their cross-correlation and, when a lag where x leads
// y breaches the white noise band, tests whether x Granger-causes y at the VAR order
// chosen by AIC.
func Correlate(x, y []float64, alpha float64) (CorrelationOutcome, error) {
	if len(x) != len(y) {
		return CorrelationOutcome{}, fmt.Errorf("series lengths differ: %d and %d", len(x), len(y))
	}
	if len(x) < MinCorrelationPoints {
		return CorrelationOutcome{}, schema.ErrInsufficientData
	}

	zx, err := Standardize(x)
	if err != nil {
		return CorrelationOutcome{}, fmt.Errorf("leading series: %w", err)
	}
	zy, err := Standardize(y)
	if err != nil {
		return CorrelationOutcome{}, fmt.Errorf("response series: %w", err)
	}

	var out CorrelationOutcome
	var rootX, rootY bool
	if out.ADFX, rootX, err = unitRoot(zx, alpha); err != nil {
		return out, fmt.Errorf("adf on leading series: %w", err)
	}
	if out.ADFY, rootY, err = unitRoot(zy, alpha); err != nil {
		return out, fmt.Errorf("adf on response series: %w", err)
	}
	if rootX || rootY {
		dx, dy := difference(zx), difference(zy)
		if flat(dx) || flat(dy) {
			return out, fmt.Errorf("differenced series: %w", schema.ErrConstantSeries)
		}
		zx, zy = dx, dy
		out.Differenced = true
	}

	out.N = len(zx)
	out.LagMax = DefaultLagMax(out.N)
	out.Band = ConfidenceBand(out.N, alpha)
	if out.Coefficients, err = CrossCorrelation(zx, zy, out.LagMax); err != nil {
		return out, fmt.Errorf("cross-correlation: %w", err)
	}
	out.Breach = LeadingBreach(out.Coefficients, out.LagMax, out.Band)
	if !out.Breach {
		return out, nil
	}

	if out.VAROrder, err = SelectVAROrder(zx, zy, out.LagMax); err != nil {
		if isDegenerate(err) {
			return out, nil
		}
		return out, fmt.Errorf("var order selection: %w", err)
	}
	if out.Granger, err = Granger(zy, zx, out.VAROrder); err != nil {
		if isDegenerate(err) {
			return out, nil
		}
		return out, fmt.Errorf("granger test: %w", err)
	}
	out.Tested = true
	out.Causal = out.Granger.PValue < alpha
	return out, nil
}

// flat reports whether a standardized series varies by no more than rounding error.
func flat(z []float64) bool {
	return len(z) == 0 || floats.Max(z)-floats.Min(z) <= flatTolerance
}

// unitRoot runs the ADF test and reports whether a unit root remains at alpha.
// Deterministic series, whose regression fits exactly, cast no vote and get a NaN p-value.
func unitRoot(z []float64, alpha float64) (ADFResult, bool, error) {
	res, err := ADF(z)
	if err == nil {
		return res, !res.IsStationary(alpha), nil
	}
	if isDegenerate(err) {
		return ADFResult{Statistic: math.NaN(), PValue: math.NaN(), Lag: DefaultADFLag(len(z))}, false, nil
	}
	return res, false, err
}

// isDegenerate reports whether a regression failed because the data is exactly collinear.
func isDegenerate(err error) bool {
	return errors.Is(err, ErrSingularDesign) || errors.Is(err, schema.ErrConstantSeries)
}

func difference(x []float64) []float64 {
	out := make([]float64, len(x)-1)
	for i := range out {
		out[i] = x[i+1] - x[i]
	}
	return out
}
