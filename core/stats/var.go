package stats

import (
	"fmt"
	"math"
	"slices"

	"github.com/huangsam/debtlens/schema"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// GrangerResult is the outcome of an F test that lags of x help predict y.
type GrangerResult struct {
	Order  int
	F      float64
	DF1    int
	DF2    int
	PValue float64
}

// feasibleOrder caps a VAR lag order so every candidate regression keeps enough
// degrees of freedom: the common sample must exceed twice the regressors of an equation.
func feasibleOrder(n, k, maxOrder int) int {
	p := maxOrder
	for p > 1 && n-p <= 2*(k*p+1) {
		p--
	}
	return p
}

// SelectVAROrder picks the lag order of a bivariate VAR with constant that minimizes
// AIC = ln det(Sigma) + 2pK^2/T over 1..maxOrder. All candidates share the sample
// that remains after dropping the first maxOrder observations.
func SelectVAROrder(x, y []float64, maxOrder int) (int, error) {
	n := len(x)
	if n != len(y) {
		return 0, fmt.Errorf("series lengths differ: %d and %d", n, len(y))
	}
	const k = 2
	maxOrder = feasibleOrder(n, k, max(1, maxOrder))
	sample := n - maxOrder
	if sample <= 2*(k*maxOrder+1) {
		return 0, schema.ErrInsufficientData
	}

	yx := x[maxOrder:]
	yy := y[maxOrder:]
	best, bestAIC := 0, math.Inf(1)
	for p := 1; p <= maxOrder; p++ {
		cols := [][]float64{ones(sample)}
		for lag := 1; lag <= p; lag++ {
			cols = append(cols, lagged(x, maxOrder, lag), lagged(y, maxOrder, lag))
		}
		design := designMatrix(cols...)
		fx, err := fitOLS(design, yx, false)
		if err != nil {
			continue
		}
		fy, err := fitOLS(design, yy, false)
		if err != nil {
			continue
		}
		if perfectFit(fx, yx) || perfectFit(fy, yy) {
			continue
		}

		sigma := mat.NewSymDense(k, []float64{
			dot(fx.Resid, fx.Resid), dot(fx.Resid, fy.Resid),
			dot(fy.Resid, fx.Resid), dot(fy.Resid, fy.Resid),
		})
		sigma.ScaleSym(1/float64(sample), sigma)
		det := mat.Det(sigma)
		if det <= 0 || math.IsNaN(det) {
			continue
		}
		aic := math.Log(det) + 2*float64(p*k*k)/float64(sample)
		if aic < bestAIC {
			best, bestAIC = p, aic
		}
	}
	if best == 0 {
		return 0, ErrSingularDesign
	}
	return best, nil
}

// Granger tests whether lags 1..order of x improve a regression of y on its own
// lags 1..order and a constant. A small p-value means x Granger-causes y.
func Granger(y, x []float64, order int) (GrangerResult, error) {
	n := len(y)
	if n != len(x) {
		return GrangerResult{}, fmt.Errorf("series lengths differ: %d and %d", n, len(x))
	}
	if order < 1 {
		return GrangerResult{}, fmt.Errorf("order must be positive, got %d", order)
	}
	sample := n - order
	df2 := sample - 2*order - 1
	if df2 < 1 {
		return GrangerResult{}, schema.ErrInsufficientData
	}

	restricted := [][]float64{ones(sample)}
	for lag := 1; lag <= order; lag++ {
		restricted = append(restricted, lagged(y, order, lag))
	}
	unrestricted := slices.Clone(restricted)
	for lag := 1; lag <= order; lag++ {
		unrestricted = append(unrestricted, lagged(x, order, lag))
	}

	target := y[order:]
	fr, err := fitOLS(designMatrix(restricted...), target, false)
	if err != nil {
		return GrangerResult{}, err
	}
	fu, err := fitOLS(designMatrix(unrestricted...), target, false)
	if err != nil {
		return GrangerResult{}, err
	}

	res := GrangerResult{Order: order, DF1: order, DF2: df2, PValue: 1}
	if perfectFit(fu, target) {
		return res, schema.ErrConstantSeries
	}
	res.F = ((fr.RSS - fu.RSS) / float64(order)) / (fu.RSS / float64(df2))
	if res.F > 0 {
		res.PValue = 1 - distuv.F{D1: float64(order), D2: float64(df2)}.CDF(res.F)
	}
	return res, nil
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
