package stats

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrSingularDesign is returned when a regression has collinear regressors.
var ErrSingularDesign = errors.New("singular regression design")

// olsFit holds an ordinary least squares fit.
type olsFit struct {
	Coef  []float64
	Resid []float64
	RSS   float64
	SE    []float64 // Only filled when requested
	DF    int       // Residual degrees of freedom
}

// designMatrix builds a row-major matrix from columns of equal length.
func designMatrix(cols ...[]float64) *mat.Dense {
	rows := len(cols[0])
	m := mat.NewDense(rows, len(cols), nil)
	for j, col := range cols {
		for i, v := range col {
			m.Set(i, j, v)
		}
	}
	return m
}

// ones returns a constant regressor of length n.
func ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

// fitOLS regresses y on the columns of x.
func fitOLS(x *mat.Dense, y []float64, withSE bool) (olsFit, error) {
	rows, cols := x.Dims()
	if rows != len(y) {
		return olsFit{}, fmt.Errorf("design has %d rows, response has %d", rows, len(y))
	}
	if rows <= cols {
		return olsFit{}, fmt.Errorf("%d observations for %d regressors: %w", rows, cols, ErrSingularDesign)
	}

	yv := mat.NewVecDense(rows, y)
	var beta mat.VecDense
	if err := beta.SolveVec(x, yv); err != nil {
		return olsFit{}, fmt.Errorf("%w: %v", ErrSingularDesign, err)
	}

	var fitted mat.VecDense
	fitted.MulVec(x, &beta)
	fit := olsFit{
		Coef:  make([]float64, cols),
		Resid: make([]float64, rows),
		DF:    rows - cols,
	}
	for j := range cols {
		fit.Coef[j] = beta.AtVec(j)
	}
	for i := range rows {
		r := y[i] - fitted.AtVec(i)
		fit.Resid[i] = r
		fit.RSS += r * r
	}
	if !withSE {
		return fit, nil
	}

	var xtx, inv mat.Dense
	xtx.Mul(x.T(), x)
	if err := inv.Inverse(&xtx); err != nil {
		return olsFit{}, fmt.Errorf("%w: %v", ErrSingularDesign, err)
	}
	sigma2 := fit.RSS / float64(fit.DF)
	fit.SE = make([]float64, cols)
	for j := range cols {
		fit.SE[j] = math.Sqrt(sigma2 * inv.At(j, j))
	}
	return fit, nil
}

// perfectFit reports whether a fit leaves no residual variation in y, which makes
// its test statistics meaningless.
func perfectFit(fit olsFit, y []float64) bool {
	mean := 0.0
	for _, v := range y {
		mean += v
	}
	mean /= float64(len(y))
	var tss float64
	for _, v := range y {
		tss += (v - mean) * (v - mean)
	}
	return tss == 0 || fit.RSS <= 1e-10*tss
}
