package stats

import (
	"fmt"
	"math"
	"slices"

	"github.com/huangsam/debtlens/schema"
	"gonum.org/v1/gonum/stat"
)

// Significance levels of the seasonality tests.
const (
	QSAlpha         = 0.01
	KWAlpha         = 0.01
	CombinedKWAlpha = 0.002
)

// SeasonalityOutcome is the result of a seasonality test on a differenced series.
// P-values of tests that did not run are NaN.
type SeasonalityOutcome struct {
	Seasonal bool
	QS       float64
	QSPValue float64
	KW       float64
	KWPValue float64
}

// Autocorrelation returns the sample autocorrelation of x at lag.
func Autocorrelation(x []float64, lag int) (float64, error) {
	n := len(x)
	if lag < 0 || lag >= n {
		return 0, schema.ErrInsufficientData
	}
	mean := stat.Mean(x, nil)
	var num, den float64
	for t := range n {
		d := x[t] - mean
		den += d * d
		if t+lag < n {
			num += d * (x[t+lag] - mean)
		}
	}
	if den == 0 {
		return 0, schema.ErrConstantSeries
	}
	return num / den, nil
}

// QS computes the QS statistic for seasonality at the given frequency, built from
// the positive autocorrelations at one and two seasonal lags. Under the null it
// follows a chi-squared distribution with two degrees of freedom.
func QS(x []float64, freq int) (qs, pValue float64, err error) {
	n := len(x)
	if n <= freq+1 {
		return 0, math.NaN(), schema.ErrInsufficientData
	}
	rho1, err := Autocorrelation(x, freq)
	if err != nil {
		return 0, math.NaN(), err
	}
	if rho1 <= 0 {
		return 0, 1, nil
	}
	fn := float64(n)
	qs = rho1 * rho1 / (fn - float64(freq))
	if n > 2*freq {
		rho2, err := Autocorrelation(x, 2*freq)
		if err != nil {
			return 0, math.NaN(), err
		}
		rho2 = math.Max(0, rho2)
		qs += rho2 * rho2 / (fn - float64(2*freq))
	}
	qs *= fn * (fn + 2)
	return qs, chiSquaredPValue(qs, 2), nil
}

// KruskalWallis tests whether the values of x differ by position in the seasonal
// cycle, grouping observation t under t mod freq. Ties get average ranks and the
// statistic is tie corrected.
func KruskalWallis(x []float64, freq int) (h, pValue float64, err error) {
	n := len(x)
	if freq < 2 || n < 2*freq {
		return 0, math.NaN(), schema.ErrInsufficientData
	}

	ranks := averageRanks(x)
	sums := make([]float64, freq)
	counts := make([]int, freq)
	for t, r := range ranks {
		sums[t%freq] += r
		counts[t%freq]++
	}

	fn := float64(n)
	groups := 0
	for g := range freq {
		if counts[g] == 0 {
			continue
		}
		groups++
		h += sums[g] * sums[g] / float64(counts[g])
	}
	h = 12/(fn*(fn+1))*h - 3*(fn+1)

	ties := 0.0
	for _, t := range tieGroups(x) {
		ft := float64(t)
		ties += ft*ft*ft - ft
	}
	correction := 1 - ties/(fn*fn*fn-fn)
	if correction <= 0 {
		return 0, 1, nil
	}
	h /= correction
	return h, chiSquaredPValue(h, float64(groups-1)), nil
}

// TestSeasonality runs the chosen seasonality test on the first difference of a
// series. The combined test flags seasonality when QS is significant at 1% or
// Kruskal-Wallis at 0.2%.
func TestSeasonality(series []float64, freq int, test schema.SeasonalityTest) (SeasonalityOutcome, error) {
	y := make([]float64, 0, len(series))
	for i := 1; i < len(series); i++ {
		y = append(y, series[i]-series[i-1])
	}
	if len(y) < 2*freq {
		return SeasonalityOutcome{}, schema.ErrInsufficientData
	}

	out := SeasonalityOutcome{QSPValue: math.NaN(), KWPValue: math.NaN()}
	if IsConstant(y) {
		// A constant difference carries no seasonal signal
		out.QSPValue, out.KWPValue = 1, 1
		return out, nil
	}

	var err error
	if test == schema.CombinedTest || test == schema.QSTest {
		if out.QS, out.QSPValue, err = QS(y, freq); err != nil {
			return out, fmt.Errorf("qs test: %w", err)
		}
	}
	if test == schema.CombinedTest || test == schema.KWTest {
		if out.KW, out.KWPValue, err = KruskalWallis(y, freq); err != nil {
			return out, fmt.Errorf("kruskal-wallis test: %w", err)
		}
	}

	switch test {
	case schema.QSTest:
		out.Seasonal = out.QSPValue < QSAlpha
	case schema.KWTest:
		out.Seasonal = out.KWPValue < KWAlpha
	case schema.CombinedTest:
		out.Seasonal = out.QSPValue < QSAlpha || out.KWPValue < CombinedKWAlpha
	default:
		return out, fmt.Errorf("unknown seasonality test %q", test)
	}
	return out, nil
}

// averageRanks returns 1-based ranks with ties sharing their average rank.
func averageRanks(x []float64) []float64 {
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		switch {
		case x[a] < x[b]:
			return -1
		case x[a] > x[b]:
			return 1
		}
		return 0
	})

	ranks := make([]float64, len(x))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && x[idx[j+1]] == x[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}
	return ranks
}
