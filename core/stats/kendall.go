package stats

import (
	"math"
	"slices"

	"github.com/huangsam/debtlens/schema"
	"gonum.org/v1/gonum/stat/distuv"
)

// MannKendallResult is the outcome of a Mann-Kendall monotonic trend test.
type MannKendallResult struct {
	S      float64 // Kendall score
	VarS   float64 // Variance of S under the null, tie corrected
	Z      float64 // Continuity corrected normal statistic
	Tau    float64 // Kendall rank correlation with time, in [-1, 1]
	PValue float64 // Two-sided
	N      int
}

// MannKendall tests x, in chronological order, for a monotonic trend.
func MannKendall(x []float64) (MannKendallResult, error) {
	n := len(x)
	if n < 3 {
		return MannKendallResult{}, schema.ErrInsufficientData
	}

	var s float64
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			switch {
			case x[j] > x[i]:
				s++
			case x[j] < x[i]:
				s--
			}
		}
	}

	fn := float64(n)
	varS := fn * (fn - 1) * (2*fn + 5)
	tiePairs := 0.0
	for _, t := range tieGroups(x) {
		ft := float64(t)
		varS -= ft * (ft - 1) * (2*ft + 5)
		tiePairs += ft * (ft - 1) / 2
	}
	varS /= 18

	res := MannKendallResult{S: s, VarS: varS, N: n, PValue: 1}
	pairs := fn * (fn - 1) / 2
	if denom := math.Sqrt((pairs - tiePairs) * pairs); denom > 0 {
		res.Tau = s / denom
	}
	if varS <= 0 {
		return res, nil
	}

	switch {
	case s > 0:
		res.Z = (s - 1) / math.Sqrt(varS)
	case s < 0:
		res.Z = (s + 1) / math.Sqrt(varS)
	}
	res.PValue = math.Min(1, 2*distuv.UnitNormal.Survival(math.Abs(res.Z)))
	return res, nil
}

// tieGroups returns the sizes of groups of equal values larger than one.
func tieGroups(x []float64) []int {
	sorted := slices.Clone(x)
	slices.Sort(sorted)
	var groups []int
	run := 1
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && sorted[i] == sorted[i-1] {
			run++
			continue
		}
		if run > 1 {
			groups = append(groups, run)
		}
		run = 1
	}
	return groups
}
