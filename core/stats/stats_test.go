package stats

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/huangsam/debtlens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noise(seed uint64, n int, sd float64) []float64 {
	r := rand.New(rand.NewPCG(seed, seed+1))
	out := make([]float64, n)
	for i := range out {
		out[i] = r.NormFloat64() * sd
	}
	return out
}

func linear(n int, from, to float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = from + (to-from)*float64(i)/float64(n-1)
	}
	return out
}

func TestStandardize(t *testing.T) {
	z, err := Standardize([]float64{2, 4, 6})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{-1, 0, 1}, z, 1e-12)

	_, err = Standardize([]float64{3, 3, 3})
	assert.ErrorIs(t, err, schema.ErrConstantSeries)

	_, err = Standardize([]float64{1})
	assert.ErrorIs(t, err, schema.ErrInsufficientData)
}

func TestMannKendall(t *testing.T) {
	t.Run("strictly increasing", func(t *testing.T) {
		res, err := MannKendall(linear(10, 1, 10))
		require.NoError(t, err)
		assert.Equal(t, 45.0, res.S)
		assert.InDelta(t, 125.0, res.VarS, 1e-9)
		assert.InDelta(t, 1.0, res.Tau, 1e-12)
		assert.InDelta(t, 44/math.Sqrt(125), res.Z, 1e-12)
		assert.Less(t, res.PValue, 0.001)
	})

	t.Run("strictly decreasing", func(t *testing.T) {
		res, err := MannKendall(linear(10, 10, 1))
		require.NoError(t, err)
		assert.InDelta(t, -1.0, res.Tau, 1e-12)
		assert.Less(t, res.PValue, 0.001)
	})

	t.Run("ties", func(t *testing.T) {
		res, err := MannKendall([]float64{1, 1, 2, 3})
		require.NoError(t, err)
		assert.Equal(t, 5.0, res.S)
		assert.InDelta(t, 5/math.Sqrt(30), res.Tau, 1e-12)
		assert.InDelta(t, (4*3*13-2*1*9)/18.0, res.VarS, 1e-12)
	})

	t.Run("constant", func(t *testing.T) {
		res, err := MannKendall([]float64{2, 2, 2, 2})
		require.NoError(t, err)
		assert.Equal(t, 0.0, res.Tau)
		assert.Equal(t, 1.0, res.PValue)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := MannKendall([]float64{1, 2})
		assert.ErrorIs(t, err, schema.ErrInsufficientData)
	})

	t.Run("noisy rising debt over 800 days", func(t *testing.T) {
		x := linear(800, 100, 900)
		for i, e := range noise(7, 800, 5) {
			x[i] += e
		}
		res, err := MannKendall(x)
		require.NoError(t, err)
		assert.Greater(t, res.Tau, 0.9)
		assert.Less(t, res.PValue, 1e-10)
	})
}

func TestADF(t *testing.T) {
	t.Run("white noise is stationary", func(t *testing.T) {
		res, err := ADF(noise(1, 500, 1))
		require.NoError(t, err)
		assert.Less(t, res.Statistic, -4.0)
		assert.Equal(t, 0.01, res.PValue)
		assert.True(t, res.IsStationary(0.05))
		assert.Equal(t, 7, res.Lag)
	})

	t.Run("explosive series is not stationary", func(t *testing.T) {
		x := make([]float64, 300)
		e := noise(2, 300, 0.01)
		for i := range x {
			x[i] = math.Exp(0.01*float64(i)) + e[i]
		}
		res, err := ADFWithLag(x, 0)
		require.NoError(t, err)
		assert.Greater(t, res.Statistic, 0.0)
		assert.Equal(t, 0.99, res.PValue)
		assert.False(t, res.IsStationary(0.05))
	})

	t.Run("deterministic trend has no test", func(t *testing.T) {
		_, err := ADF(linear(100, 0, 1))
		assert.True(t, isDegenerate(err), "got %v", err)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := ADF([]float64{1, 2, 3})
		assert.ErrorIs(t, err, schema.ErrInsufficientData)
	})
}

func TestApprox(t *testing.T) {
	xs := []float64{0, 1, 2}
	ys := []float64{10, 20, 40}
	assert.Equal(t, 10.0, approx(xs, ys, -5))
	assert.Equal(t, 15.0, approx(xs, ys, 0.5))
	assert.Equal(t, 30.0, approx(xs, ys, 1.5))
	assert.Equal(t, 40.0, approx(xs, ys, 9))
}

func TestDefaultLagMaxAndBand(t *testing.T) {
	assert.Equal(t, 26, DefaultLagMax(800))
	assert.Equal(t, 16, DefaultLagMax(100))
	assert.Equal(t, 0, DefaultLagMax(1))
	assert.Equal(t, 1, DefaultLagMax(3))
	assert.InDelta(t, 0.19600, ConfidenceBand(100, 0.05), 1e-4)
}

func TestCrossCorrelation(t *testing.T) {
	x := noise(3, 200, 1)

	same, err := CrossCorrelation(x, x, 5)
	require.NoError(t, err)
	require.Len(t, same, 11)
	assert.InDelta(t, 1.0, same[5], 1e-12)
	assert.InDelta(t, same[4], same[6], 1e-12)

	// y follows x two steps later, so x leads y at lag -2
	y := make([]float64, len(x))
	copy(y, noise(4, 2, 1))
	for i := 2; i < len(x); i++ {
		y[i] = x[i-2]
	}
	ccf, err := CrossCorrelation(x, y, 5)
	require.NoError(t, err)
	assert.Greater(t, ccf[3], 0.9)
	for i, v := range ccf {
		if i != 3 {
			assert.Less(t, math.Abs(v), 0.5)
		}
	}
	band := ConfidenceBand(len(x), 0.05)
	assert.True(t, LeadingBreach(ccf, 5, band))

	// The reverse relation only shows at positive lags
	rev, err := CrossCorrelation(y, x, 5)
	require.NoError(t, err)
	assert.Greater(t, rev[7], 0.9)

	_, err = CrossCorrelation([]float64{1, 1, 1}, []float64{1, 2, 3}, 1)
	assert.ErrorIs(t, err, schema.ErrConstantSeries)
	_, err = CrossCorrelation([]float64{1, 2}, []float64{1, 2, 3}, 1)
	assert.ErrorIs(t, err, schema.ErrInsufficientData)
}

func TestLeadingBreachIgnoresLagZeroAndLagging(t *testing.T) {
	coefficients := []float64{0.01, 0.02, 0.9, 0.8, 0.7}
	assert.False(t, LeadingBreach(coefficients, 2, 0.1))
	assert.True(t, LeadingBreach([]float64{-0.3, 0, 0, 0, 0}, 2, 0.1))
}

func TestGranger(t *testing.T) {
	x := noise(5, 400, 1)
	e := noise(6, 400, 0.2)
	y := make([]float64, len(x))
	for i := 1; i < len(x); i++ {
		y[i] = 0.8*x[i-1] + e[i]
	}

	res, err := Granger(y, x, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.DF1)
	assert.Equal(t, 400-1-3, res.DF2)
	assert.Greater(t, res.F, 100.0)
	assert.Less(t, res.PValue, 1e-6)

	_, err = Granger(y[:4], x[:4], 2)
	assert.ErrorIs(t, err, schema.ErrInsufficientData)
	_, err = Granger(y, x, 0)
	assert.Error(t, err)
}

func TestSelectVAROrder(t *testing.T) {
	x := noise(8, 500, 1)
	e := noise(9, 500, 0.1)
	y := make([]float64, len(x))
	for i := 3; i < len(x); i++ {
		y[i] = 0.9*x[i-3] + e[i]
	}

	order, err := SelectVAROrder(x, y, 8)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, order, 3)
	assert.LessOrEqual(t, order, 8)

	_, err = SelectVAROrder(x, y[:10], 2)
	assert.Error(t, err)
}

func TestFeasibleOrder(t *testing.T) {
	assert.Equal(t, 5, feasibleOrder(500, 2, 5))
	assert.Equal(t, 1, feasibleOrder(8, 2, 5))
	assert.Less(t, feasibleOrder(40, 2, 20), 20)
}

func TestCorrelateLinearScenario(t *testing.T) {
	// Debt rises linearly over 800 days and the microservice count follows it exactly
	td := linear(800, 100, 900)
	ms := make([]float64, len(td))
	for i, v := range td {
		ms[i] = v / 100
	}

	out, err := Correlate(ms, td, 0.05)
	require.NoError(t, err)
	assert.False(t, out.Differenced)
	assert.Equal(t, 800, out.N)
	assert.Equal(t, 26, out.LagMax)
	require.Len(t, out.Coefficients, 2*26+1)
	assert.Greater(t, out.Coefficients[out.LagMax], out.Band)
	assert.InDelta(t, 1.0, out.Coefficients[out.LagMax], 1e-9)
	assert.True(t, out.Breach)
	assert.False(t, out.Tested)
}

func TestCorrelateLeadingSeries(t *testing.T) {
	// A random walk in microservices drives debt two days later
	steps := noise(10, 600, 1)
	ms := make([]float64, len(steps))
	for i := 1; i < len(ms); i++ {
		ms[i] = ms[i-1] + steps[i]
	}
	e := noise(11, 600, 0.05)
	td := make([]float64, len(ms))
	for i := 2; i < len(td); i++ {
		td[i] = 3*ms[i-2] + e[i]
	}

	out, err := Correlate(ms, td, 0.05)
	require.NoError(t, err)
	assert.Equal(t, out.Differenced, out.N == 599)
	assert.True(t, out.Breach)
	assert.True(t, out.Tested)
	assert.GreaterOrEqual(t, out.VAROrder, 1)
	assert.True(t, out.Causal)
	assert.Less(t, out.Granger.PValue, 0.05)
}

func TestCorrelateErrors(t *testing.T) {
	_, err := Correlate(linear(5, 0, 1), linear(5, 0, 1), 0.05)
	assert.ErrorIs(t, err, schema.ErrInsufficientData)

	_, err = Correlate(linear(20, 1, 1), linear(20, 0, 1), 0.05)
	assert.ErrorIs(t, err, schema.ErrConstantSeries)

	_, err = Correlate(linear(20, 0, 1), linear(21, 0, 1), 0.05)
	assert.Error(t, err)
}

func TestCorrelateDifferencedTrendIsSkipped(t *testing.T) {
	// A random walk against a straight line: once differenced the line is flat
	steps := noise(10, 600, 1)
	ms := make([]float64, len(steps))
	for i := 1; i < len(ms); i++ {
		ms[i] = ms[i-1] + steps[i]
	}
	td := make([]float64, len(ms))
	for i := range td {
		td[i] = 100 + float64(i)
	}

	out, err := Correlate(ms, td, 0.05)
	if err == nil {
		// Only reachable when the walk already looks stationary
		assert.True(t, out.ADFX.IsStationary(0.05))
		assert.False(t, out.Differenced)
		return
	}
	assert.ErrorIs(t, err, schema.ErrConstantSeries)
	assert.True(t, schema.IsSkippable(err))
	assert.False(t, out.Differenced)
}

func TestFlat(t *testing.T) {
	assert.True(t, flat(nil))
	assert.True(t, flat([]float64{0.25, 0.25 + 1e-12, 0.25}))
	assert.False(t, flat([]float64{0.25, 0.26}))
}
