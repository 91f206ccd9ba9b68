package stats

import (
	"math"
	"testing"

	"github.com/huangsam/debtlens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func yearlyCycle(days int) []float64 {
	out := make([]float64, days)
	for i, e := range noise(12, days, 0.01) {
		t := float64(i)
		out[i] = 10*math.Sin(2*math.Pi*t/365) + 0.01*t + e
	}
	return out
}

func TestAutocorrelation(t *testing.T) {
	r, err := Autocorrelation([]float64{1, 2, 3, 4}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, r, 1e-12)

	r, err = Autocorrelation([]float64{1, 2, 3, 4}, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r, 1e-12)

	_, err = Autocorrelation([]float64{5, 5, 5}, 1)
	assert.ErrorIs(t, err, schema.ErrConstantSeries)
	_, err = Autocorrelation([]float64{1, 2}, 2)
	assert.ErrorIs(t, err, schema.ErrInsufficientData)
}

func TestAverageRanks(t *testing.T) {
	assert.Equal(t, []float64{3.5, 1, 3.5, 2}, averageRanks([]float64{3, 1, 3, 2}))
	assert.Equal(t, []float64{1, 2, 3}, averageRanks([]float64{-1, 0, 7}))
}

func TestKruskalWallis(t *testing.T) {
	h, p, err := KruskalWallis([]float64{1, 10, 2, 11, 3, 12}, 2)
	require.NoError(t, err)
	assert.InDelta(t, 27.0/7, h, 1e-9)
	assert.InDelta(t, 0.0495, p, 1e-3)

	_, _, err = KruskalWallis([]float64{1, 2, 3}, 2)
	assert.ErrorIs(t, err, schema.ErrInsufficientData)
}

func TestTestSeasonality(t *testing.T) {
	t.Run("yearly cycle is seasonal", func(t *testing.T) {
		for test := range schema.ValidSeasonalityTests {
			out, err := TestSeasonality(yearlyCycle(3*365), 365, test)
			require.NoError(t, err, test)
			assert.True(t, out.Seasonal, test)
		}
	})

	t.Run("combined runs both tests", func(t *testing.T) {
		out, err := TestSeasonality(yearlyCycle(3*365), 365, schema.CombinedTest)
		require.NoError(t, err)
		assert.Less(t, out.QSPValue, QSAlpha)
		assert.False(t, math.IsNaN(out.KWPValue))
	})

	t.Run("single test leaves the other p-value missing", func(t *testing.T) {
		out, err := TestSeasonality(yearlyCycle(3*365), 365, schema.QSTest)
		require.NoError(t, err)
		assert.True(t, math.IsNaN(out.KWPValue))
	})

	t.Run("steady growth is not seasonal", func(t *testing.T) {
		series := make([]float64, 800)
		for i := range series {
			series[i] = 2 * float64(i)
		}
		out, err := TestSeasonality(series, 365, schema.CombinedTest)
		require.NoError(t, err)
		assert.False(t, out.Seasonal)
		assert.Equal(t, 1.0, out.QSPValue)
		assert.Equal(t, 1.0, out.KWPValue)
	})

	t.Run("shorter than two cycles", func(t *testing.T) {
		_, err := TestSeasonality(yearlyCycle(500), 365, schema.CombinedTest)
		assert.ErrorIs(t, err, schema.ErrInsufficientData)
	})

	t.Run("unknown test", func(t *testing.T) {
		_, err := TestSeasonality(yearlyCycle(3*365), 365, schema.SeasonalityTest("fft"))
		assert.Error(t, err)
	})
}

func TestLoessReproducesLines(t *testing.T) {
	y := make([]float64, 20)
	for i := range y {
		y[i] = 2*float64(i) + 1
	}
	for _, q := range []int{7, 19, 30} {
		assert.InDeltaSlice(t, y, Loess(y, q, 1), 1e-9, "q=%d", q)
	}
	assert.InDeltaSlice(t, y, LoessSpan(y, 0.75), 1e-9)
	assert.Empty(t, Loess(nil, 5, 1))
}

func TestMovingAverage(t *testing.T) {
	assert.Equal(t, []float64{1.5, 2.5, 3.5}, movingAverage([]float64{1, 2, 3, 4}, 2))
	assert.Nil(t, movingAverage([]float64{1}, 2))
}

func TestSTL(t *testing.T) {
	const period = 12
	y := make([]float64, 120)
	sine := make([]float64, len(y))
	for i := range y {
		sine[i] = 5 * math.Sin(2*math.Pi*float64(i)/period)
		y[i] = 0.05*float64(i) + sine[i]
	}

	d, err := STL(y, period)
	require.NoError(t, err)
	assert.Equal(t, period, d.Period)
	require.Len(t, d.Trend, len(y))

	for i := range y {
		assert.InDelta(t, y[i], d.Trend[i]+d.Seasonal[i]+d.Remainder[i], 1e-9)
		assert.InDelta(t, sine[i], d.Seasonal[i], 0.5)
		if i+period < len(y) {
			assert.Equal(t, d.Seasonal[i], d.Seasonal[i+period])
		}
	}
	assert.InDelta(t, 3.0, d.Trend[60], 0.5)

	_, err = STL(y[:2*period], period)
	assert.ErrorIs(t, err, schema.ErrInsufficientData)
}
