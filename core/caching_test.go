package core

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/huangsam/debtlens/internal/iocache"
	"github.com/huangsam/debtlens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sampleStats() schema.RepoStats {
	return schema.RepoStats{
		Trend: &schema.TrendResult{Repo: "a", Tau: 0.5, PValue: 0.01, Score: 12, N: 10},
	}
}

func countingCompute(calls *int, res schema.RepoStats) func() (schema.RepoStats, error) {
	return func() (schema.RepoStats, error) {
		*calls++
		return res, nil
	}
}

func TestCheckCacheHit(t *testing.T) {
	data, err := encodeStats(sampleStats())
	require.NoError(t, err)

	tests := []struct {
		name    string
		data    []byte
		version int
		ts      int64
		err     error
		hit     bool
	}{
		{"fresh entry", data, currentCacheVersion, time.Now().Unix(), nil, true},
		{"version mismatch", data, currentCacheVersion + 1, time.Now().Unix(), nil, false},
		{"stale entry", data, currentCacheVersion, time.Now().Add(-8 * 24 * time.Hour).Unix(), nil, false},
		{"store error", nil, 0, 0, errors.New("not found"), false},
		{"corrupt payload", []byte("not gob"), currentCacheVersion, time.Now().Unix(), nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &iocache.MockCacheStore{}
			store.On("Get", "key").Return(tt.data, tt.version, tt.ts, tt.err)

			res, ok := checkCacheHit(store, "key")
			assert.Equal(t, tt.hit, ok)
			if tt.hit {
				assert.Equal(t, sampleStats(), res)
			}
		})
	}
}

func TestCachedRepoStats(t *testing.T) {
	cfg := testConfig()
	src := newMemorySource()

	t.Run("miss computes and stores", func(t *testing.T) {
		store := &iocache.MockCacheStore{}
		store.On("Get", mock.Anything).Return(nil, 0, int64(0), errors.New("miss"))
		store.On("Set", mock.Anything, mock.Anything, currentCacheVersion, mock.Anything).Return(nil)

		calls := 0
		res, cached, err := cachedRepoStats(cfg, store, src, "a", countingCompute(&calls, sampleStats()))
		require.NoError(t, err)
		assert.False(t, cached)
		assert.Equal(t, 1, calls)
		assert.Equal(t, sampleStats(), res)
		store.AssertExpectations(t)
	})

	t.Run("hit skips computation", func(t *testing.T) {
		data, err := encodeStats(sampleStats())
		require.NoError(t, err)
		store := &iocache.MockCacheStore{}
		store.On("Get", mock.Anything).Return(data, currentCacheVersion, time.Now().Unix(), nil)

		calls := 0
		res, cached, err := cachedRepoStats(cfg, store, src, "a", countingCompute(&calls, schema.RepoStats{}))
		require.NoError(t, err)
		assert.True(t, cached)
		assert.Zero(t, calls)
		assert.Equal(t, sampleStats(), res)
		store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no store", func(t *testing.T) {
		calls := 0
		_, cached, err := cachedRepoStats(cfg, nil, src, "a", countingCompute(&calls, sampleStats()))
		require.NoError(t, err)
		assert.False(t, cached)
		assert.Equal(t, 1, calls)
	})
}

func TestGenerateCacheKey(t *testing.T) {
	src := newMemorySource()
	cfg := testConfig()

	key1, err := generateCacheKey(cfg, src, "a")
	require.NoError(t, err)
	key2, err := generateCacheKey(cfg, src, "a")
	require.NoError(t, err)
	assert.Equal(t, key1, key2)
	assert.Len(t, key1, 64)

	other, err := generateCacheKey(cfg, src, "b")
	require.NoError(t, err)
	assert.NotEqual(t, key1, other)

	changed := cfg.Clone()
	changed.Alpha = 0.01
	key3, err := generateCacheKey(changed, src, "a")
	require.NoError(t, err)
	assert.NotEqual(t, key1, key3)
}

func TestStatsEncodingKeepsNaN(t *testing.T) {
	in := schema.RepoStats{
		Seasonality: &schema.SeasonalityResult{Repo: "a", QSPValue: 0.2, KWPValue: math.NaN()},
		Causality:   []schema.CausalityResult{{Repo: "a", Pass: schema.DebtPass, PValue: math.NaN(), Coefficients: []float64{0.1, 0.9, 0.2}}},
	}
	data, err := encodeStats(in)
	require.NoError(t, err)
	out, err := decodeStats(data)
	require.NoError(t, err)

	require.NotNil(t, out.Seasonality)
	assert.True(t, math.IsNaN(out.Seasonality.KWPValue))
	assert.Equal(t, 0.2, out.Seasonality.QSPValue)
	require.Len(t, out.Causality, 1)
	assert.True(t, math.IsNaN(out.Causality[0].PValue))
	assert.Equal(t, []float64{0.1, 0.9, 0.2}, out.Causality[0].Coefficients)
	assert.Nil(t, out.Trend)
}
