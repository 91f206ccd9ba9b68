package iocache

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/huangsam/debtlens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetManager(t *testing.T) {
	t.Helper()
	initOnce = sync.Once{}
	closeOnce = sync.Once{}
	Manager = &CacheStoreManager{}
	t.Cleanup(func() {
		CloseStores()
		initOnce = sync.Once{}
		closeOnce = sync.Once{}
		Manager = &CacheStoreManager{}
	})
}

func TestInitStores(t *testing.T) {
	t.Run("sqlite stores", func(t *testing.T) {
		resetManager(t)
		dir := t.TempDir()
		cachePath := filepath.Join(dir, "cache.db")
		resultsPath := filepath.Join(dir, "results.db")

		require.NoError(t, InitStores(schema.SQLiteBackend, cachePath, schema.SQLiteBackend, resultsPath))
		assert.NotNil(t, Manager.GetResultCache())
		assert.NotNil(t, Manager.GetResultStore())

		CloseStores()
		_, err := os.Stat(cachePath)
		assert.NoError(t, err, "cache database file should be created")
		_, err = os.Stat(resultsPath)
		assert.NoError(t, err, "results database file should be created")
	})

	t.Run("idempotent", func(t *testing.T) {
		resetManager(t)
		path := filepath.Join(t.TempDir(), "cache.db")
		assert.NoError(t, InitStores(schema.SQLiteBackend, path, "", ""))
		assert.NoError(t, InitStores(schema.SQLiteBackend, path, "", ""))
		CloseStores()
		CloseStores()
	})

	t.Run("results disabled", func(t *testing.T) {
		resetManager(t)
		require.NoError(t, InitStores(schema.NoneBackend, "", "", ""))
		assert.NotNil(t, Manager.GetResultCache())
		assert.Nil(t, Manager.GetResultStore(), "an unset backend should leave a nil interface")
	})

	t.Run("invalid backend", func(t *testing.T) {
		resetManager(t)
		err := InitStores(schema.DatabaseBackend("oracle"), "", "", "")
		assert.ErrorContains(t, err, "failed to initialize result cache")
	})

	t.Run("invalid results backend", func(t *testing.T) {
		resetManager(t)
		err := InitStores(schema.NoneBackend, "", schema.DatabaseBackend("oracle"), "")
		assert.ErrorContains(t, err, "failed to initialize result store")
		assert.Nil(t, Manager.GetResultCache())
	})
}

func TestCacheStoreManagerConcurrency(t *testing.T) {
	resetManager(t)
	require.NoError(t, InitStores(schema.NoneBackend, "", schema.NoneBackend, ""))

	var wg sync.WaitGroup
	for range 20 {
		wg.Go(func() {
			assert.NotNil(t, Manager.GetResultCache())
			assert.NotNil(t, Manager.GetResultStore())
		})
	}
	wg.Wait()
}

func TestClearCache(t *testing.T) {
	t.Run("sqlite removes file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cache.db")
		require.NoError(t, os.WriteFile(path, []byte("data"), 0o600))
		require.NoError(t, ClearCache(schema.SQLiteBackend, path, ""))
		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("sqlite missing file", func(t *testing.T) {
		assert.NoError(t, ClearCache(schema.SQLiteBackend, filepath.Join(t.TempDir(), "nope.db"), ""))
	})

	t.Run("sqlite empty path", func(t *testing.T) {
		assert.Error(t, ClearCache(schema.SQLiteBackend, "", ""))
	})

	t.Run("none backend", func(t *testing.T) {
		assert.NoError(t, ClearCache(schema.NoneBackend, "", ""))
	})

	t.Run("unsupported backend", func(t *testing.T) {
		assert.Error(t, ClearCache(schema.DatabaseBackend("oracle"), "", ""))
	})
}

func TestClearResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	store, err := NewResultStore(schema.SQLiteBackend, path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, ClearResults(schema.SQLiteBackend, path, ""))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, ClearResults(schema.NoneBackend, "", ""))
	assert.Error(t, ClearResults(schema.DatabaseBackend("oracle"), "", ""))
}
