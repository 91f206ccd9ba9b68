// Package iocache persists cached repository statistics and tracked run results.
package iocache

import (
	"sync"

	"github.com/huangsam/debtlens/internal/contract"
)

// CacheStoreManager manages the result cache and the result store.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	cache        contract.CacheStore
	results      contract.ResultStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetResultCache returns the store of cached repository statistics.
func (mgr *CacheStoreManager) GetResultCache() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.cache
}

// GetResultStore returns the store tracking runs and their aggregate tables.
func (mgr *CacheStoreManager) GetResultStore() contract.ResultStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.results
}
