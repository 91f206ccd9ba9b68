package core

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/debtlens/internal/contract"
	"github.com/huangsam/debtlens/schema"
)

// currentCacheVersion defines the version of the cached statistics layout
const currentCacheVersion = 1

// cacheTTL is how long cached statistics stay valid.
const cacheTTL = 7 * 24 * time.Hour

// cachedRepoStats returns the statistics of a repository from the result cache, or
// computes and stores them on a miss. The boolean reports a cache hit.
func cachedRepoStats(cfg *contract.Config, store contract.CacheStore, src contract.DataSource, repo string, compute func() (schema.RepoStats, error)) (schema.RepoStats, bool, error) {
	if store == nil {
		// Fallback to direct computation
		res, err := compute()
		return res, false, err
	}

	key, err := generateCacheKey(cfg, src, repo)
	if err != nil {
		res, err := compute()
		return res, false, err
	}

	if res, ok := checkCacheHit(store, key); ok {
		return res, true, nil
	}
	res, err := computeAndStore(store, key, compute)
	return res, false, err
}

// checkCacheHit attempts to retrieve and validate a cached result
func checkCacheHit(store contract.CacheStore, key string) (schema.RepoStats, bool) {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return schema.RepoStats{}, false // Cache miss
	}

	// Validate version and staleness
	if version != currentCacheVersion || time.Since(time.Unix(ts, 0)) > cacheTTL {
		return schema.RepoStats{}, false
	}
	res, err := decodeStats(data)
	if err != nil {
		return schema.RepoStats{}, false
	}
	return res, true
}

// computeAndStore computes the result and stores it in cache
func computeAndStore(store contract.CacheStore, key string, compute func() (schema.RepoStats, error)) (schema.RepoStats, error) {
	res, err := compute()
	if err != nil {
		return res, err
	}
	if data, err := encodeStats(res); err == nil {
		if err := store.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
			contract.LogWarn("Failed to cache results", err)
		}
	}
	return res, nil
}

// generateCacheKey hashes the repository inputs together with every parameter
// that changes the statistics.
func generateCacheKey(cfg *contract.Config, src contract.DataSource, repo string) (string, error) {
	fingerprint, err := src.Fingerprint(repo)
	if err != nil {
		return "", err
	}
	params, err := json.Marshal(cfg.AnalysisParams())
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%s:%s:%s", repo, fingerprint, params)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key))), nil
}

// Statistics carry NaN p-values, which JSON cannot represent.
func encodeStats(res schema.RepoStats) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(res); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeStats(data []byte) (schema.RepoStats, error) {
	var res schema.RepoStats
	err := gob.NewDecoder(bytes.NewReader(data)).Decode(&res)
	return res, err
}
