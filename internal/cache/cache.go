// Package cache provides the TTL-bounded probe result cache.
//
// Every external probe passes through a cache keyed by (platform, handle,
// probe kind): repeated investigations of overlapping candidate sets must
// not repeat requests against remote platforms. Two implementations are
// provided: an in-memory cache for single runs and a sqlite-backed cache
// that persists verdicts across runs.
package cache

import (
	"encoding/hex"
	"sync"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/nao1215/handletrace/internal/model"
)

// Key derives the stable cache key for one probe. Handles come from an
// untrusted generator and can contain separator characters, so the tuple
// is hashed rather than joined; SHA3-256 keeps keys fixed-width for the
// sqlite index as well.
func Key(platform, handle, kind string) string {
	h := sha3.Sum256([]byte(platform + "\x00" + handle + "\x00" + kind))
	return hex.EncodeToString(h[:])
}

// Cache stores probe verdicts with a per-entry TTL. Implementations must
// be safe for concurrent use; probe workers hit the cache in parallel.
// An entry past its TTL is never returned.
type Cache interface {
	// Get returns the cached result and whether a live entry existed.
	Get(key string) (model.ProbeResult, bool)

	// Set stores a result for ttl. Non-positive ttl stores nothing.
	Set(key string, result model.ProbeResult, ttl time.Duration)
}

// entry is one cached verdict with its expiry.
type entry struct {
	result    model.ProbeResult
	expiresAt time.Time
}

// Memory is the in-process Cache.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry

	// now is swappable for TTL tests.
	now func() time.Time
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get implements Cache. Expired entries are deleted on access.
func (m *Memory) Get(key string) (model.ProbeResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return model.ProbeResult{}, false
	}
	if m.now().After(e.expiresAt) {
		delete(m.entries, key)
		return model.ProbeResult{}, false
	}
	return e.result, true
}

// Set implements Cache.
func (m *Memory) Set(key string, result model.ProbeResult, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{result: result, expiresAt: m.now().Add(ttl)}
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
