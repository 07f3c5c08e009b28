package store

import (
	"sync"

	"github.com/iov-one/stakeweave"
)

// Exclusive guards a store with a single write path. Updates are
// serialized and applied all-or-nothing, views share a consistent state
// that no update can change while they run.
type Exclusive struct {
	mu sync.RWMutex
	db CacheableKVStore
}

// NewExclusive wraps db. db must not be written to by anyone else.
func NewExclusive(db CacheableKVStore) *Exclusive {
	return &Exclusive{db: db}
}

// Update runs fn holding the write lock. fn works on a cache wrap that is
// written to the store only if fn returns no error.
func (e *Exclusive) Update(fn func(CacheableKVStore) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return stakeweave.Atomic(e.db, fn)
}

// View runs fn holding the read lock. fn may write to the store it is
// given, those writes are always discarded.
func (e *Exclusive) View(fn func(CacheableKVStore) error) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	cache := e.db.CacheWrap()
	defer cache.Discard()
	return fn(cache)
}
