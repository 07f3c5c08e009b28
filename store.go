package stakeweave

// ReadOnlyKVStore gives read access to the state of ledgers, routers and
// the collateral model.
type ReadOnlyKVStore interface {
	// Get returns nil if key is not set.
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)

	// Iterator walks [start, end) in ascending key order. A nil start or
	// end leaves that side open. The range must not be written to while
	// the iterator is open.
	Iterator(start, end []byte) (Iterator, error)
}

// SetDeleter is what a store and a batch share. Keys and values passed in
// must not be modified afterwards.
type SetDeleter interface {
	Set(key, value []byte) error
	Delete(key []byte) error
}

// KVStore is a readable and writable store.
type KVStore interface {
	ReadOnlyKVStore
	SetDeleter
	NewBatch() Batch
}

// Batch collects writes and applies them on Write.
type Batch interface {
	SetDeleter
	Write() error
}

// Iterator is a cursor over a key range:
//
//   it, err := db.Iterator(start, end)
//   ...
//   defer it.Close()
//   for ; it.Valid(); it.Next() {
//       key, value := it.Key(), it.Value()
//   }
//
// Next, Key and Value panic once Valid returned false. Returned keys and
// values must not be modified.
type Iterator interface {
	Valid() bool
	Next() error
	Key() (key []byte)
	Value() (value []byte)
	Close()
}

// CacheableKVStore can stack cache wraps on top of itself. Every engine
// operation runs in one so that a failure leaves no partial update behind.
type CacheableKVStore interface {
	KVStore
	CacheWrap() KVCacheWrap
}

// KVCacheWrap holds writes on top of its parent store. Reads see the
// writes. Write applies them to the parent, Discard drops them. A cache
// wrap can itself be wrapped again.
type KVCacheWrap interface {
	CacheableKVStore
	Write() error
	Discard()
}

// Model is a raw key and value read from a store.
type Model struct {
	Key   []byte
	Value []byte
}

// Pair returns the model of key and value.
func Pair(key, value []byte) Model {
	return Model{Key: key, Value: value}
}

// Atomic runs fn on a cache wrap of db. Changes are written to db only when
// fn returns no error, otherwise they are discarded.
func Atomic(db CacheableKVStore, fn func(CacheableKVStore) error) error {
	cache := db.CacheWrap()
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	return cache.Write()
}
