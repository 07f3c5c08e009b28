package store

import "github.com/iov-one/stakeweave"

// Move references for all storage types into this package
// for shorter names everywhere

type (
	ReadOnlyKVStore  = stakeweave.ReadOnlyKVStore
	SetDeleter       = stakeweave.SetDeleter
	KVStore          = stakeweave.KVStore
	Batch            = stakeweave.Batch
	Iterator         = stakeweave.Iterator
	CacheableKVStore = stakeweave.CacheableKVStore
	KVCacheWrap      = stakeweave.KVCacheWrap
	Model            = stakeweave.Model
)
