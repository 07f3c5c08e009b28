package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/stakeweave/errors"
)

// degree of every tree. Ledgers hold few small records, a low degree keeps
// copies on write cheap.
const treeDegree = 2

// MemStore returns the in-memory store an engine runs on. Nothing is
// persisted. Its bottom layer keeps all data in its tree and must not be
// written itself, only cache wraps of it are.
func MemStore() CacheableKVStore {
	base := EmptyKVStore{}
	return newLayer(base, base.NewBatch(), nil)
}

// layer keeps the writes of one cache wrap in a btree in front of the
// store below. Every write goes to the tree and to out, which replays it on
// the store below on Write.
type layer struct {
	tree  *btree.BTree
	free  *btree.FreeList
	below ReadOnlyKVStore
	out   Batch
}

var _ KVCacheWrap = layer{}

// newLayer puts an empty layer on top of below. free is shared between all
// the layers of one store and may be nil for the first one.
func newLayer(below ReadOnlyKVStore, out Batch, free *btree.FreeList) layer {
	if free == nil {
		free = btree.NewFreeList(btree.DefaultFreeListSize)
	}
	return layer{
		tree:  btree.NewWithFreeList(treeDegree, free),
		free:  free,
		below: below,
		out:   out,
	}
}

func (l layer) CacheWrap() KVCacheWrap {
	return newLayer(l, l.NewBatch(), l.free)
}

func (l layer) NewBatch() Batch {
	return newReplayBatch(l)
}

// Write replays all writes on the store below and empties the layer.
func (l layer) Write() error {
	err := l.out.Write()
	l.Discard()
	return err
}

// Discard drops all writes, returning the tree nodes to the free list.
func (l layer) Discard() {
	for l.tree.DeleteMin() != nil {
	}
}

func (l layer) Set(key, value []byte) error {
	if key == nil {
		return errors.Wrap(errors.ErrHuman, "nil key")
	}
	l.tree.ReplaceOrInsert(entry{key: key, value: value})
	return l.out.Set(key, value)
}

func (l layer) Delete(key []byte) error {
	if key == nil {
		return errors.Wrap(errors.ErrHuman, "nil key")
	}
	l.tree.ReplaceOrInsert(entry{key: key, deleted: true})
	return l.out.Delete(key)
}

func (l layer) Get(key []byte) ([]byte, error) {
	e, ok := l.lookup(key)
	if !ok {
		return l.below.Get(key)
	}
	if e.deleted {
		return nil, nil
	}
	return e.value, nil
}

func (l layer) Has(key []byte) (bool, error) {
	e, ok := l.lookup(key)
	if !ok {
		return l.below.Has(key)
	}
	return !e.deleted, nil
}

// lookup returns the entry this layer holds for key, if any.
func (l layer) lookup(key []byte) (entry, bool) {
	found := l.tree.Get(entry{key: key})
	if found == nil {
		return entry{}, false
	}
	return found.(entry), true
}

// Iterator merges this layer with the store below, in ascending order.
func (l layer) Iterator(start, end []byte) (Iterator, error) {
	below, err := l.below.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	return newItemIter(ascendBtree(l.tree, start, end), below)
}

// entry is a write kept by a layer. A deleted entry hides the key in the
// store below.
type entry struct {
	key     []byte
	value   []byte
	deleted bool
}

var _ btree.Item = entry{}

func (e entry) Less(than btree.Item) bool {
	return bytes.Compare(e.key, than.(entry).key) < 0
}
