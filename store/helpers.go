package store

import (
	"github.com/iov-one/stakeweave/errors"
)

// SliceIterator walks a slice of models that is already sorted in the
// requested order.
type SliceIterator struct {
	models []Model
	pos    int
}

var _ Iterator = (*SliceIterator)(nil)

func NewSliceIterator(models []Model) *SliceIterator {
	return &SliceIterator{models: models}
}

func (s *SliceIterator) Valid() bool {
	return s.pos < len(s.models)
}

func (s *SliceIterator) Next() error {
	if !s.Valid() {
		return errors.Wrap(errors.ErrHuman, "iterator exhausted")
	}
	s.pos++
	return nil
}

func (s *SliceIterator) Key() []byte   { return s.models[s.pos].Key }
func (s *SliceIterator) Value() []byte { return s.models[s.pos].Value }

// Close drops the slice. The iterator is invalid afterwards.
func (s *SliceIterator) Close() {
	s.models = nil
}

// EmptyKVStore is the bottom of every MemStore. It holds nothing and
// ignores writes.
type EmptyKVStore struct{}

var _ KVStore = EmptyKVStore{}

func (EmptyKVStore) Get([]byte) ([]byte, error)  { return nil, nil }
func (EmptyKVStore) Has([]byte) (bool, error)    { return false, nil }
func (EmptyKVStore) Set(key, value []byte) error { return nil }
func (EmptyKVStore) Delete([]byte) error         { return nil }
func (EmptyKVStore) NewBatch() Batch             { return discard{} }

func (EmptyKVStore) Iterator(start, end []byte) (Iterator, error) {
	return NewSliceIterator(nil), nil
}

// discard is the batch of the bottom layer. Nothing below it keeps data.
type discard struct{}

func (discard) Set(key, value []byte) error { return nil }
func (discard) Delete([]byte) error         { return nil }
func (discard) Write() error                { return nil }

// op is a single queued write. A nil value deletes the key.
type op struct {
	key   []byte
	value []byte
}

// replayBatch queues writes and replays them on out in order. A failing
// write leaves the earlier ones applied, so it only serves in-memory layers.
type replayBatch struct {
	out     SetDeleter
	pending []op
}

var _ Batch = (*replayBatch)(nil)

func newReplayBatch(out SetDeleter) *replayBatch {
	return &replayBatch{out: out}
}

func (b *replayBatch) Set(key, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	b.pending = append(b.pending, op{key: key, value: value})
	return nil
}

func (b *replayBatch) Delete(key []byte) error {
	b.pending = append(b.pending, op{key: key})
	return nil
}

func (b *replayBatch) Write() error {
	ops := b.pending
	b.pending = nil
	for i, o := range ops {
		var err error
		if o.value == nil {
			err = b.out.Delete(o.key)
		} else {
			err = b.out.Set(o.key, o.value)
		}
		if err != nil {
			return errors.Wrapf(err, "replay op %d", i)
		}
	}
	return nil
}
