package orm

import (
	"fmt"
	"regexp"

	"github.com/iov-one/stakeweave"
	"github.com/iov-one/stakeweave/errors"
)

var validBucketName = regexp.MustCompile(`^[a-z0-9_]{3,40}$`).MatchString

// Bucket holds the records of one kind under the "name:" key prefix.
// A ledger keeps its pool, stakes and metadata in three of them.
type Bucket struct {
	name   string
	prefix []byte
}

// NewBucket panics for a name that is not 3 to 40 lower case letters,
// digits or underscores.
func NewBucket(name string) Bucket {
	if !validBucketName(name) {
		panic(fmt.Sprintf("invalid bucket name %q", name))
	}
	return Bucket{name: name, prefix: []byte(name + ":")}
}

func (b Bucket) Name() string {
	return b.name
}

// DBKey returns a fresh slice holding the prefixed key.
func (b Bucket) DBKey(key []byte) []byte {
	out := make([]byte, 0, len(b.prefix)+len(key))
	return append(append(out, b.prefix...), key...)
}

// Load reads the record stored under key into dst. It returns false if
// there is no such record, leaving dst untouched.
func (b Bucket) Load(db stakeweave.ReadOnlyKVStore, key []byte, dst Model) (bool, error) {
	raw, err := db.Get(b.DBKey(key))
	if err != nil {
		return false, errors.Wrap(err, b.name)
	}
	if raw == nil {
		return false, nil
	}
	if err := dst.Unmarshal(raw); err != nil {
		return false, errors.Wrapf(err, "%s: %X", b.name, key)
	}
	return true, nil
}

// Has returns true if a record is stored under key.
func (b Bucket) Has(db stakeweave.ReadOnlyKVStore, key []byte) (bool, error) {
	ok, err := db.Has(b.DBKey(key))
	return ok, errors.Wrap(err, b.name)
}

// Save validates the record and writes it under key.
func (b Bucket) Save(db stakeweave.KVStore, key []byte, model Model) error {
	if err := model.Validate(); err != nil {
		return errors.Wrapf(err, "%s: %X", b.name, key)
	}
	raw, err := model.Marshal()
	if err != nil {
		return errors.Wrapf(err, "%s: %X", b.name, key)
	}
	return errors.Wrap(db.Set(b.DBKey(key), raw), b.name)
}

// Delete removes the record under key, if any.
func (b Bucket) Delete(db stakeweave.KVStore, key []byte) error {
	return errors.Wrap(db.Delete(b.DBKey(key)), b.name)
}

// Iterate calls fn for every record whose key starts with prefix, in
// ascending key order. fn receives the key without the bucket prefix.
// Iteration stops at the first error.
func (b Bucket) Iterate(db stakeweave.ReadOnlyKVStore, prefix []byte, fn func(key, value []byte) error) error {
	start, end := prefixRange(b.DBKey(prefix))
	it, err := db.Iterator(start, end)
	if err != nil {
		return errors.Wrap(err, b.name)
	}
	defer it.Close()

	for it.Valid() {
		if err := fn(it.Key()[len(b.prefix):], it.Value()); err != nil {
			return err
		}
		if err := it.Next(); err != nil {
			return errors.Wrap(err, b.name)
		}
	}
	return nil
}
