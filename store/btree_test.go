package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBTreeCacheGetSet does basic sanity checks on our cache
func TestBTreeCacheGetSet(t *testing.T) {
	base := MemStore()

	k, v := []byte("french"), []byte("fry")
	assertGet(t, base, k, nil)
	require.NoError(t, base.Set(k, v))
	assertGet(t, base, k, v)

	// a layer on top sees the base data
	cache := base.CacheWrap()
	assertGet(t, cache, k, v)

	// writing more data is only visible in the cache
	k2, v2 := []byte("LA"), []byte("Dodgers")
	require.NoError(t, cache.Set(k2, v2))
	assertGet(t, cache, k2, v2)
	assertGet(t, base, k2, nil)

	require.NoError(t, cache.Write())
	assertGet(t, base, k, v)
	assertGet(t, base, k2, v2)

	// we can discard one
	k3, v3 := []byte("Bayern"), []byte("Munich")
	c2 := base.CacheWrap()
	require.NoError(t, c2.Set(k3, v3))
	c2.Discard()
	assertGet(t, base, k3, nil)

	// and commit a delete
	c3 := base.CacheWrap()
	require.NoError(t, c3.Delete(k))
	assertGet(t, c3, k, nil)
	assertGet(t, base, k, v)
	require.NoError(t, c3.Write())
	assertGet(t, base, k, nil)
	assertGet(t, base, k2, v2)
}

func TestBTreeCacheRejectsNilKey(t *testing.T) {
	db := MemStore()
	assert.Error(t, db.Set(nil, []byte("x")))
	assert.Error(t, db.Delete(nil))
}

func TestBTreeCacheIterator(t *testing.T) {
	base := MemStore()
	for _, k := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, base.Set([]byte(k), []byte("base-"+k)))
	}

	cache := base.CacheWrap()
	require.NoError(t, cache.Delete([]byte("b")))
	require.NoError(t, cache.Set([]byte("c"), []byte("cache-c")))
	require.NoError(t, cache.Set([]byte("cc"), []byte("cache-cc")))
	require.NoError(t, cache.Delete([]byte("zz")))

	cases := map[string]struct {
		start, end []byte
		want       []Model
	}{
		"full range": {
			want: []Model{
				pair("a", "base-a"),
				pair("c", "cache-c"),
				pair("cc", "cache-cc"),
				pair("d", "base-d"),
				pair("e", "base-e"),
			},
		},
		"bounded range": {
			start: []byte("b"),
			end:   []byte("d"),
			want: []Model{
				pair("c", "cache-c"),
				pair("cc", "cache-cc"),
			},
		},
		"open end": {
			start: []byte("cc"),
			want: []Model{
				pair("cc", "cache-cc"),
				pair("d", "base-d"),
				pair("e", "base-e"),
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			it, err := cache.Iterator(tc.start, tc.end)
			require.NoError(t, err)
			defer it.Close()

			var got []Model
			for ; it.Valid(); require.NoError(t, it.Next()) {
				got = append(got, Model{Key: it.Key(), Value: it.Value()})
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestIteratorSurvivesWrites(t *testing.T) {
	db := MemStore()
	require.NoError(t, db.Set([]byte("a"), []byte("A")))
	require.NoError(t, db.Set([]byte("b"), []byte("B")))

	it, err := db.Iterator(nil, nil)
	require.NoError(t, err)
	defer it.Close()

	// the iterator works on a copy taken when it was created
	require.NoError(t, db.Delete([]byte("b")))
	var keys []string
	for ; it.Valid(); require.NoError(t, it.Next()) {
		keys = append(keys, string(it.Key()))
	}
	assert.Equal(t, []string{"a", "b"}, keys)
}

func TestMemStoreKeepsNoWriteLog(t *testing.T) {
	db := MemStore()
	ex := NewExclusive(db)
	key := []byte("counter")
	for i := 0; i < 1000; i++ {
		err := ex.Update(func(db CacheableKVStore) error {
			return db.Set(key, []byte{byte(i)})
		})
		require.NoError(t, err)
	}

	root := db.(layer)
	assert.Equal(t, discard{}, root.out)
	assert.Equal(t, 1, root.tree.Len())
	assertGet(t, db, key, []byte{byte(999 % 256)})
}

func TestCacheWrapWriteEmptiesBatch(t *testing.T) {
	db := MemStore()
	cache := db.CacheWrap()
	require.NoError(t, cache.Set([]byte("a"), []byte("1")))
	require.NoError(t, cache.Delete([]byte("b")))
	require.NoError(t, cache.Write())

	out := cache.(layer).out.(*replayBatch)
	assert.Empty(t, out.pending)
	assertGet(t, db, []byte("a"), []byte("1"))
	assertGet(t, db, []byte("b"), nil)
}

func assertGet(t testing.TB, db ReadOnlyKVStore, key, want []byte) {
	t.Helper()
	got, err := db.Get(key)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	has, err := db.Has(key)
	require.NoError(t, err)
	assert.Equal(t, want != nil, has)
}

func pair(k, v string) Model {
	return Model{Key: []byte(k), Value: []byte(v)}
}
