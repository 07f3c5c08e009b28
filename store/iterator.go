package store

import (
	"bytes"

	"github.com/google/btree"
)

// ascendBtree copies all items within [start, end) in ascending order.
// A copy keeps the iterator valid while the tree is written to.
func ascendBtree(bt *btree.BTree, start, end []byte) []entry {
	var items []entry
	collect := func(item btree.Item) bool {
		items = append(items, item.(entry))
		return true
	}
	switch {
	case start == nil && end == nil:
		bt.Ascend(collect)
	case start == nil:
		bt.AscendLessThan(entry{key: end}, collect)
	case end == nil:
		bt.AscendGreaterOrEqual(entry{key: start}, collect)
	default:
		bt.AscendRange(entry{key: start}, entry{key: end}, collect)
	}
	return items
}

// itemIter merges the items of a cache layer with the iterator of the
// layer below. Items of the cache layer win on equal keys and deleted
// items hide the parent entry.
type itemIter struct {
	items  []entry
	idx    int
	parent Iterator
}

var _ Iterator = (*itemIter)(nil)

func newItemIter(items []entry, parent Iterator) (*itemIter, error) {
	iter := &itemIter{
		items:  items,
		parent: parent,
	}
	if err := iter.skipDeleted(); err != nil {
		return nil, err
	}
	return iter, nil
}

// Valid implements Iterator and returns true iff it can be read
func (i *itemIter) Valid() bool {
	return i.ownValid() || i.parent.Valid()
}

// Next moves the iterator to the next sequential key in the database, as
// defined by order of iteration.
//
// If Valid returns false, this method will panic.
func (i *itemIter) Next() error {
	switch i.first() {
	case us:
		i.idx++
	case both:
		i.idx++
		if err := i.parent.Next(); err != nil {
			return err
		}
	case parent:
		if err := i.parent.Next(); err != nil {
			return err
		}
	default:
		panic("advanced past the end")
	}
	return i.skipDeleted()
}

// Key returns the key of the cursor.
func (i *itemIter) Key() []byte {
	switch i.first() {
	case us, both:
		return i.items[i.idx].key
	case parent:
		return i.parent.Key()
	default:
		panic("advanced past the end")
	}
}

// Value returns the value of the cursor.
func (i *itemIter) Value() []byte {
	switch i.first() {
	case us, both:
		return i.items[i.idx].value
	case parent:
		return i.parent.Value()
	default:
		panic("advanced past the end")
	}
}

// Close releases the Iterator.
func (i *itemIter) Close() {
	i.items = nil
	i.parent.Close()
}

func (i *itemIter) ownValid() bool {
	return i.idx < len(i.items)
}

// skipDeleted fast forwards over deleted items of the cache layer, along
// with the parent entries they hide.
func (i *itemIter) skipDeleted() error {
	for {
		src := i.first()
		if src != us && src != both {
			return nil
		}
		if !i.items[i.idx].deleted {
			return nil
		}
		i.idx++
		if src == both {
			if err := i.parent.Next(); err != nil {
				return err
			}
		}
	}
}

// source marks where the current item comes from
type source int32

const (
	none source = iota
	us
	parent
	both
)

// first selects the iterator holding the lowest key.
func (i *itemIter) first() source {
	ownValid, parentValid := i.ownValid(), i.parent.Valid()
	switch {
	case !ownValid && !parentValid:
		return none
	case !parentValid:
		return us
	case !ownValid:
		return parent
	}

	switch cmp := bytes.Compare(i.parent.Key(), i.items[i.idx].key); {
	case cmp < 0:
		return parent
	case cmp > 0:
		return us
	default:
		return both
	}
}
