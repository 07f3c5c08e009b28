package orm

// prefixRange returns the iterator bounds [start, end) of all keys
// starting with prefix. end is nil when no key above prefix exists.
func prefixRange(prefix []byte) (start, end []byte) {
	if len(prefix) == 0 {
		return nil, nil
	}
	// Trailing 0xFF bytes cannot be incremented. Drop them and bump the
	// last byte that can.
	n := len(prefix)
	for n > 0 && prefix[n-1] == 0xFF {
		n--
	}
	if n == 0 {
		return prefix, nil
	}
	end = make([]byte, n)
	copy(end, prefix[:n])
	end[n-1]++
	return prefix, end
}
