package weavetest

import (
	"encoding/binary"
	"testing"

	"github.com/iov-one/stakeweave"
)

// NewCondition returns a condition owned by the test extension, unique for
// the given name.
func NewCondition(name string) stakeweave.Condition {
	return stakeweave.NewCondition("test", "account", []byte(name))
}

// NewAddress returns the address of NewCondition(name).
func NewAddress(name string) stakeweave.Address {
	return NewCondition(name).Address()
}

// SequenceAddress returns a readable address, the big endian encoding of n
// padded with zeros. Sequence addresses sort in the order of n.
func SequenceAddress(n uint64) stakeweave.Address {
	var a stakeweave.Address
	binary.BigEndian.PutUint64(a[stakeweave.AddressLength-8:], n)
	return a
}

// ParseAddress takes an address in a human readable format and returns
// its binary representation. This function is a test helper that is using
// stakeweave.ParseAddress function functionality.
func ParseAddress(t testing.TB, encodedAddress string) stakeweave.Address {
	t.Helper()

	addr, err := stakeweave.ParseAddress(encodedAddress)
	if err != nil {
		t.Fatalf("cannot parse %q address: %s", encodedAddress, err)
	}
	return addr
}
