package weavetest

import (
	"testing"

	"github.com/iov-one/stakeweave/amount"
)

// AssertAmount fails the test if got is not exactly equal to the decimal
// want.
func AssertAmount(t testing.TB, want string, got amount.Amount) {
	t.Helper()
	if !amount.MustParse(want).Equal(got) {
		t.Fatalf("want amount %s, got %s", want, got)
	}
}

// AssertWhole fails the test if the whole part of got is not want. Use it
// for values that are exact only up to truncation.
func AssertWhole(t testing.TB, want int64, got amount.Amount) {
	t.Helper()
	whole, err := got.Int64()
	if err != nil {
		t.Fatalf("cannot read whole part of %s: %s", got, err)
	}
	if whole != want {
		t.Fatalf("want whole amount %d, got %s", want, got)
	}
}

// AssertClose fails the test if got differs from want by more than
// tolerance.
func AssertClose(t testing.TB, want, got amount.Amount, tolerance string) {
	t.Helper()
	diff, err := want.Sub(got)
	if err != nil {
		t.Fatalf("cannot compare %s and %s: %s", want, got, err)
	}
	if diff.Abs().Cmp(amount.MustParse(tolerance)) > 0 {
		t.Fatalf("want %s within %s, got %s", want, tolerance, got)
	}
}

// Amount parses a decimal or fails the test.
func Amount(t testing.TB, s string) amount.Amount {
	t.Helper()
	a, err := amount.Parse(s)
	if err != nil {
		t.Fatalf("cannot parse amount %q: %s", s, err)
	}
	return a
}
