package errors

import (
	"reflect"
	"testing"
)

func TestFieldErrors(t *testing.T) {
	// Built once so that results compare with DeepEqual.
	var (
		negativeRate = Field("Rate", ErrInvalidAmount, "negative")
		zeroRate     = Field("Rate", ErrInput, "zero")
		noCurrency   = Field("Currency", ErrEmpty, "required")
		badVault     = Field("Vault", Append(zeroRate, Append(noCurrency, ErrState)), "invalid vault")
		outerName    = Field("Currency", noCurrency, "outer")
	)

	cases := map[string]struct {
		err   error
		field string
		want  []error
	}{
		"single field": {
			err:   negativeRate,
			field: "Rate",
			want:  []error{negativeRate},
		},
		"both fields of a multi error": {
			err:   Append(negativeRate, zeroRate),
			field: "Rate",
			want:  []error{negativeRate, zeroRate},
		},
		"field holding a multi error": {
			err:   badVault,
			field: "Vault",
			want:  []error{badVault},
		},
		"nested field": {
			err:   badVault,
			field: "Currency",
			want:  []error{noCurrency},
		},
		"nested field behind wraps": {
			err:   Wrap(Wrap(badVault, "genesis"), "load"),
			field: "Rate",
			want:  []error{zeroRate},
		},
		"outermost of the same name wins": {
			err:   outerName,
			field: "Currency",
			want:  []error{outerName},
		},
		"innermost of different names": {
			err:   Field("Vault", Field("Currency", negativeRate, "c"), "v"),
			field: "Rate",
			want:  []error{negativeRate},
		},
		"several wrapped inside a multi error": {
			err: Wrap(Append(
				Wrap(negativeRate, "a"),
				Wrap(zeroRate, "b"),
				Wrap(noCurrency, "c"),
			), "outer"),
			field: "Rate",
			want:  []error{negativeRate, zeroRate},
		},
		"nil error":      {err: nil, field: "Rate"},
		"plain kind":     {err: ErrNotFound, field: "Rate"},
		"other field":    {err: Field("Threshold", ErrInput, "x"), field: "Rate"},
		"no match below": {err: Wrap(badVault, "load"), field: "Threshold"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := FieldErrors(tc.err, tc.field)
			if !reflect.DeepEqual(tc.want, got) {
				t.Fatalf("want %#v\n got %#v", tc.want, got)
			}
		})
	}
}
