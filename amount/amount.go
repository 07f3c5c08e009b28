/*
Package amount provides the fixed point number every ledger computes with.

An Amount is a signed decimal with Precision digits after the point. All
multiplications and divisions truncate toward zero. Arithmetic never panics:
results that do not fit MaxBitLen bits are reported as ErrOverflow and a
division by zero as ErrInvalidAmount.
*/
package amount

import (
	"encoding/json"
	"math/big"

	sdkmath "cosmossdk.io/math"
	"github.com/iov-one/stakeweave/errors"
)

const (
	// Precision is the number of decimal places every amount carries.
	Precision = sdkmath.LegacyPrecision

	// MaxBitLen is the upper bound of the bit length of the scaled
	// integer backing an amount.
	MaxBitLen = 255
)

// Amount is a signed fixed point number. The zero value is zero.
type Amount struct {
	dec sdkmath.LegacyDec
}

// Zero returns an amount of zero.
func Zero() Amount {
	return Amount{dec: sdkmath.LegacyZeroDec()}
}

// NewAmount returns an amount holding a whole number.
func NewAmount(whole int64) Amount {
	return Amount{dec: sdkmath.LegacyNewDec(whole)}
}

// NewAmountWithPrec returns value * 10^-prec, so NewAmountWithPrec(15, 1)
// is 1.5.
func NewAmountWithPrec(value, prec int64) Amount {
	return Amount{dec: sdkmath.LegacyNewDecWithPrec(value, prec)}
}

// Parse reads a decimal string such as "12", "-3.5" or "0.000001".
// More than Precision decimal places are rejected.
func Parse(s string) (Amount, error) {
	d, err := sdkmath.LegacyNewDecFromStr(s)
	if err != nil {
		return Amount{}, errors.Wrapf(errors.ErrInvalidAmount, "parse %q: %s", s, err)
	}
	a := Amount{dec: d}
	if err := a.Validate(); err != nil {
		return Amount{}, err
	}
	return a, nil
}

// MustParse is Parse that panics on error. Use only for constants.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) d() sdkmath.LegacyDec {
	if a.dec.IsNil() {
		return sdkmath.LegacyZeroDec()
	}
	return a.dec
}

// Validate returns an error if the amount exceeds MaxBitLen.
func (a Amount) Validate() error {
	if n := a.d().BigInt().BitLen(); n > MaxBitLen {
		return errors.Wrapf(errors.ErrOverflow, "%d bits", n)
	}
	return nil
}

// RequireNonNegative returns ErrInvalidAmount for a negative amount.
func (a Amount) RequireNonNegative() error {
	if a.IsNegative() {
		return errors.Wrapf(errors.ErrInvalidAmount, "negative amount %s", a)
	}
	return a.Validate()
}

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool {
	return a.d().IsZero()
}

// IsNegative returns true if the amount is below zero.
func (a Amount) IsNegative() bool {
	return a.d().IsNegative()
}

// IsPositive returns true if the amount is above zero.
func (a Amount) IsPositive() bool {
	return a.d().IsPositive()
}

// Equal returns true if both amounts hold the same value.
func (a Amount) Equal(b Amount) bool {
	return a.d().Equal(b.d())
}

// Cmp returns -1, 0 or 1 if a is less than, equal to or greater than b.
func (a Amount) Cmp(b Amount) int {
	switch x, y := a.d(), b.d(); {
	case x.LT(y):
		return -1
	case x.GT(y):
		return 1
	default:
		return 0
	}
}

// Neg returns -a.
func (a Amount) Neg() Amount {
	return Amount{dec: a.d().Neg()}
}

// Abs returns the absolute value of a.
func (a Amount) Abs() Amount {
	return Amount{dec: a.d().Abs()}
}

// Truncate drops the fractional part, rounding toward zero.
func (a Amount) Truncate() Amount {
	return Amount{dec: a.d().TruncateDec()}
}

// Int64 returns the whole part of the amount.
func (a Amount) Int64() (int64, error) {
	i := a.d().TruncateInt()
	if !i.IsInt64() {
		return 0, errors.Wrapf(errors.ErrOverflow, "%s does not fit int64", a)
	}
	return i.Int64(), nil
}

// Add returns a + b.
func (a Amount) Add(b Amount) (Amount, error) {
	return compute(func() sdkmath.LegacyDec { return a.d().Add(b.d()) })
}

// Sub returns a - b.
func (a Amount) Sub(b Amount) (Amount, error) {
	return compute(func() sdkmath.LegacyDec { return a.d().Sub(b.d()) })
}

// Mul returns a * b truncated to Precision decimals.
func (a Amount) Mul(b Amount) (Amount, error) {
	return compute(func() sdkmath.LegacyDec { return a.d().MulTruncate(b.d()) })
}

// Quo returns a / b truncated to Precision decimals.
func (a Amount) Quo(b Amount) (Amount, error) {
	if b.IsZero() {
		return Amount{}, errors.Wrapf(errors.ErrInvalidAmount, "division of %s by zero", a)
	}
	return compute(func() sdkmath.LegacyDec { return a.d().QuoTruncate(b.d()) })
}

// MulQuo returns a * b / c. The product is kept at full precision, so
// only the division truncates.
func (a Amount) MulQuo(b, c Amount) (Amount, error) {
	if c.IsZero() {
		return Amount{}, errors.Wrapf(errors.ErrInvalidAmount, "division of %s by zero", a)
	}
	return compute(func() sdkmath.LegacyDec {
		num := new(big.Int).Mul(a.d().BigInt(), b.d().BigInt())
		return sdkmath.LegacyNewDecFromBigIntWithPrec(num.Quo(num, c.d().BigInt()), Precision)
	})
}

// compute runs op, turning the panics of out of range results into
// ErrOverflow.
func compute(op func() sdkmath.LegacyDec) (res Amount, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = Amount{}, errors.Wrapf(errors.ErrOverflow, "%v", r)
		}
	}()
	res = Amount{dec: op()}
	if err := res.Validate(); err != nil {
		return Amount{}, err
	}
	return res, nil
}

// Max returns the larger of a and b.
func Max(a, b Amount) Amount {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

// Min returns the smaller of a and b.
func Min(a, b Amount) Amount {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

// Sum adds all amounts.
func Sum(amounts ...Amount) (Amount, error) {
	total := Zero()
	for _, a := range amounts {
		var err error
		if total, err = total.Add(a); err != nil {
			return Amount{}, err
		}
	}
	return total, nil
}

// String returns the decimal representation with all Precision digits.
func (a Amount) String() string {
	return a.d().String()
}

// MarshalJSON encodes the amount as a decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts a decimal string.
func (a *Amount) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Wrap(errors.ErrInvalidAmount, "amount must be a string")
	}
	val, err := Parse(s)
	if err != nil {
		return err
	}
	*a = val
	return nil
}
