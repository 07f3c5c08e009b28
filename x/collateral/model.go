package collateral

import (
	"regexp"

	"github.com/iov-one/stakeweave"
	"github.com/iov-one/stakeweave/amount"
	"github.com/iov-one/stakeweave/errors"
	"github.com/iov-one/stakeweave/orm"
)

var isCurrency = regexp.MustCompile(`^[A-Z]{3,4}$`).MatchString

// Currency holds the parameters of a collateral currency. A zero rate or
// threshold was not set yet and the currency cannot back vaults until both
// are.
type Currency struct {
	// ExchangeRate is the price of the rewarded unit in this currency.
	ExchangeRate amount.Amount `json:"exchange_rate"`
	// SecureThreshold is the global collateralization ratio.
	SecureThreshold amount.Amount `json:"secure_threshold"`
}

var _ orm.Model = (*Currency)(nil)

func (c *Currency) Validate() error {
	var errs error
	if c.ExchangeRate.IsNegative() {
		errs = errors.AppendField(errs, "ExchangeRate", errors.ErrInvalidAmount)
	}
	if c.SecureThreshold.IsNegative() {
		errs = errors.AppendField(errs, "SecureThreshold", errors.ErrInvalidAmount)
	}
	return errs
}

func (c *Currency) Marshal() ([]byte, error) {
	return stakeweave.MarshalJSON(c)
}

func (c *Currency) Unmarshal(raw []byte) error {
	return stakeweave.UnmarshalJSON(raw, c)
}

func (c *Currency) ready() bool {
	return c.ExchangeRate.IsPositive() && c.SecureThreshold.IsPositive()
}

// VaultSettings keeps the per vault overrides.
type VaultSettings struct {
	// CustomThreshold applies when it is above the global threshold of
	// the currency. Zero means none.
	CustomThreshold amount.Amount `json:"custom_threshold"`
}

var _ orm.Model = (*VaultSettings)(nil)

func (v *VaultSettings) Validate() error {
	if v.CustomThreshold.IsNegative() {
		return errors.Field("CustomThreshold", errors.ErrInvalidAmount, "negative")
	}
	return nil
}

func (v *VaultSettings) Marshal() ([]byte, error) {
	return stakeweave.MarshalJSON(v)
}

func (v *VaultSettings) Unmarshal(raw []byte) error {
	return stakeweave.UnmarshalJSON(raw, v)
}

// VaultID identifies a vault, an account backing a single currency.
type VaultID struct {
	Account  stakeweave.Address `json:"account"`
	Currency string             `json:"currency"`
}

func (v VaultID) Validate() error {
	var errs error
	if v.Account.IsZero() {
		errs = errors.AppendField(errs, "Account", errors.ErrEmpty)
	}
	if !isCurrency(v.Currency) {
		errs = errors.AppendField(errs, "Currency", errors.Wrapf(errors.ErrInput, "%q", v.Currency))
	}
	return errs
}

func (v VaultID) String() string {
	return v.Currency + "/" + v.Account.String()
}

func (v VaultID) key() []byte {
	return append([]byte(v.Currency+"/"), v.Account[:]...)
}

// CurrencyKey is the stakeholder key of a currency in the root pool.
func CurrencyKey(currency string) stakeweave.Address {
	return stakeweave.NewCondition("collat", "currency", []byte(currency)).Address()
}
