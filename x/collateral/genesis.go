package collateral

import (
	"strconv"

	"github.com/iov-one/stakeweave"
	"github.com/iov-one/stakeweave/amount"
	"github.com/iov-one/stakeweave/errors"
)

const optKey = "collateral"

// GenesisCurrency registers a currency at genesis.
type GenesisCurrency struct {
	Currency        string        `json:"currency"`
	ExchangeRate    amount.Amount `json:"exchange_rate"`
	SecureThreshold amount.Amount `json:"secure_threshold"`
}

// Initializer fulfils the Initializer interface to load the currencies of
// a model from the genesis file.
type Initializer struct {
	Model *Model
}

var _ stakeweave.Initializer = (*Initializer)(nil)

// FromGenesis stores every currency listed under "collateral".
func (i *Initializer) FromGenesis(opts stakeweave.Options, db stakeweave.KVStore) error {
	var genesis struct {
		Currencies []GenesisCurrency `json:"currencies"`
	}
	if err := opts.ReadOptions(optKey, &genesis); err != nil {
		return err
	}
	for n, g := range genesis.Currencies {
		if !isCurrency(g.Currency) {
			return errors.Field("Currencies."+strconv.Itoa(n)+".Currency", ErrUnknownCurrency, "%q", g.Currency)
		}
		cur := &Currency{ExchangeRate: g.ExchangeRate, SecureThreshold: g.SecureThreshold}
		if err := i.Model.currencies.Save(db, []byte(g.Currency), cur); err != nil {
			return errors.Wrapf(err, "currency %s", g.Currency)
		}
	}
	return nil
}
