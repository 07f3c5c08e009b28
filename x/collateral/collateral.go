package collateral

import (
	"github.com/iov-one/stakeweave"
	"github.com/iov-one/stakeweave/amount"
	"github.com/iov-one/stakeweave/errors"
	"github.com/iov-one/stakeweave/orm"
	"github.com/iov-one/stakeweave/x/router"
)

// Model maps collateral operations onto the stake of a three level router.
type Model struct {
	router     *router.Router
	currencies orm.Bucket
	vaults     orm.Bucket
}

// NewModel returns a model routing rewards through r. Its own records are
// stored next to the pools of r.
func NewModel(r *router.Router) *Model {
	return &Model{
		router:     r,
		currencies: orm.NewBucket(r.Name() + "_currency"),
		vaults:     orm.NewBucket(r.Name() + "_vault"),
	}
}

// Router returns the router the model updates.
func (m *Model) Router() *router.Router {
	return m.router
}

// SetExchangeRate sets the exchange rate of currency. Registering a rate
// for the first time only stores it. A later change updates the capacity
// of the currency.
func (m *Model) SetExchangeRate(ctx stakeweave.Context, db stakeweave.CacheableKVStore, currency string, rate amount.Amount) error {
	if !isCurrency(currency) {
		return errors.Wrapf(ErrUnknownCurrency, "%q", currency)
	}
	if !rate.IsPositive() {
		return errors.Wrapf(errors.ErrInvalidAmount, "exchange rate %s", rate)
	}
	return stakeweave.Atomic(db, func(db stakeweave.CacheableKVStore) error {
		cur, err := m.currency(db, currency)
		if err != nil {
			return err
		}
		first := cur.ExchangeRate.IsZero()
		cur.ExchangeRate = rate
		if err := m.currencies.Save(db, []byte(currency), cur); err != nil {
			return err
		}
		stakeweave.GetLogger(ctx).Info("exchange rate set", "currency", currency, "rate", rate.String())
		if first {
			return nil
		}

		contributions, err := m.router.Pool(CurrencyKey(currency)).Pool(db)
		if err != nil {
			return err
		}
		var c amount.Calc
		capacity := c.Quo(contributions.TotalCurrentStake, rate)
		if err := c.Err(); err != nil {
			return err
		}
		delta, err := m.capacityDelta(db, currency, capacity)
		if err != nil {
			return err
		}
		return m.router.Update(ctx, db, []stakeweave.Address{CurrencyKey(currency)}, []amount.Amount{delta})
	})
}

// SetSecureThreshold sets the global secure threshold of currency.
// Registering a threshold for the first time only stores it. A later change
// rebalances every vault of the currency without a higher custom
// threshold.
func (m *Model) SetSecureThreshold(ctx stakeweave.Context, db stakeweave.CacheableKVStore, currency string, threshold amount.Amount) error {
	if !isCurrency(currency) {
		return errors.Wrapf(ErrUnknownCurrency, "%q", currency)
	}
	if !threshold.IsPositive() {
		return errors.Wrapf(errors.ErrInvalidAmount, "secure threshold %s", threshold)
	}
	return stakeweave.Atomic(db, func(db stakeweave.CacheableKVStore) error {
		cur, err := m.currency(db, currency)
		if err != nil {
			return err
		}
		old := cur.SecureThreshold
		cur.SecureThreshold = threshold
		if err := m.currencies.Save(db, []byte(currency), cur); err != nil {
			return err
		}
		stakeweave.GetLogger(ctx).Info("secure threshold set", "currency", currency, "threshold", threshold.String())
		if old.IsZero() || !cur.ready() {
			return nil
		}

		vaults, err := m.router.Pool(CurrencyKey(currency)).Stakeholders(db)
		if err != nil {
			return err
		}
		for _, v := range vaults {
			vault := VaultID{Account: v.Key, Currency: currency}
			settings, err := m.settings(db, vault)
			if err != nil {
				return err
			}
			if amount.Max(old, settings.CustomThreshold).Equal(amount.Max(threshold, settings.CustomThreshold)) {
				continue
			}
			if err := m.rebalance(ctx, db, vault, vault.Account, amount.Zero()); err != nil {
				return errors.Wrapf(err, "vault %s", vault)
			}
		}
		return nil
	})
}

// SetCustomSecureThreshold sets a threshold for a single vault. It
// applies only while it is above the global one. Zero removes it.
func (m *Model) SetCustomSecureThreshold(ctx stakeweave.Context, db stakeweave.CacheableKVStore, vault VaultID, threshold amount.Amount) error {
	if err := vault.Validate(); err != nil {
		return err
	}
	if err := threshold.RequireNonNegative(); err != nil {
		return err
	}
	return stakeweave.Atomic(db, func(db stakeweave.CacheableKVStore) error {
		settings := &VaultSettings{CustomThreshold: threshold}
		if err := m.vaults.Save(db, vault.key(), settings); err != nil {
			return err
		}
		known, err := m.router.Pool(CurrencyKey(vault.Currency)).Has(db, vault.Account)
		if err != nil || !known {
			return err
		}
		return m.rebalance(ctx, db, vault, vault.Account, amount.Zero())
	})
}

// DepositCollateral adds collateral owned by the vault itself.
func (m *Model) DepositCollateral(ctx stakeweave.Context, db stakeweave.CacheableKVStore, vault VaultID, amt amount.Amount) error {
	return m.DepositNomination(ctx, db, vault, vault.Account, amt)
}

// WithdrawCollateral removes collateral owned by the vault itself.
func (m *Model) WithdrawCollateral(ctx stakeweave.Context, db stakeweave.CacheableKVStore, vault VaultID, amt amount.Amount) error {
	return m.WithdrawNomination(ctx, db, vault, vault.Account, amt)
}

// DepositNomination adds collateral owned by nominator to the vault.
func (m *Model) DepositNomination(ctx stakeweave.Context, db stakeweave.CacheableKVStore, vault VaultID, nominator stakeweave.Address, amt amount.Amount) error {
	if err := vault.Validate(); err != nil {
		return err
	}
	if err := amt.RequireNonNegative(); err != nil {
		return err
	}
	return stakeweave.Atomic(db, func(db stakeweave.CacheableKVStore) error {
		if !nominator.Equals(vault.Account) {
			if err := m.requireVault(db, vault); err != nil {
				return err
			}
		}
		return m.rebalance(ctx, db, vault, nominator, amt)
	})
}

// WithdrawNomination removes collateral owned by nominator from the vault.
func (m *Model) WithdrawNomination(ctx stakeweave.Context, db stakeweave.CacheableKVStore, vault VaultID, nominator stakeweave.Address, amt amount.Amount) error {
	if err := vault.Validate(); err != nil {
		return err
	}
	if err := amt.RequireNonNegative(); err != nil {
		return err
	}
	return stakeweave.Atomic(db, func(db stakeweave.CacheableKVStore) error {
		if err := m.requireVault(db, vault); err != nil {
			return err
		}
		return m.rebalance(ctx, db, vault, nominator, amt.Neg())
	})
}

// SlashCollateral takes amt from the collateral of the vault, shared by the
// vault and its nominators in proportion to their deposits. The reward
// weight of the vault shrinks accordingly.
func (m *Model) SlashCollateral(ctx stakeweave.Context, db stakeweave.CacheableKVStore, vault VaultID, amt amount.Amount) error {
	if err := vault.Validate(); err != nil {
		return err
	}
	return stakeweave.Atomic(db, func(db stakeweave.CacheableKVStore) error {
		if err := m.requireVault(db, vault); err != nil {
			return err
		}
		path := []stakeweave.Address{CurrencyKey(vault.Currency), vault.Account}
		if err := m.router.Slash(ctx, db, path, amt); err != nil {
			return err
		}
		return m.rebalance(ctx, db, vault, vault.Account, amount.Zero())
	})
}

// Distribute credits reward, paid in rewardCurrency, to all collateral
// currencies by their capacity.
func (m *Model) Distribute(ctx stakeweave.Context, db stakeweave.CacheableKVStore, rewardCurrency string, reward amount.Amount) error {
	return m.router.Distribute(ctx, db, rewardCurrency, reward)
}

// WithdrawReward returns and resets the reward in rewardCurrency earned by
// the collateral staker deposited into vault.
func (m *Model) WithdrawReward(ctx stakeweave.Context, db stakeweave.CacheableKVStore, rewardCurrency string, vault VaultID, staker stakeweave.Address) (amount.Amount, error) {
	return m.router.WithdrawRewardPath(ctx, db, rewardCurrency, vaultPath(vault, staker))
}

// ComputeReward returns the reward WithdrawReward would return.
func (m *Model) ComputeReward(db stakeweave.CacheableKVStore, rewardCurrency string, vault VaultID, staker stakeweave.Address) (amount.Amount, error) {
	return m.router.ComputeReward(db, rewardCurrency, vaultPath(vault, staker))
}

// ComputeStake returns the collateral staker has left in vault after
// slashes.
func (m *Model) ComputeStake(db stakeweave.ReadOnlyKVStore, vault VaultID, staker stakeweave.Address) (amount.Amount, error) {
	return m.router.ComputeStake(db, vaultPath(vault, staker))
}

// Collateral returns the total collateral of the vault after slashes.
func (m *Model) Collateral(db stakeweave.ReadOnlyKVStore, vault VaultID) (amount.Amount, error) {
	pool, err := m.router.Pool(CurrencyKey(vault.Currency), vault.Account).Pool(db)
	if err != nil {
		return amount.Amount{}, err
	}
	return pool.TotalCurrentStake, nil
}

// SecureThreshold returns the threshold that applies to the vault, the
// higher of the global and the custom one.
func (m *Model) SecureThreshold(db stakeweave.ReadOnlyKVStore, vault VaultID) (amount.Amount, error) {
	cur, err := m.currency(db, vault.Currency)
	if err != nil {
		return amount.Amount{}, err
	}
	settings, err := m.settings(db, vault)
	if err != nil {
		return amount.Amount{}, err
	}
	return amount.Max(cur.SecureThreshold, settings.CustomThreshold), nil
}

// VaultCapacity returns the contribution of the vault expressed in the
// rewarded unit.
func (m *Model) VaultCapacity(db stakeweave.ReadOnlyKVStore, vault VaultID) (amount.Amount, error) {
	cur, err := m.currency(db, vault.Currency)
	if err != nil {
		return amount.Amount{}, err
	}
	if !cur.ExchangeRate.IsPositive() {
		return amount.Amount{}, errors.Wrapf(ErrUnknownCurrency, "no exchange rate for %s", vault.Currency)
	}
	contribution, err := stakeOrZero(m.router.Pool(CurrencyKey(vault.Currency)).ComputeStake(db, vault.Account))
	if err != nil {
		return amount.Amount{}, err
	}
	return contribution.Quo(cur.ExchangeRate)
}

// CurrencyCapacity returns the capacity of currency, its reward weight in
// the root pool.
func (m *Model) CurrencyCapacity(db stakeweave.ReadOnlyKVStore, currency string) (amount.Amount, error) {
	return stakeOrZero(m.router.Pool().ComputeStake(db, CurrencyKey(currency)))
}

// rebalance changes the collateral of nominator in vault by delta and
// updates the contribution of the vault and the capacity of its currency to
// match. All three stakes move in one router update, so rewards owed to
// each level are settled before its weights change.
func (m *Model) rebalance(ctx stakeweave.Context, db stakeweave.CacheableKVStore, vault VaultID, nominator stakeweave.Address, delta amount.Amount) error {
	cur, err := m.currency(db, vault.Currency)
	if err != nil {
		return err
	}
	if !cur.ready() {
		return errors.Wrapf(ErrUnknownCurrency, "%s is missing rate or threshold", vault.Currency)
	}
	settings, err := m.settings(db, vault)
	if err != nil {
		return err
	}
	threshold := amount.Max(cur.SecureThreshold, settings.CustomThreshold)

	collateral, err := m.Collateral(db, vault)
	if err != nil {
		return err
	}
	currencyKey := CurrencyKey(vault.Currency)
	vaults := m.router.Pool(currencyKey)
	oldContribution, err := stakeOrZero(vaults.ComputeStake(db, vault.Account))
	if err != nil {
		return err
	}
	contributions, err := vaults.Pool(db)
	if err != nil {
		return err
	}

	var c amount.Calc
	newCollateral := c.Add(collateral, delta)
	if newCollateral.IsNegative() {
		return errors.Wrapf(ErrInsufficientCollateral, "vault %s holds %s", vault, collateral)
	}
	newContribution := c.Quo(newCollateral, threshold)
	contributionDelta := c.Sub(newContribution, oldContribution)
	total := c.Add(contributions.TotalCurrentStake, contributionDelta)
	capacity := c.Quo(amount.Max(total, amount.Zero()), cur.ExchangeRate)
	if err := c.Err(); err != nil {
		return err
	}
	capacityDelta, err := m.capacityDelta(db, vault.Currency, capacity)
	if err != nil {
		return err
	}

	path := []stakeweave.Address{currencyKey, vault.Account}
	deltas := []amount.Amount{capacityDelta, contributionDelta}
	if !delta.IsZero() {
		path = append(path, nominator)
		deltas = append(deltas, delta)
	}
	if err := m.router.Update(ctx, db, path, deltas); err != nil {
		return err
	}
	stakeweave.GetLogger(ctx).Debug("vault rebalanced",
		"vault", vault.String(),
		"collateral", newCollateral.String(),
		"contribution", newContribution.String())
	return nil
}

// requireVault fails unless the vault ever deposited collateral.
func (m *Model) requireVault(db stakeweave.ReadOnlyKVStore, vault VaultID) error {
	known, err := m.router.Pool(CurrencyKey(vault.Currency)).Has(db, vault.Account)
	if err != nil {
		return err
	}
	if !known {
		return errors.Wrap(ErrUnknownVault, vault.String())
	}
	return nil
}

func (m *Model) capacityDelta(db stakeweave.ReadOnlyKVStore, currency string, capacity amount.Amount) (amount.Amount, error) {
	old, err := m.CurrencyCapacity(db, currency)
	if err != nil {
		return amount.Amount{}, err
	}
	return capacity.Sub(old)
}

func (m *Model) currency(db stakeweave.ReadOnlyKVStore, currency string) (*Currency, error) {
	cur := &Currency{ExchangeRate: amount.Zero(), SecureThreshold: amount.Zero()}
	if _, err := m.currencies.Load(db, []byte(currency), cur); err != nil {
		return nil, err
	}
	return cur, nil
}

func (m *Model) settings(db stakeweave.ReadOnlyKVStore, vault VaultID) (*VaultSettings, error) {
	settings := &VaultSettings{CustomThreshold: amount.Zero()}
	if _, err := m.vaults.Load(db, vault.key(), settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func vaultPath(vault VaultID, staker stakeweave.Address) []stakeweave.Address {
	return []stakeweave.Address{CurrencyKey(vault.Currency), vault.Account, staker}
}

// stakeOrZero treats a stakeholder that never deposited as holding
// nothing.
func stakeOrZero(stake amount.Amount, err error) (amount.Amount, error) {
	if errors.ErrUnknownStakeholder.Is(err) {
		return amount.Zero(), nil
	}
	return stake, err
}
