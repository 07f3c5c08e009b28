package app

import (
	"context"
	"time"

	"github.com/iov-one/stakeweave"
	"github.com/iov-one/stakeweave/amount"
	"github.com/iov-one/stakeweave/errors"
	"github.com/iov-one/stakeweave/store"
	"github.com/iov-one/stakeweave/x/collateral"
	"github.com/iov-one/stakeweave/x/ledger"
	"github.com/iov-one/stakeweave/x/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tendermint/tendermint/libs/log"
)

// RouterName prefixes all the pools of an engine.
const RouterName = "stake"

// Engine is the host facing side of the reward engine. It is safe for
// concurrent use: mutations are applied one at a time and all-or-nothing,
// reads run on a consistent snapshot.
type Engine struct {
	db      *store.Exclusive
	logger  log.Logger
	metrics *metrics

	// model is only replaced while the write lock is held
	model *collateral.Model
}

// NewEngine returns an engine on db. The slash mode is read from db, see
// FromGenesis to set it. db must not be used by anybody else.
func NewEngine(db stakeweave.CacheableKVStore, logger log.Logger) (*Engine, error) {
	conf, err := ledger.LoadConfiguration(db)
	if err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Engine{
		db:      store.NewExclusive(db),
		logger:  logger,
		metrics: newMetrics(),
		model:   newModel(conf),
	}, nil
}

// Register exposes the engine metrics through reg.
func (e *Engine) Register(reg prometheus.Registerer) error {
	return e.metrics.register(reg)
}

func newModel(conf ledger.Configuration) *collateral.Model {
	return collateral.NewModel(router.NewRouter(RouterName, conf))
}

// FromGenesis initializes the engine configuration and currencies.
func (e *Engine) FromGenesis(ctx context.Context, opts stakeweave.Options) error {
	return e.update(ctx, "genesis", func(ctx stakeweave.Context, db stakeweave.CacheableKVStore) error {
		init := stakeweave.ChainInitializers(
			ledger.Initializer{},
			&collateral.Initializer{Model: e.model},
		)
		if err := init.FromGenesis(opts, db); err != nil {
			return err
		}
		conf, err := ledger.LoadConfiguration(db)
		if err != nil {
			return err
		}
		e.model = newModel(conf)
		stakeweave.GetLogger(ctx).Info("genesis loaded", "slash_mode", string(conf.SlashMode))
		return nil
	})
}

// Deposit adds collateral of the vault itself.
func (e *Engine) Deposit(ctx context.Context, vault collateral.VaultID, amt amount.Amount) error {
	return e.update(ctx, "deposit", func(ctx stakeweave.Context, db stakeweave.CacheableKVStore) error {
		return e.model.DepositCollateral(ctx, db, vault, amt)
	})
}

// Withdraw removes collateral of the vault itself.
func (e *Engine) Withdraw(ctx context.Context, vault collateral.VaultID, amt amount.Amount) error {
	return e.update(ctx, "withdraw", func(ctx stakeweave.Context, db stakeweave.CacheableKVStore) error {
		return e.model.WithdrawCollateral(ctx, db, vault, amt)
	})
}

// Nominate adds collateral of nominator to the vault.
func (e *Engine) Nominate(ctx context.Context, vault collateral.VaultID, nominator stakeweave.Address, amt amount.Amount) error {
	return e.update(ctx, "nominate", func(ctx stakeweave.Context, db stakeweave.CacheableKVStore) error {
		return e.model.DepositNomination(ctx, db, vault, nominator, amt)
	})
}

// Unnominate removes collateral of nominator from the vault.
func (e *Engine) Unnominate(ctx context.Context, vault collateral.VaultID, nominator stakeweave.Address, amt amount.Amount) error {
	return e.update(ctx, "unnominate", func(ctx stakeweave.Context, db stakeweave.CacheableKVStore) error {
		return e.model.WithdrawNomination(ctx, db, vault, nominator, amt)
	})
}

// InjectReward distributes reward, paid in rewardCurrency, to all
// collateral currencies by capacity.
func (e *Engine) InjectReward(ctx context.Context, rewardCurrency string, reward amount.Amount) error {
	return e.update(ctx, "inject_reward", func(ctx stakeweave.Context, db stakeweave.CacheableKVStore) error {
		return e.model.Distribute(ctx, db, rewardCurrency, reward)
	})
}

// InjectSlash takes amt from the collateral of the vault.
func (e *Engine) InjectSlash(ctx context.Context, vault collateral.VaultID, amt amount.Amount) error {
	return e.update(ctx, "inject_slash", func(ctx stakeweave.Context, db stakeweave.CacheableKVStore) error {
		return e.model.SlashCollateral(ctx, db, vault, amt)
	})
}

func (e *Engine) SetExchangeRate(ctx context.Context, currency string, rate amount.Amount) error {
	return e.update(ctx, "set_exchange_rate", func(ctx stakeweave.Context, db stakeweave.CacheableKVStore) error {
		return e.model.SetExchangeRate(ctx, db, currency, rate)
	})
}

// SetThreshold sets the global secure threshold of currency.
func (e *Engine) SetThreshold(ctx context.Context, currency string, threshold amount.Amount) error {
	return e.update(ctx, "set_threshold", func(ctx stakeweave.Context, db stakeweave.CacheableKVStore) error {
		return e.model.SetSecureThreshold(ctx, db, currency, threshold)
	})
}

// SetVaultThreshold sets the custom secure threshold of a vault.
func (e *Engine) SetVaultThreshold(ctx context.Context, vault collateral.VaultID, threshold amount.Amount) error {
	return e.update(ctx, "set_vault_threshold", func(ctx stakeweave.Context, db stakeweave.CacheableKVStore) error {
		return e.model.SetCustomSecureThreshold(ctx, db, vault, threshold)
	})
}

// ClaimReward pays out the reward in rewardCurrency of staker in vault.
func (e *Engine) ClaimReward(ctx context.Context, rewardCurrency string, vault collateral.VaultID, staker stakeweave.Address) (amount.Amount, error) {
	var reward amount.Amount
	err := e.update(ctx, "claim_reward", func(ctx stakeweave.Context, db stakeweave.CacheableKVStore) error {
		var err error
		reward, err = e.model.WithdrawReward(ctx, db, rewardCurrency, vault, staker)
		return err
	})
	return reward, err
}

// CurrentStake returns the collateral of staker in vault after slashes.
func (e *Engine) CurrentStake(ctx context.Context, vault collateral.VaultID, staker stakeweave.Address) (amount.Amount, error) {
	var stake amount.Amount
	err := e.view(ctx, "current_stake", func(ctx stakeweave.Context, db stakeweave.CacheableKVStore) error {
		var err error
		stake, err = e.model.ComputeStake(db, vault, staker)
		return err
	})
	return stake, err
}

// PendingReward returns what ClaimReward would pay out.
func (e *Engine) PendingReward(ctx context.Context, rewardCurrency string, vault collateral.VaultID, staker stakeweave.Address) (amount.Amount, error) {
	var reward amount.Amount
	err := e.view(ctx, "pending_reward", func(ctx stakeweave.Context, db stakeweave.CacheableKVStore) error {
		var err error
		reward, err = e.model.ComputeReward(db, rewardCurrency, vault, staker)
		return err
	})
	return reward, err
}

// Capacity returns the reward weight of currency.
func (e *Engine) Capacity(ctx context.Context, currency string) (amount.Amount, error) {
	var capacity amount.Amount
	err := e.view(ctx, "capacity", func(ctx stakeweave.Context, db stakeweave.CacheableKVStore) error {
		var err error
		capacity, err = e.model.CurrencyCapacity(db, currency)
		return err
	})
	return capacity, err
}

// Collateral returns the collateral of a vault after slashes.
func (e *Engine) Collateral(ctx context.Context, vault collateral.VaultID) (amount.Amount, error) {
	var total amount.Amount
	err := e.view(ctx, "collateral", func(ctx stakeweave.Context, db stakeweave.CacheableKVStore) error {
		var err error
		total, err = e.model.Collateral(db, vault)
		return err
	})
	return total, err
}

type operation func(stakeweave.Context, stakeweave.CacheableKVStore) error

// update runs op under the write lock. Nothing op wrote is kept if it
// fails or panics.
func (e *Engine) update(ctx context.Context, name string, op operation) (err error) {
	defer func(start time.Time) { e.metrics.observe(name, start, err) }(time.Now())

	ctx = stakeweave.WithLogger(ctx, e.logger.With("op", name))
	err = e.db.Update(func(db stakeweave.CacheableKVStore) (err error) {
		defer errors.Recover(&err)
		return op(ctx, db)
	})
	if err != nil {
		code, msg := errors.Info(err, false)
		stakeweave.GetLogger(ctx).Info("operation rejected", "code", code, "err", msg)
	}
	return err
}

func (e *Engine) view(ctx context.Context, name string, op operation) (err error) {
	defer func(start time.Time) { e.metrics.observe(name, start, err) }(time.Now())

	ctx = stakeweave.WithLogger(ctx, e.logger.With("op", name))
	return e.db.View(func(db stakeweave.CacheableKVStore) (err error) {
		defer errors.Recover(&err)
		return op(ctx, db)
	})
}
