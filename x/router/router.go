package router

import (
	"context"
	"encoding/hex"
	"regexp"

	"github.com/iov-one/stakeweave"
	"github.com/iov-one/stakeweave/amount"
	"github.com/iov-one/stakeweave/errors"
	"github.com/iov-one/stakeweave/x/ledger"
)

var isRouterName = regexp.MustCompile(`^[a-z0-9_]{3,15}$`).MatchString

// Router routes rewards and slashes through a tree of ledgers.
type Router struct {
	name string
	conf ledger.Configuration
	root *ledger.Ledger
}

// NewRouter returns a router with all its pools prefixed by name.
func NewRouter(name string, conf ledger.Configuration) *Router {
	if !isRouterName(name) {
		panic(errors.Wrapf(errors.ErrHuman, "invalid router name %q", name))
	}
	return &Router{
		name: name,
		conf: conf,
		root: ledger.NewLedger(name, conf),
	}
}

func (r *Router) Name() string {
	return r.name
}

// Pool returns the ledger at the given path. Stakeholders of the returned
// ledger are the children of the last element of the path.
func (r *Router) Pool(path ...stakeweave.Address) *ledger.Ledger {
	if len(path) == 0 {
		return r.root
	}
	var raw []byte
	for _, p := range path {
		raw = append(raw, p[:]...)
	}
	id := stakeweave.NewAddress(raw)
	return ledger.NewLedger(r.name+"_"+hex.EncodeToString(id[:8]), r.conf)
}

// UpdateStake changes the stake of parentKey in the root pool and the
// stake of childKey in the pool of parentKey. The reward owed to parentKey
// is moved into its pool after the first and before the second change.
func (r *Router) UpdateStake(
	ctx stakeweave.Context,
	db stakeweave.CacheableKVStore,
	parentKey stakeweave.Address,
	parentDelta amount.Amount,
	childKey stakeweave.Address,
	childDelta amount.Amount,
) error {
	path := []stakeweave.Address{parentKey, childKey}
	deltas := []amount.Amount{parentDelta, childDelta}
	return r.Update(ctx, db, path, deltas)
}

// Update changes the stake of path[i] in the pool of path[:i] by deltas[i],
// starting at the root. A positive delta deposits, a negative one
// withdraws. Between two levels the reward owed to path[i] is moved into
// its pool.
func (r *Router) Update(ctx stakeweave.Context, db stakeweave.CacheableKVStore, path []stakeweave.Address, deltas []amount.Amount) error {
	if len(path) != len(deltas) {
		return errors.Wrapf(errors.ErrInput, "%d keys and %d deltas", len(path), len(deltas))
	}
	return stakeweave.Atomic(db, func(db stakeweave.CacheableKVStore) error {
		for i, key := range path {
			if err := applyDelta(r.Pool(path[:i]...), db, key, deltas[i]); err != nil {
				return errors.Wrapf(err, "level %d", i)
			}
			if i+1 < len(path) {
				if err := r.pull(ctx, db, path[:i+1]); err != nil {
					return err
				}
			}
		}
		stakeweave.GetLogger(ctx).Debug("stake updated", "router", r.name, "depth", len(path))
		return nil
	})
}

func applyDelta(l *ledger.Ledger, db stakeweave.KVStore, key stakeweave.Address, delta amount.Amount) error {
	if delta.IsNegative() {
		return l.WithdrawStake(db, key, delta.Abs())
	}
	return l.DepositStake(db, key, delta)
}

// pull moves the rewards owed to the last key of path, in every reward
// currency, from the pool above it into its own pool. A key that never had
// stake owes nothing.
func (r *Router) pull(ctx stakeweave.Context, db stakeweave.KVStore, path []stakeweave.Address) error {
	last := len(path) - 1
	parent := r.Pool(path[:last]...)
	pool, err := parent.Pool(db)
	if err != nil {
		return err
	}
	child := r.Pool(path...)
	for _, cur := range pool.Currencies() {
		reward, err := parent.WithdrawReward(db, cur, path[last])
		switch {
		case errors.ErrUnknownStakeholder.Is(err):
			return nil
		case err != nil:
			return err
		case reward.IsZero():
			continue
		}
		if err := child.DistributeReward(db, cur, reward); err != nil {
			return errors.Wrapf(err, "forward %s %s into %s", reward, cur, child.Name())
		}
		stakeweave.GetLogger(ctx).Debug("reward forwarded", "pool", child.Name(), "currency", cur, "reward", reward.String())
	}
	return nil
}

// pullAll moves rewards down every level of path, ending in the pool of
// the full path.
func (r *Router) pullAll(ctx stakeweave.Context, db stakeweave.KVStore, path []stakeweave.Address) error {
	for i := range path {
		if err := r.pull(ctx, db, path[:i+1]); err != nil {
			return err
		}
	}
	return nil
}

// Distribute credits reward of currency to the children of the root, in
// proportion to their stake.
func (r *Router) Distribute(ctx stakeweave.Context, db stakeweave.CacheableKVStore, currency string, reward amount.Amount) error {
	return stakeweave.Atomic(db, func(db stakeweave.CacheableKVStore) error {
		if err := r.root.DistributeReward(db, currency, reward); err != nil {
			return err
		}
		stakeweave.GetLogger(ctx).Debug("reward distributed", "router", r.name, "currency", currency, "reward", reward.String())
		return nil
	})
}

// WithdrawReward returns and resets the reward of currency of childKey in
// the pool of parentKey, after moving down everything owed to parentKey.
func (r *Router) WithdrawReward(ctx stakeweave.Context, db stakeweave.CacheableKVStore, currency string, parentKey, childKey stakeweave.Address) (amount.Amount, error) {
	return r.WithdrawRewardPath(ctx, db, currency, []stakeweave.Address{parentKey, childKey})
}

// WithdrawRewardPath returns and resets the reward of currency of the last
// key of path, after moving down the rewards of all its ancestors.
func (r *Router) WithdrawRewardPath(ctx stakeweave.Context, db stakeweave.CacheableKVStore, currency string, path []stakeweave.Address) (amount.Amount, error) {
	if len(path) == 0 {
		return amount.Amount{}, errors.Wrap(errors.ErrInput, "empty path")
	}
	var reward amount.Amount
	err := stakeweave.Atomic(db, func(db stakeweave.CacheableKVStore) error {
		last := len(path) - 1
		if err := r.pullAll(ctx, db, path[:last]); err != nil {
			return err
		}
		var err error
		reward, err = r.Pool(path[:last]...).WithdrawReward(db, currency, path[last])
		return err
	})
	if err != nil {
		return amount.Amount{}, err
	}
	return reward, nil
}

// ComputeReward returns the reward WithdrawRewardPath would return,
// without changing the store.
func (r *Router) ComputeReward(db stakeweave.CacheableKVStore, currency string, path []stakeweave.Address) (amount.Amount, error) {
	cache := db.CacheWrap()
	defer cache.Discard()
	return r.WithdrawRewardPath(context.Background(), cache, currency, path)
}

// ComputeStake returns the post slash stake of the last key of path in the
// pool of its parent.
func (r *Router) ComputeStake(db stakeweave.ReadOnlyKVStore, path []stakeweave.Address) (amount.Amount, error) {
	if len(path) == 0 {
		return amount.Amount{}, errors.Wrap(errors.ErrInput, "empty path")
	}
	last := len(path) - 1
	return r.Pool(path[:last]...).ComputeStake(db, path[last])
}

// Slash takes amt from the stakeholders of the pool at path. Rewards owed
// to that pool are moved into it first, so they are split among the
// stakeholders as they were before the slash.
func (r *Router) Slash(ctx stakeweave.Context, db stakeweave.CacheableKVStore, path []stakeweave.Address, amt amount.Amount) error {
	return stakeweave.Atomic(db, func(db stakeweave.CacheableKVStore) error {
		if err := r.pullAll(ctx, db, path); err != nil {
			return err
		}
		pool := r.Pool(path...)
		if err := pool.SlashStake(db, amt); err != nil {
			return errors.Wrapf(err, "slash %s", pool.Name())
		}
		stakeweave.GetLogger(ctx).Info("pool slashed", "pool", pool.Name(), "amount", amt.String())
		return nil
	})
}
