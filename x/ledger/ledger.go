package ledger

import (
	"encoding/binary"
	"regexp"
	"sort"

	"github.com/iov-one/stakeweave"
	"github.com/iov-one/stakeweave/amount"
	"github.com/iov-one/stakeweave/errors"
	"github.com/iov-one/stakeweave/orm"
)

var isLedgerName = regexp.MustCompile(`^[a-z0-9_]{3,32}$`).MatchString

var nonceKey = []byte("nonce")

// Ledger tracks stakes, rewards and slashes of a single pool. It keeps no
// state of its own, all of it is read from and written to the store passed
// to every call.
//
// A method either fully applies or returns an error before anything was
// written. Callers that compose several ledger calls into one operation
// must run them on a cache wrap, see stakeweave.Atomic.
type Ledger struct {
	name   string
	conf   Configuration
	pools  orm.Bucket
	stakes orm.Bucket
	meta   orm.Bucket
	epochs orm.Bucket
}

// NewLedger returns a ledger storing its data in buckets prefixed with name.
// Two ledgers with the same name share their state.
func NewLedger(name string, conf Configuration) *Ledger {
	if !isLedgerName(name) {
		panic(errors.Wrapf(errors.ErrHuman, "invalid ledger name %q", name))
	}
	if err := conf.Validate(); err != nil {
		panic(err)
	}
	return &Ledger{
		name:   name,
		conf:   conf,
		pools:  orm.NewBucket(name + "_p"),
		stakes: orm.NewBucket(name + "_s"),
		meta:   orm.NewBucket(name + "_m"),
		epochs: orm.NewBucket(name + "_e"),
	}
}

func (l *Ledger) Name() string {
	return l.name
}

// Nonce returns the current nonce. It starts at zero and is only changed by
// ForceRefund.
func (l *Ledger) Nonce(db stakeweave.ReadOnlyKVStore) (uint64, error) {
	var n nonceRecord
	if _, err := l.meta.Load(db, nonceKey, &n); err != nil {
		return 0, err
	}
	return n.Nonce, nil
}

// Pool returns the totals and accumulators at the current nonce.
func (l *Ledger) Pool(db stakeweave.ReadOnlyKVStore) (*Pool, error) {
	nonce, err := l.Nonce(db)
	if err != nil {
		return nil, err
	}
	return l.loadPool(db, nonce)
}

// Has returns true if key deposited at the current nonce.
func (l *Ledger) Has(db stakeweave.ReadOnlyKVStore, key stakeweave.Address) (bool, error) {
	nonce, err := l.Nonce(db)
	if err != nil {
		return false, err
	}
	return l.stakes.Has(db, stakeKey(nonce, key))
}

// DepositStake adds amt to the stake of key, creating the stakeholder on
// its first deposit. The new stake earns only rewards distributed and
// suffers only slashes applied after this call.
func (l *Ledger) DepositStake(db stakeweave.KVStore, key stakeweave.Address, amt amount.Amount) error {
	if err := amt.RequireNonNegative(); err != nil {
		return err
	}
	nonce, err := l.Nonce(db)
	if err != nil {
		return err
	}
	return l.deposit(db, nonce, key, amt)
}

func (l *Ledger) deposit(db stakeweave.KVStore, nonce uint64, key stakeweave.Address, amt amount.Amount) error {
	pool, stake, _, err := l.load(db, nonce, key)
	if err != nil {
		return err
	}

	var c amount.Calc
	l.realize(&c, pool, stake)
	stake.Stake = c.Add(stake.Stake, amt)
	stake.SlashTally = c.Add(stake.SlashTally, c.Mul(pool.SlashPerToken, amt))
	for _, cur := range pool.Currencies() {
		paid := c.Mul(pool.Rewards[cur].RewardPerToken, amt)
		stake.setTally(cur, c.Add(stake.Tally(cur), paid))
	}
	pool.TotalStake = c.Add(pool.TotalStake, amt)
	pool.TotalCurrentStake = c.Add(pool.TotalCurrentStake, amt)
	if err := c.Err(); err != nil {
		return errors.Wrapf(err, "deposit %s", amt)
	}
	return l.save(db, nonce, key, pool, stake)
}

// WithdrawStake removes amt from the stake of key at the current nonce.
// ErrInsufficientStake is returned if amt exceeds the post slash stake.
// Pending reward is kept and can still be withdrawn.
func (l *Ledger) WithdrawStake(db stakeweave.KVStore, key stakeweave.Address, amt amount.Amount) error {
	nonce, err := l.Nonce(db)
	if err != nil {
		return err
	}
	return l.WithdrawStakeAt(db, nonce, key, amt)
}

// WithdrawStakeAt is WithdrawStake against the state of the given nonce.
func (l *Ledger) WithdrawStakeAt(db stakeweave.KVStore, nonce uint64, key stakeweave.Address, amt amount.Amount) error {
	if err := amt.RequireNonNegative(); err != nil {
		return err
	}
	if amt.IsZero() {
		return nil
	}
	pool, stake, ok, err := l.load(db, nonce, key)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(errors.ErrUnknownStakeholder, "%s at nonce %d", key, nonce)
	}

	var c amount.Calc
	l.realize(&c, pool, stake)
	if err := c.Err(); err != nil {
		return err
	}
	if amt.Cmp(stake.Stake) > 0 {
		return errors.Wrapf(errors.ErrInsufficientStake, "withdraw %s, stake %s", amt, stake.Stake)
	}
	stake.Stake = c.Sub(stake.Stake, amt)
	stake.SlashTally = c.Sub(stake.SlashTally, c.Mul(pool.SlashPerToken, amt))
	for _, cur := range pool.Currencies() {
		paid := c.Mul(pool.Rewards[cur].RewardPerToken, amt)
		stake.setTally(cur, c.Sub(stake.Tally(cur), paid))
	}
	pool.TotalStake = c.SubFloor(pool.TotalStake, amt)
	// the rounding of past slashes may leave the total slightly below
	// the sum of stakes
	pool.TotalCurrentStake = c.SubFloor(pool.TotalCurrentStake, amt)
	if err := c.Err(); err != nil {
		return errors.Wrapf(err, "withdraw %s", amt)
	}
	return l.save(db, nonce, key, pool, stake)
}

// DistributeReward credits amt of currency to all stakeholders of the
// current nonce, in proportion to their post slash stake. Nobody is
// visited. ErrNoStake is returned if there is no stake to credit.
func (l *Ledger) DistributeReward(db stakeweave.KVStore, currency string, amt amount.Amount) error {
	if err := checkCurrency(currency); err != nil {
		return err
	}
	if err := amt.RequireNonNegative(); err != nil {
		return err
	}
	if amt.IsZero() {
		return nil
	}
	nonce, err := l.Nonce(db)
	if err != nil {
		return err
	}
	pool, err := l.loadPool(db, nonce)
	if err != nil {
		return err
	}
	if pool.TotalCurrentStake.IsZero() {
		return errors.Wrapf(errors.ErrNoStake, "distribute %s %s to %s", amt, currency, l.name)
	}

	var c amount.Calc
	r := pool.reward(currency)
	r.RewardPerToken = c.Add(r.RewardPerToken, c.Quo(amt, pool.TotalCurrentStake))
	r.TotalRewards = c.Add(r.TotalRewards, amt)
	if err := c.Err(); err != nil {
		return errors.Wrapf(err, "distribute %s %s", amt, currency)
	}
	return l.pools.Save(db, poolKey(nonce), pool)
}

// SlashStake takes amt from all stakeholders of the current nonce, in
// proportion to their stake. The stake of a single holder is only reduced
// the next time it is touched. ErrNoStake is returned for an empty pool
// and ErrInsufficientStake if amt exceeds the remaining stake.
//
// With StakeOnly the slashed stake forfeits its share of the pending
// reward. A slash that takes all the stake starts a new slash epoch, the
// stake that was there before never counts again.
func (l *Ledger) SlashStake(db stakeweave.KVStore, amt amount.Amount) error {
	if err := amt.RequireNonNegative(); err != nil {
		return err
	}
	if amt.IsZero() {
		return nil
	}
	nonce, err := l.Nonce(db)
	if err != nil {
		return err
	}
	pool, err := l.loadPool(db, nonce)
	if err != nil {
		return err
	}
	if pool.TotalStake.IsZero() {
		return errors.Wrapf(errors.ErrNoStake, "slash %s from %s", amt, l.name)
	}
	if amt.Cmp(pool.TotalCurrentStake) > 0 {
		return errors.Wrapf(errors.ErrInsufficientStake, "slash %s, stake %s", amt, pool.TotalCurrentStake)
	}
	full := amt.Equal(pool.TotalCurrentStake)
	last := pool.clone()

	var c amount.Calc
	if l.conf.SlashMode == StakeOnly {
		for _, cur := range pool.Currencies() {
			r := pool.Rewards[cur]
			earned := c.Sub(c.Mul(pool.TotalStake, r.RewardPerToken), r.TotalRewardTally)
			forfeit := c.MulQuo(amount.Max(earned, amount.Zero()), amt, pool.TotalStake)
			r.TotalRewards = c.SubFloor(r.TotalRewards, forfeit)
		}
	}
	pool.SlashPerToken = c.Add(pool.SlashPerToken, c.Quo(amt, pool.TotalStake))
	if full {
		pool.TotalStake = amount.Zero()
		pool.TotalCurrentStake = amount.Zero()
		pool.SlashEpoch++
		for _, r := range pool.Rewards {
			r.TotalRewardTally = amount.Zero()
		}
	} else {
		pool.TotalCurrentStake = c.Sub(pool.TotalCurrentStake, amt)
		if l.conf.SlashMode == DiluteReward {
			for _, cur := range pool.Currencies() {
				r := pool.Rewards[cur]
				growth := c.MulQuo(r.RewardPerToken, amt, pool.TotalCurrentStake)
				r.RewardPerToken = c.Add(r.RewardPerToken, growth)
			}
		}
	}
	if err := c.Err(); err != nil {
		return errors.Wrapf(err, "slash %s", amt)
	}
	if full && l.conf.SlashMode == DiluteReward {
		if err := l.epochs.Save(db, epochKey(nonce, last.SlashEpoch), last); err != nil {
			return err
		}
	}
	return l.pools.Save(db, poolKey(nonce), pool)
}

// ComputeStake returns the post slash stake of key at the current nonce.
func (l *Ledger) ComputeStake(db stakeweave.ReadOnlyKVStore, key stakeweave.Address) (amount.Amount, error) {
	nonce, err := l.Nonce(db)
	if err != nil {
		return amount.Amount{}, err
	}
	return l.ComputeStakeAt(db, nonce, key)
}

// ComputeStakeAt is ComputeStake against the state of the given nonce.
func (l *Ledger) ComputeStakeAt(db stakeweave.ReadOnlyKVStore, nonce uint64, key stakeweave.Address) (amount.Amount, error) {
	pool, stake, err := l.loadKnown(db, nonce, key)
	if err != nil {
		return amount.Amount{}, err
	}
	var c amount.Calc
	res := currentStake(&c, pool, stake)
	return res, c.Err()
}

// ComputeReward returns the reward of currency key can withdraw at the
// current nonce. The value is not truncated to whole units.
func (l *Ledger) ComputeReward(db stakeweave.ReadOnlyKVStore, currency string, key stakeweave.Address) (amount.Amount, error) {
	nonce, err := l.Nonce(db)
	if err != nil {
		return amount.Amount{}, err
	}
	return l.ComputeRewardAt(db, nonce, currency, key)
}

// ComputeRewardAt is ComputeReward against the state of the given nonce.
func (l *Ledger) ComputeRewardAt(db stakeweave.ReadOnlyKVStore, nonce uint64, currency string, key stakeweave.Address) (amount.Amount, error) {
	if err := checkCurrency(currency); err != nil {
		return amount.Amount{}, err
	}
	pool, stake, err := l.loadKnown(db, nonce, key)
	if err != nil {
		return amount.Amount{}, err
	}
	var c amount.Calc
	res := l.pendingReward(&c, pool, stake, currentStake(&c, pool, stake), currency)
	return res, c.Err()
}

// WithdrawReward returns the pending reward of currency of key and resets
// it to zero.
func (l *Ledger) WithdrawReward(db stakeweave.KVStore, currency string, key stakeweave.Address) (amount.Amount, error) {
	nonce, err := l.Nonce(db)
	if err != nil {
		return amount.Amount{}, err
	}
	return l.WithdrawRewardAt(db, nonce, currency, key)
}

// WithdrawRewardAt is WithdrawReward against the state of the given nonce.
func (l *Ledger) WithdrawRewardAt(db stakeweave.KVStore, nonce uint64, currency string, key stakeweave.Address) (amount.Amount, error) {
	if err := checkCurrency(currency); err != nil {
		return amount.Amount{}, err
	}
	pool, stake, err := l.loadKnown(db, nonce, key)
	if err != nil {
		return amount.Amount{}, err
	}

	var c amount.Calc
	l.realize(&c, pool, stake)
	reward := l.pendingReward(&c, pool, stake, stake.Stake, currency)
	if r, ok := pool.Rewards[currency]; ok {
		stake.setTally(currency, c.Mul(stake.Stake, r.RewardPerToken))
		r.TotalRewards = c.SubFloor(r.TotalRewards, reward)
	}
	if err := c.Err(); err != nil {
		return amount.Amount{}, errors.Wrap(err, "withdraw reward")
	}
	if err := l.save(db, nonce, key, pool, stake); err != nil {
		return amount.Amount{}, err
	}
	return reward, nil
}

// ForceRefund withdraws the whole stake of key, moves the ledger to a new
// nonce and deposits the stake there again, so key is the only stakeholder
// of the new nonce. The stake left at the old nonce, owned by everybody
// else, is returned.
//
// Rewards and stakes left at the old nonce stay available through the *At
// methods.
func (l *Ledger) ForceRefund(db stakeweave.KVStore, key stakeweave.Address) (amount.Amount, error) {
	nonce, err := l.Nonce(db)
	if err != nil {
		return amount.Amount{}, err
	}
	stake, err := l.ComputeStakeAt(db, nonce, key)
	if err != nil {
		return amount.Amount{}, err
	}
	if err := l.WithdrawStakeAt(db, nonce, key, stake); err != nil {
		return amount.Amount{}, errors.Wrap(err, "refund")
	}
	pool, err := l.loadPool(db, nonce)
	if err != nil {
		return amount.Amount{}, err
	}
	refunded := pool.TotalCurrentStake

	if err := l.meta.Save(db, nonceKey, &nonceRecord{Nonce: nonce + 1}); err != nil {
		return amount.Amount{}, err
	}
	if err := l.deposit(db, nonce+1, key, stake); err != nil {
		return amount.Amount{}, err
	}
	return refunded, nil
}

// Stakeholder is a single entry returned by Stakeholders.
type Stakeholder struct {
	Key   stakeweave.Address
	Stake amount.Amount
	// Rewards holds the pending reward of every reward currency of the
	// pool.
	Rewards map[string]amount.Amount
}

// Stakeholders returns all stakeholders of the current nonce with their
// post slash stake and pending rewards, ordered by key.
func (l *Ledger) Stakeholders(db stakeweave.ReadOnlyKVStore) ([]Stakeholder, error) {
	nonce, err := l.Nonce(db)
	if err != nil {
		return nil, err
	}
	pool, err := l.loadPool(db, nonce)
	if err != nil {
		return nil, err
	}
	var (
		keys   []stakeweave.Address
		stakes []*Stake
	)
	err = l.stakes.Iterate(db, poolKey(nonce), func(key, value []byte) error {
		addr, err := stakeweave.AddressFromBytes(key[8:])
		if err != nil {
			return errors.Wrap(errors.ErrDatabase, err.Error())
		}
		var stake Stake
		if err := stake.Unmarshal(value); err != nil {
			return err
		}
		keys = append(keys, addr)
		stakes = append(stakes, &stake)
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := make([]Stakeholder, 0, len(stakes))
	for i, stake := range stakes {
		if err := l.catchUp(db, nonce, pool, stake); err != nil {
			return nil, err
		}
		var c amount.Calc
		current := currentStake(&c, pool, stake)
		rewards := make(map[string]amount.Amount, len(pool.Rewards))
		for _, cur := range pool.Currencies() {
			rewards[cur] = l.pendingReward(&c, pool, stake, current, cur)
		}
		if err := c.Err(); err != nil {
			return nil, err
		}
		res = append(res, Stakeholder{Key: keys[i], Stake: current, Rewards: rewards})
	}
	return res, nil
}

// Sum returns the total post slash stake and the total pending reward per
// reward currency of all stakeholders of the current nonce.
func (l *Ledger) Sum(db stakeweave.ReadOnlyKVStore) (amount.Amount, map[string]amount.Amount, error) {
	holders, err := l.Stakeholders(db)
	if err != nil {
		return amount.Amount{}, nil, err
	}
	var c amount.Calc
	stake := amount.Zero()
	rewards := make(map[string]amount.Amount)
	for _, h := range holders {
		stake = c.Add(stake, h.Stake)
		for cur, r := range h.Rewards {
			rewards[cur] = c.Add(rewards[cur], r)
		}
	}
	return stake, rewards, c.Err()
}

// realize applies the pending slash of stake to its nominal value and to
// the pool total.
func (l *Ledger) realize(c *amount.Calc, pool *Pool, stake *Stake) {
	current := currentStake(c, pool, stake)
	if l.scalesTally(stake, current) {
		for _, cur := range stake.currencies() {
			stake.RewardTally[cur] = c.MulQuo(stake.RewardTally[cur], current, stake.Stake)
		}
	}
	toSlash := c.Sub(stake.Stake, current)
	stake.Stake = current
	pool.TotalStake = c.SubFloor(pool.TotalStake, toSlash)
	stake.SlashTally = c.Mul(stake.Stake, pool.SlashPerToken)
}

func currentStake(c *amount.Calc, pool *Pool, stake *Stake) amount.Amount {
	pending := c.Sub(c.Mul(stake.Stake, pool.SlashPerToken), stake.SlashTally)
	return c.SubFloor(stake.Stake, amount.Max(pending, amount.Zero()))
}

// pendingReward returns the reward of currency earned by stake, slashed
// down to current.
func (l *Ledger) pendingReward(c *amount.Calc, pool *Pool, stake *Stake, current amount.Amount, currency string) amount.Amount {
	tally := stake.Tally(currency)
	if l.scalesTally(stake, current) {
		tally = c.MulQuo(tally, current, stake.Stake)
	}
	return c.SubFloor(c.Mul(current, pool.Reward(currency).RewardPerToken), tally)
}

// scalesTally is true if the reward tally of stake shrinks with its
// pending slash. With StakeOnly the unclaimed reward of a holder is slashed
// together with its stake.
func (l *Ledger) scalesTally(stake *Stake, current amount.Amount) bool {
	return l.conf.SlashMode == StakeOnly && stake.Stake.IsPositive() && !current.Equal(stake.Stake)
}

// catchUp moves a stake of an earlier slash epoch into the epoch of pool.
// Its nominal stake was slashed away in full. With DiluteReward the reward
// it earned until then is kept as a negative tally, with StakeOnly it is
// forfeited.
func (l *Ledger) catchUp(db stakeweave.ReadOnlyKVStore, nonce uint64, pool *Pool, stake *Stake) error {
	if stake.SlashEpoch >= pool.SlashEpoch {
		return nil
	}
	if stake.Stake.IsPositive() {
		var (
			c     amount.Calc
			tally map[string]amount.Amount
		)
		if l.conf.SlashMode == DiluteReward {
			last, err := l.loadEpoch(db, nonce, stake.SlashEpoch)
			if err != nil {
				return err
			}
			current := currentStake(&c, last, stake)
			for _, cur := range last.Currencies() {
				earned := c.SubFloor(c.Mul(current, last.Rewards[cur].RewardPerToken), stake.Tally(cur))
				if tally == nil {
					tally = make(map[string]amount.Amount)
				}
				tally[cur] = earned.Neg()
			}
		}
		if err := c.Err(); err != nil {
			return err
		}
		stake.Stake = amount.Zero()
		stake.SlashTally = amount.Zero()
		stake.RewardTally = tally
	}
	stake.SlashEpoch = pool.SlashEpoch
	return nil
}

// holding returns what stake adds to the reward tally totals of pool.
// Only stake of the current slash epoch counts.
func holding(pool *Pool, stake *Stake) map[string]amount.Amount {
	if !stake.Stake.IsPositive() || stake.SlashEpoch != pool.SlashEpoch {
		return nil
	}
	res := make(map[string]amount.Amount, len(stake.RewardTally))
	for cur, t := range stake.RewardTally {
		res[cur] = t
	}
	return res
}

func (l *Ledger) loadPool(db stakeweave.ReadOnlyKVStore, nonce uint64) (*Pool, error) {
	pool := &Pool{
		TotalStake:        amount.Zero(),
		TotalCurrentStake: amount.Zero(),
		SlashPerToken:     amount.Zero(),
	}
	if _, err := l.pools.Load(db, poolKey(nonce), pool); err != nil {
		return nil, err
	}
	return pool, nil
}

// loadEpoch returns the pool as it was right before the slash that closed
// epoch.
func (l *Ledger) loadEpoch(db stakeweave.ReadOnlyKVStore, nonce, epoch uint64) (*Pool, error) {
	pool := &Pool{
		TotalStake:        amount.Zero(),
		TotalCurrentStake: amount.Zero(),
		SlashPerToken:     amount.Zero(),
	}
	if _, err := l.epochs.Load(db, epochKey(nonce, epoch), pool); err != nil {
		return nil, err
	}
	return pool, nil
}

func (l *Ledger) loadStake(db stakeweave.ReadOnlyKVStore, nonce uint64, key stakeweave.Address) (*Stake, bool, error) {
	stake := &Stake{
		Stake:      amount.Zero(),
		SlashTally: amount.Zero(),
	}
	ok, err := l.stakes.Load(db, stakeKey(nonce, key), stake)
	return stake, ok, err
}

// load returns the pool and the stake of key at nonce, with the stake
// brought into the current slash epoch.
func (l *Ledger) load(db stakeweave.ReadOnlyKVStore, nonce uint64, key stakeweave.Address) (*Pool, *Stake, bool, error) {
	pool, err := l.loadPool(db, nonce)
	if err != nil {
		return nil, nil, false, err
	}
	stake, ok, err := l.loadStake(db, nonce, key)
	if err != nil {
		return nil, nil, false, err
	}
	if !ok {
		stake.SlashEpoch = pool.SlashEpoch
	}
	if err := l.catchUp(db, nonce, pool, stake); err != nil {
		return nil, nil, false, err
	}
	stake.held = holding(pool, stake)
	return pool, stake, ok, nil
}

func (l *Ledger) loadKnown(db stakeweave.ReadOnlyKVStore, nonce uint64, key stakeweave.Address) (*Pool, *Stake, error) {
	pool, stake, ok, err := l.load(db, nonce, key)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, errors.Wrapf(errors.ErrUnknownStakeholder, "%s at nonce %d", key, nonce)
	}
	return pool, stake, nil
}

// save writes both records or none of them. The reward tally totals of
// pool follow the change of stake since it was loaded.
func (l *Ledger) save(db stakeweave.KVStore, nonce uint64, key stakeweave.Address, pool *Pool, stake *Stake) error {
	var c amount.Calc
	now := holding(pool, stake)
	for _, cur := range mergeCurrencies(stake.held, now) {
		r := pool.reward(cur)
		r.TotalRewardTally = c.Add(r.TotalRewardTally, c.Sub(now[cur], stake.held[cur]))
	}
	if err := c.Err(); err != nil {
		return errors.Wrap(err, "reward tally")
	}
	if err := errors.Append(pool.Validate(), stake.Validate()); err != nil {
		return errors.Wrap(errors.ErrUnderflow, err.Error())
	}
	if err := l.pools.Save(db, poolKey(nonce), pool); err != nil {
		return err
	}
	if err := l.stakes.Save(db, stakeKey(nonce, key), stake); err != nil {
		return err
	}
	stake.held = now
	return nil
}

func mergeCurrencies(a, b map[string]amount.Amount) []string {
	var res []string
	for cur := range a {
		res = append(res, cur)
	}
	for cur := range b {
		if _, ok := a[cur]; !ok {
			res = append(res, cur)
		}
	}
	sort.Strings(res)
	return res
}

func checkCurrency(currency string) error {
	if !isCurrency(currency) {
		return errors.Wrapf(errors.ErrInput, "reward currency %q", currency)
	}
	return nil
}

func poolKey(nonce uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, nonce)
	return key
}

func stakeKey(nonce uint64, addr stakeweave.Address) []byte {
	return append(poolKey(nonce), addr[:]...)
}

func epochKey(nonce, epoch uint64) []byte {
	key := make([]byte, 16)
	binary.BigEndian.PutUint64(key, nonce)
	binary.BigEndian.PutUint64(key[8:], epoch)
	return key
}
