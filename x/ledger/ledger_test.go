package ledger

import (
	"math/rand"
	"testing"

	"github.com/iov-one/stakeweave"
	"github.com/iov-one/stakeweave/amount"
	"github.com/iov-one/stakeweave/errors"
	"github.com/iov-one/stakeweave/store"
	"github.com/iov-one/stakeweave/weavetest"
	"github.com/iov-one/stakeweave/weavetest/assert"
)

var (
	alice = weavetest.NewAddress("alice")
	bob   = weavetest.NewAddress("bob")
	vault = weavetest.NewAddress("vault")
)

// rwd is the reward currency of all tests.
const rwd = "INTR"

func num(n int64) amount.Amount {
	return amount.NewAmount(n)
}

// tolerance absorbs the truncation of the accumulators.
const tolerance = "0.000000001"

func newTestLedger(mode SlashMode) *Ledger {
	return NewLedger("test", Configuration{SlashMode: mode})
}

func mustStake(t testing.TB, l *Ledger, db stakeweave.ReadOnlyKVStore, key stakeweave.Address) amount.Amount {
	t.Helper()
	s, err := l.ComputeStake(db, key)
	assert.Nil(t, err)
	return s
}

func mustReward(t testing.TB, l *Ledger, db stakeweave.ReadOnlyKVStore, key stakeweave.Address) amount.Amount {
	t.Helper()
	r, err := l.ComputeReward(db, rwd, key)
	assert.Nil(t, err)
	return r
}

func TestStakeDistributeAndWithdraw(t *testing.T) {
	db := store.MemStore()
	l := newTestLedger(DiluteReward)

	assert.Nil(t, l.DepositStake(db, alice, num(10000)))
	assert.Nil(t, l.DepositStake(db, bob, num(10000)))

	assert.Nil(t, l.DistributeReward(db, rwd, num(1000)))
	weavetest.AssertWhole(t, 500, mustReward(t, l, db, alice))
	weavetest.AssertWhole(t, 500, mustReward(t, l, db, bob))

	assert.Nil(t, l.SlashStake(db, num(50)))
	assert.Nil(t, l.SlashStake(db, num(50)))

	assert.Nil(t, l.DepositStake(db, alice, num(1000)))
	assert.Nil(t, l.DistributeReward(db, rwd, num(1000)))

	weavetest.AssertWhole(t, 1023, mustReward(t, l, db, alice))
	weavetest.AssertWhole(t, 976, mustReward(t, l, db, bob))
	weavetest.AssertClose(t, num(10950), mustStake(t, l, db, alice), tolerance)
	weavetest.AssertClose(t, num(9950), mustStake(t, l, db, bob), tolerance)

	assert.Nil(t, l.WithdrawStake(db, alice, num(10000)))
	weavetest.AssertClose(t, num(950), mustStake(t, l, db, alice), tolerance)
	assert.Nil(t, l.WithdrawStake(db, alice, mustStake(t, l, db, alice)))
	weavetest.AssertAmount(t, "0", mustStake(t, l, db, alice))

	assert.Nil(t, l.DepositStake(db, bob, num(10000)))
	weavetest.AssertClose(t, num(19950), mustStake(t, l, db, bob), tolerance)

	assert.Nil(t, l.DistributeReward(db, rwd, num(1000)))
	assert.Nil(t, l.SlashStake(db, num(10000)))
	// the slash accumulator truncates, stakes are exact up to the last
	// digits
	weavetest.AssertClose(t, num(9950), mustStake(t, l, db, bob), tolerance)

	weavetest.AssertWhole(t, 1023, mustReward(t, l, db, alice))
	weavetest.AssertWhole(t, 1976, mustReward(t, l, db, bob))
}

func TestSlashModes(t *testing.T) {
	cases := map[string]struct {
		mode       SlashMode
		wantReward int64
	}{
		"dilute keeps earned reward": {
			mode:       DiluteReward,
			wantReward: 50,
		},
		"stake only drops the reward of slashed stake": {
			mode:       StakeOnly,
			wantReward: 40,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			l := newTestLedger(tc.mode)

			assert.Nil(t, l.DepositStake(db, alice, num(50)))
			assert.Nil(t, l.DepositStake(db, bob, num(50)))
			assert.Nil(t, l.DistributeReward(db, rwd, num(100)))
			weavetest.AssertAmount(t, "50", mustReward(t, l, db, alice))
			weavetest.AssertAmount(t, "50", mustReward(t, l, db, bob))

			assert.Nil(t, l.SlashStake(db, num(20)))
			weavetest.AssertAmount(t, "40", mustStake(t, l, db, alice))
			weavetest.AssertAmount(t, "40", mustStake(t, l, db, bob))
			weavetest.AssertWhole(t, tc.wantReward, mustReward(t, l, db, alice))
			weavetest.AssertWhole(t, tc.wantReward, mustReward(t, l, db, bob))
		})
	}
}

func TestContinuesFunctioningAfterSlash(t *testing.T) {
	db := store.MemStore()
	l := newTestLedger(DiluteReward)

	assert.Nil(t, l.DepositStake(db, alice, num(50)))
	assert.Nil(t, l.DistributeReward(db, rwd, num(10000)))
	weavetest.AssertAmount(t, "10000", mustReward(t, l, db, alice))

	assert.Nil(t, l.SlashStake(db, num(30)))
	weavetest.AssertAmount(t, "20", mustStake(t, l, db, alice))

	weavetest.AssertAmount(t, "10000", mustReward(t, l, db, alice))
	got, err := l.WithdrawReward(db, rwd, alice)
	assert.Nil(t, err)
	weavetest.AssertAmount(t, "10000", got)

	assert.Nil(t, l.DistributeReward(db, rwd, num(10000)))
	weavetest.AssertAmount(t, "10000", mustReward(t, l, db, alice))
	got, err = l.WithdrawReward(db, rwd, alice)
	assert.Nil(t, err)
	weavetest.AssertAmount(t, "10000", got)
	weavetest.AssertAmount(t, "0", mustReward(t, l, db, alice))
}

func TestWithdrawRewardIsIdempotent(t *testing.T) {
	db := store.MemStore()
	l := newTestLedger(DiluteReward)

	assert.Nil(t, l.DepositStake(db, alice, num(100)))
	assert.Nil(t, l.DistributeReward(db, rwd, num(100)))
	weavetest.AssertAmount(t, "100", mustReward(t, l, db, alice))

	got, err := l.WithdrawReward(db, rwd, alice)
	assert.Nil(t, err)
	weavetest.AssertAmount(t, "100", got)

	got, err = l.WithdrawReward(db, rwd, alice)
	assert.Nil(t, err)
	weavetest.AssertAmount(t, "0", got)

	pool, err := l.Pool(db)
	assert.Nil(t, err)
	weavetest.AssertAmount(t, "0", pool.Reward(rwd).TotalRewards)
}

// Stake deposited after a slash shares the following slashes with the
// stake that was already slashed, in proportion to the nominal value of
// both.
func TestSlashAfterPartialSlash(t *testing.T) {
	for _, mode := range []SlashMode{DiluteReward, StakeOnly} {
		t.Run(string(mode), func(t *testing.T) {
			db := store.MemStore()
			l := newTestLedger(mode)

			assert.Nil(t, l.DepositStake(db, alice, num(50)))
			assert.Nil(t, l.SlashStake(db, num(30)))
			assert.Nil(t, l.DepositStake(db, bob, num(20)))
			assert.Nil(t, l.SlashStake(db, num(10)))

			a := mustStake(t, l, db, alice)
			b := mustStake(t, l, db, bob)
			weavetest.AssertWhole(t, 12, a)
			weavetest.AssertWhole(t, 17, b)

			sum, err := a.Add(b)
			assert.Nil(t, err)
			weavetest.AssertClose(t, num(30), sum, tolerance)
		})
	}
}

func TestComputeStakeAfterAdjustments(t *testing.T) {
	db := store.MemStore()
	l := newTestLedger(DiluteReward)
	large := weavetest.Amount(t, "1152923504604516976")
	larger := weavetest.Amount(t, "1152924504603286976")

	assert.Nil(t, l.DepositStake(db, vault, num(100)))
	assert.Nil(t, l.DepositStake(db, vault, large))
	all, err := large.Add(num(100))
	assert.Nil(t, err)
	assert.Nil(t, l.SlashStake(db, all))

	assert.Nil(t, l.DepositStake(db, vault, num(1000000)))
	assert.Nil(t, l.DepositStake(db, vault, larger))
	all, err = larger.Add(num(1000000))
	assert.Nil(t, err)
	assert.Nil(t, l.SlashStake(db, all))
	weavetest.AssertAmount(t, "0", mustStake(t, l, db, vault))

	assert.Nil(t, l.DepositStake(db, vault, num(1000000)))
	weavetest.AssertAmount(t, "1000000", mustStake(t, l, db, vault))
}

func TestForceRefund(t *testing.T) {
	db := store.MemStore()
	l := newTestLedger(DiluteReward)

	assert.Nil(t, l.DepositStake(db, vault, num(100)))
	assert.Nil(t, l.DepositStake(db, alice, num(100)))
	assert.Nil(t, l.SlashStake(db, num(100)))
	assert.Nil(t, l.DepositStake(db, vault, num(100)))
	assert.Nil(t, l.DepositStake(db, alice, num(10)))
	assert.Nil(t, l.DistributeReward(db, rwd, num(100)))

	nonce, err := l.Nonce(db)
	assert.Nil(t, err)
	assert.Equal(t, uint64(0), nonce)

	weavetest.AssertAmount(t, "150", mustStake(t, l, db, vault))
	weavetest.AssertWhole(t, 71, mustReward(t, l, db, vault))
	weavetest.AssertAmount(t, "60", mustStake(t, l, db, alice))
	weavetest.AssertWhole(t, 28, mustReward(t, l, db, alice))

	refunded, err := l.ForceRefund(db, vault)
	assert.Nil(t, err)
	weavetest.AssertAmount(t, "60", refunded)

	nonce, err = l.Nonce(db)
	assert.Nil(t, err)
	assert.Equal(t, uint64(1), nonce)

	weavetest.AssertAmount(t, "150", mustStake(t, l, db, vault))
	weavetest.AssertAmount(t, "0", mustReward(t, l, db, vault))
	_, err = l.ComputeStake(db, alice)
	assert.IsErr(t, errors.ErrUnknownStakeholder, err)

	old, err := l.ComputeRewardAt(db, 0, rwd, vault)
	assert.Nil(t, err)
	weavetest.AssertWhole(t, 71, old)
	old, err = l.ComputeStakeAt(db, 0, alice)
	assert.Nil(t, err)
	weavetest.AssertAmount(t, "60", old)
	old, err = l.ComputeRewardAt(db, 0, rwd, alice)
	assert.Nil(t, err)
	weavetest.AssertWhole(t, 28, old)

	// alice can still leave the old nonce
	assert.Nil(t, l.WithdrawStakeAt(db, 0, alice, num(60)))
	old, err = l.WithdrawRewardAt(db, 0, rwd, alice)
	assert.Nil(t, err)
	weavetest.AssertWhole(t, 28, old)

	holders, err := l.Stakeholders(db)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(holders))
	assert.Equal(t, vault, holders[0].Key)
}

func TestLedgerErrors(t *testing.T) {
	cases := map[string]struct {
		prepare func(*Ledger, stakeweave.KVStore) error
		op      func(*Ledger, stakeweave.KVStore) error
		wantErr *errors.Error
	}{
		"distribute to an empty ledger": {
			op: func(l *Ledger, db stakeweave.KVStore) error {
				return l.DistributeReward(db, rwd, num(1))
			},
			wantErr: errors.ErrNoStake,
		},
		"distribute nothing to an empty ledger": {
			op: func(l *Ledger, db stakeweave.KVStore) error {
				return l.DistributeReward(db, rwd, num(0))
			},
		},
		"distribute after everybody left": {
			prepare: func(l *Ledger, db stakeweave.KVStore) error {
				if err := l.DepositStake(db, alice, num(10)); err != nil {
					return err
				}
				return l.WithdrawStake(db, alice, num(10))
			},
			op: func(l *Ledger, db stakeweave.KVStore) error {
				return l.DistributeReward(db, rwd, num(1))
			},
			wantErr: errors.ErrNoStake,
		},
		"slash an empty ledger": {
			op: func(l *Ledger, db stakeweave.KVStore) error {
				return l.SlashStake(db, num(1))
			},
			wantErr: errors.ErrNoStake,
		},
		"slash after everything was slashed": {
			prepare: func(l *Ledger, db stakeweave.KVStore) error {
				if err := l.DepositStake(db, alice, num(10)); err != nil {
					return err
				}
				return l.SlashStake(db, num(10))
			},
			op: func(l *Ledger, db stakeweave.KVStore) error {
				return l.SlashStake(db, num(1))
			},
			wantErr: errors.ErrNoStake,
		},
		"invalid reward currency": {
			prepare: func(l *Ledger, db stakeweave.KVStore) error {
				return l.DepositStake(db, alice, num(10))
			},
			op: func(l *Ledger, db stakeweave.KVStore) error {
				return l.DistributeReward(db, "intr", num(1))
			},
			wantErr: errors.ErrInput,
		},
		"slash more than staked": {
			prepare: func(l *Ledger, db stakeweave.KVStore) error {
				return l.DepositStake(db, alice, num(10))
			},
			op: func(l *Ledger, db stakeweave.KVStore) error {
				return l.SlashStake(db, num(11))
			},
			wantErr: errors.ErrInsufficientStake,
		},
		"negative deposit": {
			op: func(l *Ledger, db stakeweave.KVStore) error {
				return l.DepositStake(db, alice, num(-1))
			},
			wantErr: errors.ErrInvalidAmount,
		},
		"negative reward": {
			op: func(l *Ledger, db stakeweave.KVStore) error {
				return l.DistributeReward(db, rwd, num(-1))
			},
			wantErr: errors.ErrInvalidAmount,
		},
		"withdraw more than staked": {
			prepare: func(l *Ledger, db stakeweave.KVStore) error {
				return l.DepositStake(db, alice, num(100))
			},
			op: func(l *Ledger, db stakeweave.KVStore) error {
				return l.WithdrawStake(db, alice, num(200))
			},
			wantErr: errors.ErrInsufficientStake,
		},
		"withdraw slashed stake": {
			prepare: func(l *Ledger, db stakeweave.KVStore) error {
				if err := l.DepositStake(db, alice, num(100)); err != nil {
					return err
				}
				return l.SlashStake(db, num(100))
			},
			op: func(l *Ledger, db stakeweave.KVStore) error {
				return l.WithdrawStake(db, alice, num(100))
			},
			wantErr: errors.ErrInsufficientStake,
		},
		"withdraw of an unknown stakeholder": {
			op: func(l *Ledger, db stakeweave.KVStore) error {
				return l.WithdrawStake(db, alice, num(1))
			},
			wantErr: errors.ErrUnknownStakeholder,
		},
		"reward of an unknown stakeholder": {
			prepare: func(l *Ledger, db stakeweave.KVStore) error {
				return l.DepositStake(db, alice, num(1))
			},
			op: func(l *Ledger, db stakeweave.KVStore) error {
				_, err := l.WithdrawReward(db, rwd, bob)
				return err
			},
			wantErr: errors.ErrUnknownStakeholder,
		},
		"refund of an unknown stakeholder": {
			op: func(l *Ledger, db stakeweave.KVStore) error {
				_, err := l.ForceRefund(db, vault)
				return err
			},
			wantErr: errors.ErrUnknownStakeholder,
		},
		"deposit overflow": {
			prepare: func(l *Ledger, db stakeweave.KVStore) error {
				return l.DepositStake(db, alice, amount.MustParse("40000000000000000000000000000000000000000000000000000000000"))
			},
			op: func(l *Ledger, db stakeweave.KVStore) error {
				return l.DepositStake(db, alice, amount.MustParse("40000000000000000000000000000000000000000000000000000000000"))
			},
			wantErr: errors.ErrOverflow,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			l := newTestLedger(DiluteReward)
			if tc.prepare != nil {
				assert.Nil(t, tc.prepare(l, db))
			}
			before, err := l.Pool(db)
			assert.Nil(t, err)

			err = tc.op(l, db)
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %q error, got %+v", tc.wantErr, err)
			}
			if tc.wantErr == nil {
				return
			}
			after, err := l.Pool(db)
			assert.Nil(t, err)
			assert.Equal(t, stakeweave.MustMarshalValid(before), stakeweave.MustMarshalValid(after))
		})
	}
}

func TestZeroAmountsAreNoOps(t *testing.T) {
	db := store.MemStore()
	l := newTestLedger(DiluteReward)

	assert.Nil(t, l.DepositStake(db, alice, num(0)))
	ok, err := l.Has(db, alice)
	assert.Nil(t, err)
	assert.Equal(t, true, ok)

	assert.Nil(t, l.DepositStake(db, bob, num(10)))
	before, err := l.Pool(db)
	assert.Nil(t, err)

	assert.Nil(t, l.DistributeReward(db, rwd, num(0)))
	assert.Nil(t, l.SlashStake(db, num(0)))
	assert.Nil(t, l.WithdrawStake(db, bob, num(0)))

	after, err := l.Pool(db)
	assert.Nil(t, err)
	assert.Equal(t, stakeweave.MustMarshalValid(before), stakeweave.MustMarshalValid(after))
}

func TestRewardsAreProportional(t *testing.T) {
	db := store.MemStore()
	l := newTestLedger(DiluteReward)

	assert.Nil(t, l.DepositStake(db, alice, num(10)))
	assert.Nil(t, l.DepositStake(db, bob, num(30)))
	assert.Nil(t, l.DepositStake(db, vault, num(60)))
	assert.Nil(t, l.DistributeReward(db, rwd, num(7)))

	weavetest.AssertAmount(t, "0.7", mustReward(t, l, db, alice))
	weavetest.AssertAmount(t, "2.1", mustReward(t, l, db, bob))
	weavetest.AssertAmount(t, "4.2", mustReward(t, l, db, vault))

	// late deposits do not share earlier rewards
	assert.Nil(t, l.DepositStake(db, alice, num(100)))
	weavetest.AssertAmount(t, "0.7", mustReward(t, l, db, alice))
}

// A long random sequence of operations must keep the pool totals in line
// with the sum over all stakeholders. With DiluteReward rewards are only
// checked without slashes, a slash that hits stake deposited at different
// times moves reward between holders.
func TestConservation(t *testing.T) {
	const (
		deposit = iota
		withdraw
		distribute
		slash
		claim
	)
	cases := map[string]struct {
		mode        SlashMode
		ops         []int
		checkReward bool
	}{
		"rewards": {
			mode:        DiluteReward,
			ops:         []int{deposit, withdraw, distribute, claim},
			checkReward: true,
		},
		"slashes": {
			mode: DiluteReward,
			ops:  []int{deposit, withdraw, distribute, slash, claim},
		},
		"stake only slashes": {
			mode:        StakeOnly,
			ops:         []int{deposit, withdraw, distribute, slash, claim},
			checkReward: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			l := newTestLedger(tc.mode)
			keys := []stakeweave.Address{alice, bob, vault, weavetest.SequenceAddress(1), weavetest.SequenceAddress(2)}
			rnd := rand.New(rand.NewSource(42))

			for _, k := range keys {
				assert.Nil(t, l.DepositStake(db, k, num(1+rnd.Int63n(1000))))
			}

			for i := 0; i < 500; i++ {
				key := keys[rnd.Intn(len(keys))]
				switch tc.ops[rnd.Intn(len(tc.ops))] {
				case deposit:
					assert.Nil(t, l.DepositStake(db, key, num(rnd.Int63n(1000))))
				case withdraw:
					current := mustStake(t, l, db, key)
					part, err := current.MulQuo(num(rnd.Int63n(100)), num(100))
					assert.Nil(t, err)
					assert.Nil(t, l.WithdrawStake(db, key, part))
				case distribute:
					assert.Nil(t, l.DistributeReward(db, rwd, num(rnd.Int63n(500))))
				case slash:
					pool, err := l.Pool(db)
					assert.Nil(t, err)
					cut, err := pool.TotalCurrentStake.MulQuo(num(rnd.Int63n(5)), num(100))
					assert.Nil(t, err)
					assert.Nil(t, l.SlashStake(db, cut))
				case claim:
					_, err := l.WithdrawReward(db, rwd, key)
					assert.Nil(t, err)
				}

				pool, err := l.Pool(db)
				assert.Nil(t, err)
				stake, rewards, err := l.Sum(db)
				assert.Nil(t, err)
				weavetest.AssertClose(t, pool.TotalCurrentStake, stake, "0.000001")
				if tc.checkReward {
					weavetest.AssertClose(t, pool.Reward(rwd).TotalRewards, rewards[rwd], "0.000001")
				}
			}
		})
	}
}

// With StakeOnly a slash takes the unclaimed reward of the slashed stake
// and nothing distributed later.
func TestStakeOnlyRewardAfterSlash(t *testing.T) {
	cases := map[string]struct {
		run        func(*Ledger, stakeweave.KVStore) error
		wantReward map[stakeweave.Address]string
		wantTotal  string
	}{
		"claimed before the slash": {
			run: func(l *Ledger, db stakeweave.KVStore) error {
				return chain(
					l.DepositStake(db, alice, num(100)),
					l.DistributeReward(db, rwd, num(10)),
					claimErr(l.WithdrawReward(db, rwd, alice)),
					l.SlashStake(db, num(50)),
					l.DistributeReward(db, rwd, num(10)),
				)
			},
			wantReward: map[stakeweave.Address]string{alice: "10"},
			wantTotal:  "10",
		},
		"unclaimed reward is halved": {
			run: func(l *Ledger, db stakeweave.KVStore) error {
				return chain(
					l.DepositStake(db, alice, num(100)),
					l.DepositStake(db, bob, num(100)),
					l.DistributeReward(db, rwd, num(20)),
					l.SlashStake(db, num(100)),
					l.DistributeReward(db, rwd, num(10)),
				)
			},
			wantReward: map[stakeweave.Address]string{alice: "10", bob: "10"},
			wantTotal:  "20",
		},
		"late deposit owns no reward": {
			run: func(l *Ledger, db stakeweave.KVStore) error {
				return chain(
					l.DepositStake(db, alice, num(100)),
					l.DistributeReward(db, rwd, num(10)),
					l.DepositStake(db, bob, num(100)),
					l.SlashStake(db, num(100)),
					l.DistributeReward(db, rwd, num(10)),
				)
			},
			wantReward: map[stakeweave.Address]string{alice: "10", bob: "5"},
			wantTotal:  "15",
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			l := newTestLedger(StakeOnly)
			assert.Nil(t, tc.run(l, db))

			for key, want := range tc.wantReward {
				weavetest.AssertClose(t, amount.MustParse(want), mustReward(t, l, db, key), tolerance)
			}
			pool, err := l.Pool(db)
			assert.Nil(t, err)
			weavetest.AssertClose(t, amount.MustParse(tc.wantTotal), pool.Reward(rwd).TotalRewards, tolerance)
			_, rewards, err := l.Sum(db)
			assert.Nil(t, err)
			weavetest.AssertClose(t, pool.Reward(rwd).TotalRewards, rewards[rwd], tolerance)
		})
	}
}

// Stake slashed away in full must not take part in later slashes.
func TestFullSlashClosesEpoch(t *testing.T) {
	for _, mode := range []SlashMode{DiluteReward, StakeOnly} {
		t.Run(string(mode), func(t *testing.T) {
			db := store.MemStore()
			l := newTestLedger(mode)

			assert.Nil(t, l.DepositStake(db, alice, num(100)))
			assert.Nil(t, l.SlashStake(db, num(100)))
			pool, err := l.Pool(db)
			assert.Nil(t, err)
			assert.Equal(t, uint64(1), pool.SlashEpoch)
			weavetest.AssertAmount(t, "0", pool.TotalStake)

			// nothing is left to slash
			err = l.SlashStake(db, num(1))
			assert.IsErr(t, errors.ErrNoStake, err)

			assert.Nil(t, l.DepositStake(db, bob, num(100)))
			assert.Nil(t, l.SlashStake(db, num(50)))
			assert.Nil(t, l.DistributeReward(db, rwd, num(50)))

			weavetest.AssertAmount(t, "0", mustStake(t, l, db, alice))
			weavetest.AssertAmount(t, "50", mustStake(t, l, db, bob))
			weavetest.AssertAmount(t, "0", mustReward(t, l, db, alice))
			weavetest.AssertAmount(t, "50", mustReward(t, l, db, bob))

			pool, err = l.Pool(db)
			assert.Nil(t, err)
			stake, rewards, err := l.Sum(db)
			assert.Nil(t, err)
			weavetest.AssertAmount(t, "50", pool.TotalCurrentStake)
			weavetest.AssertAmount(t, "50", stake)
			weavetest.AssertAmount(t, "50", pool.Reward(rwd).TotalRewards)
			weavetest.AssertAmount(t, "50", rewards[rwd])

			// alice can come back
			assert.Nil(t, l.DepositStake(db, alice, num(50)))
			weavetest.AssertAmount(t, "50", mustStake(t, l, db, alice))
			weavetest.AssertAmount(t, "0", mustReward(t, l, db, alice))
		})
	}
}

// A full slash keeps the unclaimed reward with DiluteReward and forfeits it
// with StakeOnly.
func TestRewardOfFullSlash(t *testing.T) {
	cases := map[string]struct {
		mode SlashMode
		want string
	}{
		"dilute": {mode: DiluteReward, want: "10"},
		"stake only": {mode: StakeOnly, want: "0"},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			l := newTestLedger(tc.mode)

			assert.Nil(t, l.DepositStake(db, alice, num(60)))
			assert.Nil(t, l.DepositStake(db, bob, num(40)))
			assert.Nil(t, l.DistributeReward(db, rwd, num(10)))
			assert.Nil(t, l.SlashStake(db, num(100)))

			pool, err := l.Pool(db)
			assert.Nil(t, err)
			weavetest.AssertAmount(t, tc.want, pool.Reward(rwd).TotalRewards)
			_, rewards, err := l.Sum(db)
			assert.Nil(t, err)
			weavetest.AssertAmount(t, tc.want, rewards[rwd])

			got, err := l.WithdrawReward(db, rwd, alice)
			assert.Nil(t, err)
			b, err := l.WithdrawReward(db, rwd, bob)
			assert.Nil(t, err)
			sum, err := got.Add(b)
			assert.Nil(t, err)
			weavetest.AssertAmount(t, tc.want, sum)

			pool, err = l.Pool(db)
			assert.Nil(t, err)
			weavetest.AssertAmount(t, "0", pool.Reward(rwd).TotalRewards)
		})
	}
}

// Every reward currency is accounted on its own.
func TestRewardCurrencies(t *testing.T) {
	db := store.MemStore()
	l := newTestLedger(DiluteReward)

	assert.Nil(t, l.DepositStake(db, alice, num(10)))
	assert.Nil(t, l.DistributeReward(db, "INTR", num(10)))
	assert.Nil(t, l.DepositStake(db, bob, num(10)))
	assert.Nil(t, l.DistributeReward(db, "KINT", num(10)))
	assert.Nil(t, l.DistributeReward(db, "INTR", num(10)))

	reward := func(currency string, key stakeweave.Address) amount.Amount {
		r, err := l.ComputeReward(db, currency, key)
		assert.Nil(t, err)
		return r
	}
	weavetest.AssertAmount(t, "15", reward("INTR", alice))
	weavetest.AssertAmount(t, "5", reward("INTR", bob))
	weavetest.AssertAmount(t, "5", reward("KINT", alice))
	weavetest.AssertAmount(t, "5", reward("KINT", bob))
	weavetest.AssertAmount(t, "0", reward("IBTC", alice))

	got, err := l.WithdrawReward(db, "KINT", alice)
	assert.Nil(t, err)
	weavetest.AssertAmount(t, "5", got)
	weavetest.AssertAmount(t, "15", reward("INTR", alice))
	weavetest.AssertAmount(t, "0", reward("KINT", alice))

	pool, err := l.Pool(db)
	assert.Nil(t, err)
	assert.Equal(t, []string{"INTR", "KINT"}, pool.Currencies())
	weavetest.AssertAmount(t, "20", pool.Reward("INTR").TotalRewards)
	weavetest.AssertAmount(t, "5", pool.Reward("KINT").TotalRewards)

	holders, err := l.Stakeholders(db)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(holders))
	for _, h := range holders {
		if h.Key.Equals(alice) {
			weavetest.AssertAmount(t, "15", h.Rewards["INTR"])
			weavetest.AssertAmount(t, "0", h.Rewards["KINT"])
		}
	}
}

// chain returns the first error of a sequence of ledger calls. Calls after
// a failed one still run, the error is enough to fail the test.
func chain(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func claimErr(_ amount.Amount, err error) error {
	return err
}

func TestConfiguration(t *testing.T) {
	db := store.MemStore()

	conf, err := LoadConfiguration(db)
	assert.Nil(t, err)
	assert.Equal(t, DiluteReward, conf.SlashMode)

	genesis := `{"conf": {"ledger": {"slash_mode": "stake_only"}}}`
	var opts stakeweave.Options
	assert.Nil(t, stakeweave.UnmarshalJSON([]byte(genesis), &opts))
	assert.Nil(t, Initializer{}.FromGenesis(opts, db))

	conf, err = LoadConfiguration(db)
	assert.Nil(t, err)
	assert.Equal(t, StakeOnly, conf.SlashMode)

	err = SaveConfiguration(db, Configuration{SlashMode: "everything"})
	assert.FieldError(t, err, "SlashMode", errors.ErrInput)

	// a genesis without configuration is fine
	assert.Nil(t, Initializer{}.FromGenesis(stakeweave.Options{}, store.MemStore()))
}
