package ledger

import (
	"regexp"
	"sort"

	"github.com/iov-one/stakeweave"
	"github.com/iov-one/stakeweave/amount"
	"github.com/iov-one/stakeweave/errors"
	"github.com/iov-one/stakeweave/orm"
)

var isCurrency = regexp.MustCompile(`^[A-Z]{3,5}$`).MatchString

// Pool holds the totals and accumulators of a ledger at one nonce.
type Pool struct {
	// TotalStake is the sum of nominal stakes of the current slash epoch,
	// pending slashes included.
	TotalStake amount.Amount `json:"total_stake"`
	// TotalCurrentStake is the sum of post slash stakes.
	TotalCurrentStake amount.Amount `json:"total_current_stake"`
	SlashPerToken     amount.Amount `json:"slash_per_token"`
	// SlashEpoch is incremented by every slash that takes all the stake.
	// Stake of an earlier epoch is worth nothing.
	SlashEpoch uint64 `json:"slash_epoch,omitempty"`
	// Rewards holds the accumulators of every reward currency ever
	// distributed.
	Rewards map[string]*Reward `json:"rewards,omitempty"`
}

// Reward holds the accumulators of a single reward currency.
type Reward struct {
	RewardPerToken amount.Amount `json:"reward_per_token"`
	// TotalRewards is the reward distributed and not yet withdrawn.
	TotalRewards amount.Amount `json:"total_rewards"`
	// TotalRewardTally is the sum of the reward tallies of all holders
	// with stake in the current slash epoch.
	TotalRewardTally amount.Amount `json:"total_reward_tally"`
}

var _ orm.Model = (*Pool)(nil)

func (p *Pool) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "TotalStake", nonNegative(p.TotalStake))
	errs = errors.AppendField(errs, "TotalCurrentStake", nonNegative(p.TotalCurrentStake))
	errs = errors.AppendField(errs, "SlashPerToken", nonNegative(p.SlashPerToken))
	for _, cur := range p.Currencies() {
		r := p.Rewards[cur]
		if r == nil {
			errs = errors.AppendField(errs, "Rewards."+cur, errors.ErrEmpty)
			continue
		}
		errs = errors.AppendField(errs, "Rewards."+cur+".RewardPerToken", nonNegative(r.RewardPerToken))
		errs = errors.AppendField(errs, "Rewards."+cur+".TotalRewards", nonNegative(r.TotalRewards))
		errs = errors.AppendField(errs, "Rewards."+cur+".TotalRewardTally", r.TotalRewardTally.Validate())
	}
	return errs
}

func (p *Pool) Marshal() ([]byte, error) {
	return stakeweave.MarshalJSON(p)
}

func (p *Pool) Unmarshal(raw []byte) error {
	return stakeweave.UnmarshalJSON(raw, p)
}

// Currencies returns all reward currencies ever distributed, sorted.
func (p *Pool) Currencies() []string {
	res := make([]string, 0, len(p.Rewards))
	for cur := range p.Rewards {
		res = append(res, cur)
	}
	sort.Strings(res)
	return res
}

// Reward returns the accumulators of currency. A currency that was never
// distributed has all of them at zero.
func (p *Pool) Reward(currency string) Reward {
	if r, ok := p.Rewards[currency]; ok && r != nil {
		return *r
	}
	return Reward{
		RewardPerToken:   amount.Zero(),
		TotalRewards:     amount.Zero(),
		TotalRewardTally: amount.Zero(),
	}
}

// reward returns the accumulators of currency for update, creating them
// if needed.
func (p *Pool) reward(currency string) *Reward {
	if r, ok := p.Rewards[currency]; ok && r != nil {
		return r
	}
	if p.Rewards == nil {
		p.Rewards = make(map[string]*Reward)
	}
	r := p.Reward(currency)
	p.Rewards[currency] = &r
	return &r
}

func (p *Pool) clone() *Pool {
	cp := *p
	cp.Rewards = make(map[string]*Reward, len(p.Rewards))
	for cur, r := range p.Rewards {
		r := *r
		cp.Rewards[cur] = &r
	}
	return &cp
}

// Stake is the record of a single stakeholder at one nonce.
type Stake struct {
	// Stake is the nominal stake, without the pending slash.
	Stake      amount.Amount `json:"stake"`
	SlashTally amount.Amount `json:"slash_tally"`
	SlashEpoch uint64        `json:"slash_epoch,omitempty"`
	// RewardTally is kept per reward currency. A tally can go below zero
	// after a withdrawal.
	RewardTally map[string]amount.Amount `json:"reward_tally,omitempty"`

	// held is the share of the pool reward tally totals at load time.
	held map[string]amount.Amount
}

var _ orm.Model = (*Stake)(nil)

func (s *Stake) Validate() error {
	return errors.AppendField(nil, "Stake", nonNegative(s.Stake))
}

func (s *Stake) Marshal() ([]byte, error) {
	return stakeweave.MarshalJSON(s)
}

func (s *Stake) Unmarshal(raw []byte) error {
	return stakeweave.UnmarshalJSON(raw, s)
}

// Tally returns the reward tally of currency.
func (s *Stake) Tally(currency string) amount.Amount {
	if t, ok := s.RewardTally[currency]; ok {
		return t
	}
	return amount.Zero()
}

func (s *Stake) currencies() []string {
	res := make([]string, 0, len(s.RewardTally))
	for cur := range s.RewardTally {
		res = append(res, cur)
	}
	sort.Strings(res)
	return res
}

func (s *Stake) setTally(currency string, t amount.Amount) {
	if s.RewardTally == nil {
		s.RewardTally = make(map[string]amount.Amount)
	}
	s.RewardTally[currency] = t
}

func nonNegative(a amount.Amount) error {
	if a.IsNegative() {
		return errors.Wrapf(errors.ErrModel, "negative value %s", a)
	}
	return a.Validate()
}

// nonceRecord keeps the current nonce of a ledger.
type nonceRecord struct {
	Nonce uint64 `json:"nonce"`
}

func (n *nonceRecord) Validate() error { return nil }

func (n *nonceRecord) Marshal() ([]byte, error) {
	return stakeweave.MarshalJSON(n)
}

func (n *nonceRecord) Unmarshal(raw []byte) error {
	return stakeweave.UnmarshalJSON(raw, n)
}
