package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/iov-one/stakeweave"
	"github.com/iov-one/stakeweave/amount"
	"github.com/iov-one/stakeweave/app"
	"github.com/iov-one/stakeweave/errors"
	"github.com/iov-one/stakeweave/store"
	"github.com/iov-one/stakeweave/x/collateral"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/tendermint/tendermint/libs/log"
)

func cmdReplay(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read a stream of JSON encoded events from the input and apply them one by one
to a new in memory engine. Every query event and every rejected event writes a
JSON encoded result to the output.

Supported operations are deposit, withdraw, nominate, unnominate, reward,
slash, rate, threshold, vault_threshold, claim, stake, pending, collateral and
capacity. For example:

  {"op": "deposit", "vault": "hex:...", "currency": "DOT", "amount": "100"}
  {"op": "reward", "reward_currency": "KINT", "amount": "10"}
  {"op": "pending", "vault": "hex:...", "currency": "DOT"}

Reward, claim and pending events without a reward_currency use `+defaultRewardCurrency+`.
`)
		fl.PrintDefaults()
	}
	var (
		genesisFl = fl.String("genesis", env("STAKECLI_GENESIS", ""),
			"Path to the genesis file. You can use STAKECLI_GENESIS environment variable to set it.")
		strictFl  = fl.Bool("strict", false, "Stop at the first rejected event.")
		verboseFl = fl.Bool("verbose", false, "Log every operation to stderr.")
		metricsFl = fl.String("metrics", "", "Write engine metrics in the Prometheus text format to this file when done.")
	)
	if err := fl.Parse(args); err != nil {
		flagDie("parse: %s", err)
	}

	logger := log.NewNopLogger()
	if *verboseFl {
		logger = log.NewTMLogger(log.NewSyncWriter(os.Stderr))
	}
	engine, err := app.NewEngine(store.MemStore(), logger)
	if err != nil {
		return fmt.Errorf("cannot create engine: %s", err)
	}
	if *genesisFl != "" {
		gen, err := app.LoadGenesis(*genesisFl)
		if err != nil {
			return fmt.Errorf("cannot load genesis: %s", err)
		}
		if err := engine.FromGenesis(context.Background(), gen.AppOptions); err != nil {
			return fmt.Errorf("cannot initialize from genesis: %s", err)
		}
	}
	reg := prometheus.NewRegistry()
	if err := engine.Register(reg); err != nil {
		return fmt.Errorf("cannot register metrics: %s", err)
	}

	if err := replay(context.Background(), engine, input, output, *strictFl); err != nil {
		return err
	}
	if *metricsFl != "" {
		if err := writeMetrics(reg, *metricsFl); err != nil {
			return fmt.Errorf("cannot write metrics: %s", err)
		}
	}
	return nil
}

func writeMetrics(g prometheus.Gatherer, path string) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	fd, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fd.Close()

	enc := expfmt.NewEncoder(fd, expfmt.FmtText)
	for _, f := range families {
		if err := enc.Encode(f); err != nil {
			return err
		}
	}
	return fd.Close()
}

// event is a single replayed operation. Only the attributes an operation
// needs must be set.
type event struct {
	Op             string             `json:"op"`
	Vault          stakeweave.Address `json:"vault"`
	Currency       string             `json:"currency"`
	RewardCurrency string             `json:"reward_currency"`
	Staker         stakeweave.Address `json:"staker"`
	Amount         amount.Amount      `json:"amount"`
}

const defaultRewardCurrency = "INTR"

func (e event) rewardCurrency() string {
	if e.RewardCurrency == "" {
		return defaultRewardCurrency
	}
	return e.RewardCurrency
}

func (e event) vault() collateral.VaultID {
	return collateral.VaultID{Account: e.Vault, Currency: e.Currency}
}

// staker defaults to the vault account.
func (e event) staker() stakeweave.Address {
	if e.Staker.IsZero() {
		return e.Vault
	}
	return e.Staker
}

type result struct {
	N      int            `json:"n"`
	Op     string         `json:"op"`
	Amount *amount.Amount `json:"amount,omitempty"`
	Code   uint32         `json:"code,omitempty"`
	Error  string         `json:"error,omitempty"`
}

func replay(ctx context.Context, engine *app.Engine, input io.Reader, output io.Writer, strict bool) error {
	dec := json.NewDecoder(input)
	enc := json.NewEncoder(output)
	for n := 1; ; n++ {
		var ev event
		switch err := dec.Decode(&ev); {
		case err == io.EOF:
			return nil
		case err != nil:
			return fmt.Errorf("cannot decode event %d: %s", n, err)
		}

		value, err := apply(ctx, engine, ev)
		if err != nil {
			if strict {
				return fmt.Errorf("event %d (%s): %s", n, ev.Op, err)
			}
			code, msg := errors.Info(err, false)
			if err := enc.Encode(result{N: n, Op: ev.Op, Code: code, Error: msg}); err != nil {
				return fmt.Errorf("cannot write result: %s", err)
			}
			continue
		}
		if value == nil {
			continue
		}
		if err := enc.Encode(result{N: n, Op: ev.Op, Amount: value}); err != nil {
			return fmt.Errorf("cannot write result: %s", err)
		}
	}
}

// apply runs a single event. Only queries and claims return a value.
func apply(ctx context.Context, engine *app.Engine, ev event) (*amount.Amount, error) {
	var (
		value amount.Amount
		err   error
	)
	switch ev.Op {
	case "deposit":
		return nil, engine.Deposit(ctx, ev.vault(), ev.Amount)
	case "withdraw":
		return nil, engine.Withdraw(ctx, ev.vault(), ev.Amount)
	case "nominate":
		return nil, engine.Nominate(ctx, ev.vault(), ev.staker(), ev.Amount)
	case "unnominate":
		return nil, engine.Unnominate(ctx, ev.vault(), ev.staker(), ev.Amount)
	case "reward":
		return nil, engine.InjectReward(ctx, ev.rewardCurrency(), ev.Amount)
	case "slash":
		return nil, engine.InjectSlash(ctx, ev.vault(), ev.Amount)
	case "rate":
		return nil, engine.SetExchangeRate(ctx, ev.Currency, ev.Amount)
	case "threshold":
		return nil, engine.SetThreshold(ctx, ev.Currency, ev.Amount)
	case "vault_threshold":
		return nil, engine.SetVaultThreshold(ctx, ev.vault(), ev.Amount)
	case "claim":
		value, err = engine.ClaimReward(ctx, ev.rewardCurrency(), ev.vault(), ev.staker())
	case "stake":
		value, err = engine.CurrentStake(ctx, ev.vault(), ev.staker())
	case "pending":
		value, err = engine.PendingReward(ctx, ev.rewardCurrency(), ev.vault(), ev.staker())
	case "collateral":
		value, err = engine.Collateral(ctx, ev.vault())
	case "capacity":
		value, err = engine.Capacity(ctx, ev.Currency)
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown operation %q", ev.Op)
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
