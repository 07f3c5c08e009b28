package ledger

import (
	"github.com/iov-one/stakeweave"
	"github.com/iov-one/stakeweave/errors"
	"github.com/iov-one/stakeweave/gconf"
)

// SlashMode selects how a slash affects the reward accumulator.
type SlashMode string

const (
	// StakeOnly slashes reduce stake and leave RewardPerToken untouched.
	// The unclaimed reward of a holder shrinks together with its stake.
	StakeOnly SlashMode = "stake_only"

	// DiluteReward slashes additionally grow RewardPerToken by
	// RewardPerToken * amount / TotalCurrentStake, so the reward already
	// earned by the slashed stake stays with its holders.
	DiluteReward SlashMode = "dilute_reward"
)

const confPkg = "ledger"

// Configuration of all ledgers of an engine.
type Configuration struct {
	SlashMode SlashMode `json:"slash_mode"`
}

var _ gconf.Configuration = (*Configuration)(nil)

// DefaultConfiguration is used when nothing was configured.
func DefaultConfiguration() Configuration {
	return Configuration{SlashMode: DiluteReward}
}

func (c *Configuration) Validate() error {
	switch c.SlashMode {
	case StakeOnly, DiluteReward:
		return nil
	default:
		return errors.Field("SlashMode", errors.ErrInput, "unknown slash mode %q", c.SlashMode)
	}
}

func (c *Configuration) Marshal() ([]byte, error) {
	return stakeweave.MarshalJSON(c)
}

func (c *Configuration) Unmarshal(raw []byte) error {
	return stakeweave.UnmarshalJSON(raw, c)
}

// LoadConfiguration returns the stored configuration, or the default one if
// none was stored.
func LoadConfiguration(db gconf.ReadStore) (Configuration, error) {
	var conf Configuration
	switch err := gconf.Load(db, confPkg, &conf); {
	case errors.ErrNotFound.Is(err):
		return DefaultConfiguration(), nil
	case err != nil:
		return Configuration{}, err
	}
	return conf, nil
}

// SaveConfiguration validates and stores conf.
func SaveConfiguration(db gconf.Store, conf Configuration) error {
	return gconf.Save(db, confPkg, &conf)
}

// Initializer fulfils the Initializer interface to load the ledger
// configuration from the genesis file.
type Initializer struct{}

var _ stakeweave.Initializer = Initializer{}

// FromGenesis stores opts["conf"]["ledger"]. A genesis without a ledger
// section keeps the default configuration.
func (Initializer) FromGenesis(opts stakeweave.Options, db stakeweave.KVStore) error {
	var conf Configuration
	err := gconf.InitConfig(db, opts, confPkg, &conf)
	if errors.ErrNotFound.Is(err) {
		return nil
	}
	return err
}
