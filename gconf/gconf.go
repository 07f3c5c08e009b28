package gconf

import (
	"github.com/iov-one/stakeweave"
	"github.com/iov-one/stakeweave/errors"
)

// ReadStore is a subset of stakeweave.ReadOnlyKVStore.
type ReadStore interface {
	Get([]byte) ([]byte, error)
}

// Store is a subset of stakeweave.KVStore.
type Store interface {
	ReadStore
	Set([]byte, []byte) error
}

// ValidMarshaler is a configuration that is validated before it is saved.
type ValidMarshaler = stakeweave.MarshalValidater

// Unmarshaler loads a saved configuration.
type Unmarshaler interface {
	Unmarshal([]byte) error
}

// Configuration is the singleton a package keeps its settings in.
type Configuration interface {
	ValidMarshaler
	Unmarshaler
}

func key(pkg string) []byte {
	return []byte("_c:" + pkg)
}

// Save validates src and stores it as the configuration of pkg, replacing
// any previous one.
func Save(db Store, pkg string, src ValidMarshaler) error {
	k := key(pkg)
	if err := src.Validate(); err != nil {
		return errors.Wrapf(err, "configuration %q", pkg)
	}
	raw, err := src.Marshal()
	if err != nil {
		return errors.Wrapf(err, "configuration %q", pkg)
	}
	return errors.Wrap(db.Set(k, raw), "save configuration")
}

// Load reads the configuration of pkg into dst. ErrNotFound is returned
// if the package was never configured.
func Load(db ReadStore, pkg string, dst Unmarshaler) error {
	key := key(pkg)
	raw, err := db.Get(key)
	if err != nil {
		return err
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "key %q", key)
	}
	if err := dst.Unmarshal(raw); err != nil {
		return errors.Wrapf(err, "unmarshal: key %q", key)
	}
	return nil
}

// InitConfig saves the genesis configuration opts["conf"][pkg] of pkg. It
// returns ErrNotFound if the genesis has none, so a package can fall back to
// its defaults.
func InitConfig(db Store, opts stakeweave.Options, pkg string, conf Configuration) error {
	var confOptions stakeweave.Options
	if err := opts.ReadOptions("conf", &confOptions); err != nil {
		return errors.Wrap(err, "read conf")
	}
	if confOptions[pkg] == nil {
		return errors.Wrapf(errors.ErrNotFound, "no configuration in genesis for %q package", pkg)
	}
	if err := confOptions.ReadOptions(pkg, conf); err != nil {
		return errors.Wrapf(err, "read configuration for %s", pkg)
	}
	if err := Save(db, pkg, conf); err != nil {
		return errors.Wrapf(err, "save configuration for %s", pkg)
	}
	return nil
}
