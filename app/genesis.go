package app

import (
	"encoding/json"
	"io/ioutil"

	"github.com/iov-one/stakeweave"
	"github.com/iov-one/stakeweave/errors"
)

// Genesis is the file an engine is initialized from.
type Genesis struct {
	AppOptions stakeweave.Options `json:"app_options"`
}

// LoadGenesis reads a genesis file.
func LoadGenesis(filePath string) (Genesis, error) {
	var gen Genesis
	raw, err := ioutil.ReadFile(filePath)
	if err != nil {
		return gen, errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := json.Unmarshal(raw, &gen); err != nil {
		return gen, errors.Wrapf(errors.ErrInput, "genesis %s: %s", filePath, err)
	}
	return gen, nil
}
