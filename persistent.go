package stakeweave

import (
	"encoding/json"

	"github.com/iov-one/stakeweave/errors"
)

// Marshaller is a record that can be written to a store.
type Marshaller interface {
	Marshal() ([]byte, error)
}

// Persistent is a record that can be written to and read back from a
// store. Unmarshal needs a pointer receiver.
type Persistent interface {
	Marshaller
	Unmarshal([]byte) error
}

// Validater checks the invariants of a record before it is stored.
type Validater interface {
	Validate() error
}

// MarshalValidater is a record that is validated before it is written.
type MarshalValidater interface {
	Marshaller
	Validater
}

// MarshalJSON is the Marshal implementation shared by all stored records.
// Records are kept as JSON as amounts have no fixed width binary form.
func MarshalJSON(obj interface{}) ([]byte, error) {
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrModel, "marshal %T: %s", obj, err)
	}
	return raw, nil
}

// UnmarshalJSON is the Unmarshal counterpart of MarshalJSON.
func UnmarshalJSON(raw []byte, obj interface{}) error {
	if err := json.Unmarshal(raw, obj); err != nil {
		return errors.Wrapf(errors.ErrModel, "unmarshal %T: %s", obj, err)
	}
	return nil
}

// MustMarshalValid validates and marshals obj. It panics on any failure,
// use it only with records known to be valid.
func MustMarshalValid(obj MarshalValidater) []byte {
	if err := obj.Validate(); err != nil {
		panic(err)
	}
	raw, err := obj.Marshal()
	if err != nil {
		panic(err)
	}
	return raw
}
