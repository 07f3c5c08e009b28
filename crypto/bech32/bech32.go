// Package bech32 encodes addresses in the bech32 format, a base32 text
// representation with a human readable part and a checksum.
package bech32

import (
	"github.com/btcsuite/btcutil/bech32"
	"github.com/iov-one/stakeweave/errors"
)

// Decode returns the human readable part and the payload of raw.
func Decode(raw string) (string, []byte, error) {
	hrp, data, err := bech32.Decode(raw)
	if err != nil {
		return "", nil, errors.Wrapf(errors.ErrInput, "bech32: %s", err)
	}
	payload, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", nil, errors.Wrapf(errors.ErrInput, "bech32 payload: %s", err)
	}
	return hrp, payload, nil
}

// DecodeHRP is Decode that fails unless the human readable part of raw is
// hrp.
func DecodeHRP(raw, hrp string) ([]byte, error) {
	got, payload, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	if got != hrp {
		return nil, errors.Wrapf(errors.ErrInput, "prefix %q, want %q", got, hrp)
	}
	return payload, nil
}

// Encode returns the bech32 representation of payload.
func Encode(hrp string, payload []byte) ([]byte, error) {
	data, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "bech32 payload: %s", err)
	}
	raw, err := bech32.Encode(hrp, data)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "bech32: %s", err)
	}
	return []byte(raw), nil
}
