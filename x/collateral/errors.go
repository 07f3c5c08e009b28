package collateral

import "github.com/iov-one/stakeweave/errors"

var (
	ErrUnknownCurrency        = errors.Register(200, "unknown currency")
	ErrInsufficientCollateral = errors.Register(201, "insufficient collateral")
	ErrUnknownVault           = errors.Register(202, "unknown vault")
)
