package orm

import "github.com/iov-one/stakeweave"

// Model is what is stored in a bucket. It must be able to
// serialize itself and to validate its state before it is written.
type Model interface {
	stakeweave.Persistent
	stakeweave.Validater
}
