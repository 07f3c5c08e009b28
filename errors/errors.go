package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// Framework kinds.
var (
	// ErrInternal is never shown to a caller in detail.
	ErrInternal = Register(1, "internal")
	ErrNotFound = Register(3, "not found")
	// ErrModel is returned for a record that cannot be encoded or decoded.
	ErrModel = Register(5, "invalid model")
	// ErrHuman marks a code path that correct callers never reach.
	ErrHuman    = Register(7, "coding error")
	ErrEmpty    = Register(9, "value is empty")
	ErrState    = Register(10, "invalid state")
	ErrType     = Register(11, "invalid type")
	ErrInput    = Register(14, "invalid input")
	ErrDatabase = Register(18, "database")

	// ErrPanic is only set by Recover. Info redacts it like ErrInternal.
	ErrPanic = Register(111222, "panic")
)

// Engine kinds.
var (
	// ErrInvalidAmount is returned for a malformed amount, a negative
	// amount where none is allowed and for division by zero.
	ErrInvalidAmount = Register(13, "invalid amount")

	// ErrOverflow is returned when a result does not fit an amount.
	ErrOverflow = Register(16, "an operation cannot be completed due to value overflow")

	// ErrUnderflow is returned when a total, a stake or a collateral would
	// drop below zero.
	ErrUnderflow = Register(17, "an operation cannot be completed due to value underflow")

	// ErrInsufficientStake is returned when a withdrawal or a slash exceeds
	// the current, post slash, stake.
	ErrInsufficientStake = Register(30, "insufficient stake")

	// ErrNoStake is returned when a reward or a slash hits a pool nobody
	// stakes in.
	ErrNoStake = Register(31, "no stake")

	// ErrUnknownStakeholder is returned for a key that never deposited.
	ErrUnknownStakeholder = Register(32, "unknown stakeholder")
)

// registered holds every kind by code.
var registered = map[uint32]*Error{}

// Register declares a new error kind. Extensions register their own kinds
// from package variables. It panics if code is taken.
func Register(code uint32, description string) *Error {
	if e, ok := registered[code]; ok {
		panic(fmt.Sprintf("error with code %d is already registered: %q", code, e.desc))
	}
	e := &Error{code: code, desc: description}
	registered[code] = e
	return e
}

// Error is an error kind. Errors returned at runtime wrap one of them so
// callers can test for the kind with Is and hosts can report its code.
type Error struct {
	code uint32
	desc string
}

func (e *Error) Error() string {
	return e.desc
}

// Code returns the registered code of this error kind.
func (e *Error) Code() uint32 {
	return e.code
}

// Is returns true if err is of this kind, looking through wraps and, for
// multi errors, through every appended error.
//
// A nil kind matches only a nil error.
func (kind *Error) Is(err error) bool {
	if kind == nil {
		return isNilErr(err)
	}
	for !isNilErr(err) {
		if err == error(kind) {
			return true
		}
		if u, ok := err.(unpacker); ok {
			for _, e := range u.Unpack() {
				if kind.Is(e) {
					return true
				}
			}
		}
		c, ok := err.(causer)
		if !ok {
			return false
		}
		err = c.Cause()
	}
	return false
}

// Wrap adds description to err and, if err has none yet, a stack trace.
// It returns nil for a nil err so it can wrap a final return value.
//
// An error without a kind, for example one of the standard library, is
// reported as ErrInternal.
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	return &wrappedError{parent: err, msg: description}
}

// Wrapf is Wrap with a formatted description.
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

type wrappedError struct {
	msg    string
	parent error
}

func (e *wrappedError) Error() string {
	return fmt.Sprintf("%s: %s", e.msg, e.parent.Error())
}

func (e *wrappedError) Cause() error {
	return e.parent
}

// Format prints the message and, with %+v, the stack trace of the innermost
// wrap.
func (e *wrappedError) Format(s fmt.State, verb rune) {
	fmt.Fprint(s, e.Error())
	if verb == 'v' && s.Flag('+') {
		if st := stackTrace(e); st != nil {
			fmt.Fprintf(s, "%+v", st)
		}
	}
}

// Recover turns a panic into an ErrPanic assigned to err. Call it with
// defer, from a function returning err.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

type causer interface {
	Cause() error
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// stackTrace returns the first stack trace carried by err or an error it
// wraps.
func stackTrace(err error) errors.StackTrace {
	for {
		if st, ok := err.(stackTracer); ok {
			return st.StackTrace()
		}
		c, ok := err.(causer)
		if !ok {
			return nil
		}
		err = c.Cause()
	}
}

// isNilErr is true for a nil error and for a typed nil pointer stored in an
// error.
func isNilErr(err error) bool {
	if err == nil {
		return true
	}
	if val := reflect.ValueOf(err); val.Kind() == reflect.Ptr {
		return val.IsNil()
	}
	return false
}
