package errors

import "fmt"

const (
	// SuccessCode is returned for a nil error.
	SuccessCode = 0

	// All unclassified errors that do not provide a code are clubbed
	// under an internal error code and a generic message instead of
	// detailed error string.
	internalLog = "internal error"
)

type coder interface {
	Code() uint32
}

// Code returns the code of the root error kind wrapped by err. Errors that
// do not wrap a registered kind are reported as ErrInternal.
func Code(err error) uint32 {
	if isNilErr(err) {
		return SuccessCode
	}

	for {
		if c, ok := err.(coder); ok {
			return c.Code()
		}
		if u, ok := err.(unpacker); ok {
			if errs := u.Unpack(); len(errs) > 0 {
				err = errs[0]
				continue
			}
		}
		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return ErrInternal.code
		}
	}
}

// Info returns the code and the message a host may return to its caller.
// Internal errors and recovered panics are redacted unless debug is set.
func Info(err error, debug bool) (uint32, string) {
	if isNilErr(err) {
		return SuccessCode, ""
	}

	code := Code(err)
	if debug {
		return code, fmt.Sprintf("%+v", err)
	}
	if code == ErrInternal.code || code == ErrPanic.code {
		return ErrInternal.code, internalLog
	}
	return code, err.Error()
}
