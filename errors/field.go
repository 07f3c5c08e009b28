package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Field wraps err with the name of the attribute it was found in, so a
// caller can tell which part of a record or genesis entry is broken. It
// returns nil for a nil err.
//
// Name fields the Go way, with dots for nested attributes and the element
// index for lists: Pool.TotalStake, Currencies.0.Currency.
func Field(fieldName string, err error, description string, args ...interface{}) error {
	if isNilErr(err) {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	if len(args) > 0 {
		description = fmt.Sprintf(description, args...)
	}
	return &fieldError{parent: err, field: fieldName, desc: description}
}

// AppendField adds the field error of fieldName, if any, to errorsOrNil.
// Validate methods use it to collect every broken attribute at once.
func AppendField(errorsOrNil error, fieldName string, fieldErrOrNil error) error {
	return Append(errorsOrNil, Field(fieldName, fieldErrOrNil, ""))
}

type fieldError struct {
	parent error
	field  string
	desc   string
}

func (err *fieldError) Error() string {
	if err.desc == "" {
		return fmt.Sprintf("field %q: %s", err.field, err.parent)
	}
	return fmt.Sprintf("field %q: %s: %s", err.field, err.desc, err.parent)
}

func (err *fieldError) Cause() error {
	return err.parent
}

func (err *fieldError) Field() string {
	return err.field
}

// FieldErrors returns all errors reported for fieldName, looking through
// wrapped and appended errors.
func FieldErrors(err error, fieldName string) []error {
	var found []error
	for !isNilErr(err) {
		if f, ok := err.(fielder); ok && f.Field() == fieldName {
			return append(found, err)
		}
		switch e := err.(type) {
		case unpacker:
			// all children are visited, a causer is one of them
			for _, child := range e.Unpack() {
				found = append(found, FieldErrors(child, fieldName)...)
			}
			return found
		case causer:
			err = e.Cause()
		default:
			return found
		}
	}
	return found
}

type fielder interface {
	Field() string
}
