package errors

import "strings"

// Append clubs together all provided errors. Nil values are ignored.
//
// If all errors are nil, nil is returned. If only one error is not nil, it
// is returned unchanged. Appending a multi error flattens it.
func Append(errs ...error) error {
	var res multiErr
	for _, err := range errs {
		if isNilErr(err) {
			continue
		}
		if m, ok := err.(multiErr); ok {
			res = append(res, m...)
		} else {
			res = append(res, err)
		}
	}
	switch len(res) {
	case 0:
		return nil
	case 1:
		return res[0]
	default:
		return res
	}
}

type unpacker interface {
	Unpack() []error
}

// multiErr is an error that groups several independent failures, for
// example all the invalid fields of a record.
type multiErr []error

func (m multiErr) Error() string {
	msgs := make([]string, len(m))
	for i, e := range m {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unpack returns all the errors clubbed together.
func (m multiErr) Unpack() []error {
	return m
}
