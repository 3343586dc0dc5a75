package multierror

import (
	"errors"
	"strings"
)

const Separator = "\n "

// MultiError is an error carrying a list of errors, in the order they were recorded.
type MultiError []error

var (
	_ error                            = MultiError{}
	_ interface{ Is(err error) bool }  = MultiError{}
	_ interface{ As(target any) bool } = MultiError{}
	_ interface{ Unwrap() []error }    = MultiError{}
)

// New creates a MultiError from a list of errors.
//
// nil errors in the list are dropped. If no error is left, New returns nil.
// If a single error is left, it is returned as is.
//
// A typical use is to keep going in a loop, and report all failures at the end:
//
//	var errs []error
//	for _, entry := range entries {
//		if err := process(entry); err != nil {
//			errs = append(errs, err)
//		}
//	}
//	return multierror.New(errs)
func New(errs []error) error {
	var filtered MultiError
	for _, err := range errs {
		if err == nil {
			continue
		}
		filtered = append(filtered, err)
	}

	switch len(filtered) {
	case 0:
		return nil
	case 1:
		return filtered[0]
	}
	return filtered
}

// Wrap is like New, but takes the errors as arguments.
//
//	return multierror.Wrap(err, file.Close())
func Wrap(errs ...error) error {
	return New(errs)
}

// NewOr creates a MultiError from a list of errors, or returns the fallback error.
//
// Just like New, but guarantees that an error is returned. If the list of errors is
// empty, it will return the supplied error instead.
func NewOr(errs []error, fallback error) error {
	if err := New(errs); err != nil {
		return err
	}
	return fallback
}

// Errors returns the list of errors carried by err.
//
// For a MultiError, the list it carries. For nil, an empty list. For any other error,
// a list with the error itself.
func Errors(err error) []error {
	if err == nil {
		return nil
	}
	var multi MultiError
	if errors.As(err, &multi) {
		return multi
	}
	return []error{err}
}

// Unwrap returns the list of errors, for errors.Is and errors.As to walk.
func (multi MultiError) Unwrap() []error {
	return multi
}

// As returns true for the first error in the list that can be considered As the specified target.
func (multi MultiError) As(target any) bool {
	if t, ok := target.(*MultiError); ok {
		*t = multi
		return true
	}

	for _, err := range multi {
		if errors.As(err, target) {
			return true
		}
	}
	return false
}

// Is returns true if any of the errors listed can be considered of the target type.
func (multi MultiError) Is(target error) bool {
	for _, err := range multi {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (multi MultiError) Error() string {
	messages := make([]string, 0, len(multi))
	for _, err := range multi {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, Separator)
}
