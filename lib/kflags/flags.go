package kflags

import (
	"fmt"
)

// FlagSet interface provides an abstraction over a flag set, adding features from this library.
//
// Libraries register their flags on a FlagSet without knowing if the command
// line is handled by cobra (see kcobra) or something else.
type FlagSet interface {
	BoolVar(p *bool, name string, value bool, usage string)
	StringVar(p *string, name string, value string, usage string)
	ByteFileVar(p *[]byte, name string, defaultFile string, usage string, mods ...ByteFileModifier)
	IntVar(p *int, name string, value int, usage string)
}

// All flags have an associated Value: a boolean, a string, an integer, ...
//
// Normally, the string passed on the command line is directly converted into the target type.
//
// Some flags provide a level of indirection instead. For example, the ByteFile type
// creates a parameter that contains the path of a file name, but actually stores the
// byte content of the file. Those flags implement the ContentValue interface:
//   - the normal Set(string) would be used to set the value of the flag, which represents the
//     pointer, where to read the real value.
//   - SetContent(string) would be used to set the content of the flag, the value that the
//     flag would store in the target destination.
type ContentValue interface {
	SetContent(origin string, content []byte) error
}

// Wrap errors in a StatusError to indicate a different exit value to be
// returned if the error causes the program to exit.
type StatusError struct {
	error
	Code int
}

func (se *StatusError) Unwrap() error {
	return se.error
}

func NewStatusError(code int, err error) *StatusError {
	return &StatusError{error: err, Code: code}
}

func NewStatusErrorf(code int, f string, args ...interface{}) *StatusError {
	return &StatusError{error: fmt.Errorf(f, args...), Code: code}
}

// Wrap errors in an UsageError to indicate that the problem has been caused
// by incorrect flags or arguments by the user, and as such, the help screen should be printed.
type UsageError struct {
	error
}

func (ue *UsageError) Unwrap() error {
	return ue.error
}

func NewUsageError(err error) *UsageError {
	return &UsageError{error: err}
}

func NewUsageErrorf(f string, args ...interface{}) *UsageError {
	return &UsageError{error: fmt.Errorf(f, args...)}
}

// An ErrorHandler takes an error as input, transforms it, and returns an error as output.
//
// This can be used, for example, to improve the readability of an error, or to turn
// a low level error into one carrying an exit status.
//
// For each error, all error handlers configured are executed in the order they were originally
// supplied, each taking as input the output of the previous handler.
type ErrorHandler func(err error) error
