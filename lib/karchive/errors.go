package karchive

import (
	"errors"
	"fmt"
)

// Class identifies which stage of an extraction failed.
type Class int

const (
	// ClassInput means the archive itself could not be opened or decoded.
	ClassInput Class = iota + 1
	// ClassEntry means a single entry could not be resolved or read.
	ClassEntry
	// ClassFilesystem means creating or writing something on disk failed.
	ClassFilesystem
)

func (c Class) String() string {
	switch c {
	case ClassInput:
		return "input"
	case ClassEntry:
		return "entry"
	case ClassFilesystem:
		return "filesystem"
	}
	return fmt.Sprintf("class(%d)", int(c))
}

var (
	// ErrAbsolutePath is returned by EnclosedName for names rooted at / or at a drive letter.
	ErrAbsolutePath = errors.New("path is absolute")
	// ErrParentEscape is returned by EnclosedName for names climbing above the extraction root.
	ErrParentEscape = errors.New("path escapes the destination directory")
	// ErrInvalidName is returned by EnclosedName for empty names, or names containing NUL bytes.
	ErrInvalidName = errors.New("invalid entry name")

	// ErrPasswordRequired is returned when opening an encrypted entry without a password.
	ErrPasswordRequired = errors.New("entry is encrypted, a password is required")
	// ErrUnsupportedType is returned for archive entries that are neither files, directories nor symlinks.
	ErrUnsupportedType = errors.New("unsupported entry type")
)

// Error is the error returned by the extraction functions in this package.
//
// Index is the position of the entry in the archive, or -1 if the error is
// not tied to a specific entry.
type Error struct {
	Class Class
	Index int
	Name  string
	Err   error
}

func (e *Error) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s error: %v", e.Class, e.Err)
	}
	return fmt.Sprintf("%s error on entry %d %q: %v", e.Class, e.Index, e.Name, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(class Class, index int, name string, err error) *Error {
	return &Error{Class: class, Index: index, Name: name, Err: err}
}

// ClassOf returns the Class of the first *Error found in err, 0 if there is none.
func ClassOf(err error) Class {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Class
	}
	return 0
}

// IsUnsafePath returns true if the error was caused by an entry name that cannot be
// safely placed within the destination directory.
func IsUnsafePath(err error) bool {
	return errors.Is(err, ErrAbsolutePath) || errors.Is(err, ErrParentEscape) || errors.Is(err, ErrInvalidName)
}
