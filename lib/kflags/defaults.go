package kflags

import (
	"flag"
	"strings"
)

// Flag represents a command line flag.
type Flag interface {
	// Returns the name of the flag.
	Name() string
	// Sets the value of the flag.
	Set(string) error
	// Sets the content of the flag (for those flags that support it,
	// see the description of the ContentValue interface for more details)
	SetContent(string, []byte) error
}

// An Augmenter is an object capable of providing default flag values.
//
// Typically, it is invoked by a library that iterates over the flags of a command.
// VisitFlag is invoked for each flag the user did not set explicitly, with the
// method implementation allowed to call arbitrary methods on the flag.
//
// At the end of the walk, Done is called.
type Augmenter interface {
	// VisitFlag is used to ask the Augmenter to configure a flag.
	//
	// namespace is a string that identifies the command the flag is defined on.
	// It is generally the name of the binary, like "kunzip".
	VisitFlag(namespace string, flag Flag) (bool, error)

	// Waits for all the visit details to be filled in.
	//
	// After Done() is invoked, the caller can assume that the flags will no longer
	// be touched by the augmenter.
	Done() error
}

// SetContent is a utility function Augmenters can use to set the value of a flag.
//
// Let's say you have a flag that takes the path of a file, to load it. At run
// time, the value of the flag is the content of the file, rather than its path.
//
// SetContent will check to see if the flag implements the ContentValue interface,
// and set the content as necessary.
//
// The first string returned provides a suitable default value to show the user.
func SetContent(fl flag.Value, name string, value []byte) (string, error) {
	content, ok := fl.(ContentValue)
	if ok {
		return "<content>", content.SetContent(name, value)
	}
	newv := strings.TrimSpace(string(value))
	return newv, fl.Set(newv)
}
