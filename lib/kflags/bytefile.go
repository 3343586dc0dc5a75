package kflags

import (
	"bytes"
	"os"
)

type ByteFileModifier func(*ByteFileFlag)

// ByteFileFlag is a flag whose value is the path of a file, storing the
// content of the file rather than the path.
type ByteFileFlag struct {
	result   *[]byte
	filename string
	cutset   string
	err      *error
}

// WithError stores the error of the last read in err.
func WithError(err *error) ByteFileModifier {
	return func(bff *ByteFileFlag) {
		bff.err = err
	}
}

// WithTrim removes the characters in cutset from the end of the content.
//
// Useful for files holding a password or a token, where the trailing
// newline added by most editors is not part of the value.
func WithTrim(cutset string) ByteFileModifier {
	return func(bff *ByteFileFlag) {
		bff.cutset = cutset
	}
}

// NewByteFileFlag creates a flag that reads a file into destination.
//
// defaultFile is the path of the default file, read as soon as the flag is
// defined. Empty means no file.
func NewByteFileFlag(destination *[]byte, defaultFile string, mods ...ByteFileModifier) *ByteFileFlag {
	*destination = []byte{}
	bff := &ByteFileFlag{result: destination}
	for _, m := range mods {
		m(bff)
	}

	bff.Set(defaultFile)
	return bff
}

func (bf *ByteFileFlag) String() string {
	return bf.filename
}

func (bf *ByteFileFlag) Error() error {
	if bf.err != nil {
		return *bf.err
	}
	return nil
}

func (bf *ByteFileFlag) Set(value string) error {
	bf.filename = value
	if value == "" {
		return nil
	}

	data, err := os.ReadFile(value)
	if bf.err != nil {
		*bf.err = err
	}
	if err != nil {
		return err
	}
	*bf.result = bf.trim(data)
	return nil
}

func (bf *ByteFileFlag) SetContent(name string, content []byte) error {
	bf.filename = name
	*bf.result = bf.trim(content)
	return nil
}

func (bf *ByteFileFlag) trim(data []byte) []byte {
	if bf.cutset == "" {
		return data
	}
	return bytes.TrimRight(data, bf.cutset)
}

func (bf *ByteFileFlag) Type() string {
	return "file-path"
}
