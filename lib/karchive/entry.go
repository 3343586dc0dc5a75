package karchive

import (
	"io"
	"os"
	"path"
	"strings"
	"time"
)

type Kind int

const (
	KindFile Kind = iota
	KindDir
	KindSymlink
)

func (k Kind) String() string {
	switch k {
	case KindDir:
		return "directory"
	case KindSymlink:
		return "symlink"
	}
	return "file"
}

// Entry is a single record read from an archive.
//
// Entries are only valid until the next call to Source.Next: for streaming
// sources, the byte stream returned by Open is invalidated by advancing.
type Entry struct {
	// Name as stored in the archive, always using / as separator.
	Name string
	// Uncompressed size, or -1 if the archive does not record it upfront.
	Size int64
	Mode os.FileMode
	// Modified may be zero if the archive did not store a time.
	Modified time.Time
	Kind     Kind
	// Target of the link, set only for KindSymlink.
	Linkname string

	open func() (io.ReadCloser, error)
}

// Open returns the decompressed content of the entry.
func (e *Entry) Open() (io.ReadCloser, error) {
	if e.open == nil {
		return io.NopCloser(strings.NewReader("")), nil
	}
	return e.open()
}

// Source enumerates the entries of an archive, in the order they are stored.
//
// Next returns io.EOF once all entries have been returned.
type Source interface {
	Next() (*Entry, error)
}

// EnclosedName turns the name of an archive entry into a relative, slash
// separated path guaranteed to stay within the extraction directory.
//
// Backslashes are considered separators, as archives created on windows
// sometimes use them. Names that are absolute, carry a drive letter, contain
// NUL bytes, or use .. to climb above the root are rejected with
// ErrAbsolutePath, ErrParentEscape or ErrInvalidName.
//
// The returned path is cleaned, and is "." for names referring to the root itself.
func EnclosedName(name string) (string, error) {
	if name == "" || strings.IndexByte(name, 0) >= 0 {
		return "", ErrInvalidName
	}

	name = strings.ReplaceAll(name, "\\", "/")
	if strings.HasPrefix(name, "/") || hasDriveLetter(name) {
		return "", ErrAbsolutePath
	}

	depth := 0
	for _, component := range strings.Split(name, "/") {
		switch component {
		case "", ".":
		case "..":
			if depth == 0 {
				return "", ErrParentEscape
			}
			depth--
		default:
			depth++
		}
	}
	return path.Clean(name), nil
}

func hasDriveLetter(name string) bool {
	if len(name) < 2 || name[1] != ':' {
		return false
	}
	c := name[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
