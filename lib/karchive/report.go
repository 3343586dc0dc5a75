package karchive

import (
	"fmt"

	"github.com/enfabrica/kunzip/lib/logger"
)

// Reporter is notified of the outcome of each entry processed.
//
// Paths passed to the Reporter are the destination paths on disk, relative to
// the current directory if the destination was supplied as a relative path.
type Reporter interface {
	Directory(index int, path string)
	File(index int, path string, size int64)
	Symlink(index int, path, target string)
	Skipped(index int, name string, reason error)
	Failed(index int, name string, err error)
}

// NilReporter discards all notifications.
type NilReporter struct{}

func (NilReporter) Directory(index int, path string)             {}
func (NilReporter) File(index int, path string, size int64)      {}
func (NilReporter) Symlink(index int, path, target string)       {}
func (NilReporter) Skipped(index int, name string, reason error) {}
func (NilReporter) Failed(index int, name string, err error)     {}

// LineReporter prints one line per entry with the supplied printers.
//
// The lines look like:
//
//	File 0 extracted to "docs"
//	File 1 extracted to "docs/readme.txt" (20 bytes)
//	File 2 skipped: "../etc/passwd" (path escapes the destination directory)
type LineReporter struct {
	// Printer receives the lines of successfully extracted entries.
	Printer logger.Printer
	// Highlight receives the lines of skipped or failed entries. If nil, Printer is used.
	Highlight logger.Printer
	// Size formats the size of files. If nil, sizes are shown as "N bytes".
	Size func(size int64) string
}

func NewLineReporter(printer logger.Printer) *LineReporter {
	return &LineReporter{Printer: printer}
}

func (lr *LineReporter) size(size int64) string {
	if lr.Size != nil {
		return lr.Size(size)
	}
	if size < 0 {
		return "unknown size"
	}
	return fmt.Sprintf("%d bytes", size)
}

func (lr *LineReporter) highlight() logger.Printer {
	if lr.Highlight != nil {
		return lr.Highlight
	}
	return lr.Printer
}

func (lr *LineReporter) Directory(index int, path string) {
	lr.Printer("File %d extracted to %q\n", index, path)
}

func (lr *LineReporter) File(index int, path string, size int64) {
	lr.Printer("File %d extracted to %q (%s)\n", index, path, lr.size(size))
}

func (lr *LineReporter) Symlink(index int, path, target string) {
	lr.Printer("File %d extracted to %q (link to %q)\n", index, path, target)
}

func (lr *LineReporter) Skipped(index int, name string, reason error) {
	lr.highlight()("File %d skipped: %q (%v)\n", index, name, reason)
}

func (lr *LineReporter) Failed(index int, name string, err error) {
	lr.highlight()("File %d failed: %q (%v)\n", index, name, err)
}
