package karchive

import (
	"fmt"
	"os"
	"strings"
)

type Format int

const (
	FormatZip Format = iota
	FormatTar
	FormatTarGz
	FormatTarXz
)

// Stdin is the archive name used to read a zip stream from standard input.
const Stdin = "-"

// DetectFormat guesses the archive format from the file name.
//
// Anything not recognized as a tar file is assumed to be a zip file:
// jar, apk, whl and many other formats are zip files with a different extension.
func DetectFormat(name string) Format {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".tar"):
		return FormatTar
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return FormatTarGz
	case strings.HasSuffix(lower, ".tar.xz"):
		return FormatTarXz
	}
	return FormatZip
}

// ExtractFile extracts the archive at path into dest, picking the format based on the name.
//
// The special path "-" reads a zip stream from standard input.
func ExtractFile(path, dest string, mods ...Modifier) (*Result, error) {
	if path == Stdin {
		return UnzipStream(os.Stdin, dest, mods...)
	}

	format := DetectFormat(path)
	if format == FormatZip {
		return Unzip(path, dest, mods...)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, newError(ClassInput, -1, "", fmt.Errorf("could not open archive %s: %w", path, err))
	}
	defer f.Close()
	return Untarz(strings.ToLower(path), f, dest, mods...)
}
