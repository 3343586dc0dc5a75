package karchive

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/ulikunitz/xz"
)

// TarSource returns the entries of a tar stream.
//
// Tar files can only contain regular files, symlinks, and directories.
// Any other kind of entry fails to open with ErrUnsupportedType.
type TarSource struct {
	reader *tar.Reader
}

func NewTarSource(r io.Reader) *TarSource {
	return &TarSource{reader: tar.NewReader(r)}
}

func (ts *TarSource) Next() (*Entry, error) {
	for {
		f, err := ts.reader.Next()
		if err != nil {
			return nil, err
		}

		entry := &Entry{
			Name:     f.Name,
			Size:     f.Size,
			Mode:     f.FileInfo().Mode(),
			Modified: f.ModTime,
		}

		switch f.Typeflag {
		case tar.TypeXGlobalHeader:
			// Metadata for the following entries (eg, git archive commit ids), nothing to extract.
			continue
		case tar.TypeReg:
			entry.Kind = KindFile
			entry.open = func() (io.ReadCloser, error) {
				return io.NopCloser(ts.reader), nil
			}
		case tar.TypeDir:
			entry.Kind = KindDir
			entry.Size = 0
		case tar.TypeSymlink:
			entry.Kind = KindSymlink
			entry.Linkname = f.Linkname
			entry.Size = 0
		default:
			entry.Kind = KindFile
			mode := entry.Mode
			entry.open = func() (io.ReadCloser, error) {
				return nil, fmt.Errorf("%w %v", ErrUnsupportedType, mode)
			}
		}
		return entry, nil
	}
}

// Decoder returns a reader decompressing current based on the extension of name.
//
// The returned string is name without the compression extension.
// Supported extensions are .gz, .tgz and .xz; no extension, or .tar, means no compression.
func Decoder(name string, current io.Reader) (string, io.Reader, error) {
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	switch ext {
	case "", ".tar":
		return name, current, nil
	case ".tgz":
		r, err := gzip.NewReader(current)
		return base + ".tar", r, err
	case ".xz":
		r, err := xz.NewReader(current)
		return base, r, err
	case ".gz":
		r, err := gzip.NewReader(current)
		return base, r, err
	}
	return "", nil, fmt.Errorf("format of file not known - extension %s does not match any known format", ext)
}

// Untarz opens a .tar.{gz,xz} file, and unpacks it by invoking Untar.
func Untarz(name string, r io.Reader, dest string, mods ...Modifier) (*Result, error) {
	_, d, err := Decoder(name, r)
	if err != nil {
		return nil, newError(ClassInput, -1, "", err)
	}
	return Untar(d, dest, mods...)
}

// Untar reads a .tar file (no compression), and unpacks it in the specified directory.
//
// Entries are handled just like in Extract. Targets of symlinks are resolved
// relative to dest: links can never point outside of it.
func Untar(r io.Reader, dest string, mods ...Modifier) (*Result, error) {
	return extract(NewTarSource(r), dest, newOptions(mods...))
}
