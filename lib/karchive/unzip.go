package karchive

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"
	kzip "github.com/klauspost/compress/zip"
	"github.com/xenking/zipstream"
	"github.com/yeka/zip"
)

// Bits of the zip general purpose flag.
const (
	zipFlagEncrypted      = 0x1
	zipFlagDataDescriptor = 0x8
)

// ZipSource returns the entries of a zip archive in central directory order.
type ZipSource struct {
	files    []*zip.File
	password string
	next     int
}

// NewZipSource returns a Source over an already opened zip.Reader.
//
// password is used to open encrypted entries. If empty, encrypted entries
// fail to open with ErrPasswordRequired.
func NewZipSource(r *zip.Reader, password string) *ZipSource {
	return &ZipSource{files: r.File, password: password}
}

// Len returns the number of entries in the central directory.
func (zs *ZipSource) Len() int {
	return len(zs.files)
}

func (zs *ZipSource) Next() (*Entry, error) {
	if zs.next >= len(zs.files) {
		return nil, io.EOF
	}
	file := zs.files[zs.next]
	zs.next++

	entry := &Entry{
		Name:     file.Name,
		Size:     int64(file.UncompressedSize64),
		Mode:     file.Mode(),
		Modified: file.ModTime(),
		Kind:     zipKind(file.Name),
	}
	entry.open = func() (io.ReadCloser, error) {
		if file.IsEncrypted() {
			if zs.password == "" {
				return nil, ErrPasswordRequired
			}
			file.SetPassword(zs.password)
		}
		return file.Open()
	}
	return entry, nil
}

// zipKind tells directories apart from files the way zip tools do: by a trailing separator.
//
// Symlinks stored in zip files are extracted as regular files containing the target.
func zipKind(name string) Kind {
	if strings.HasSuffix(name, "/") {
		return KindDir
	}
	return KindFile
}

// Unzip opens the zip file at path, and unpacks it in the dest directory.
//
// See Extract for details on how entries are handled.
func Unzip(path, dest string, mods ...Modifier) (*Result, error) {
	o := newOptions(mods...)

	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, newError(ClassInput, -1, "", fmt.Errorf("could not open archive %s: %w", path, err))
	}
	defer rc.Close()

	src := NewZipSource(&rc.Reader, o.password)
	o.log.Debugf("archive %s has %d entries", path, src.Len())
	return extract(src, dest, o)
}

// StreamSource returns the entries of a zip archive by reading local headers
// sequentially, without access to the central directory.
//
// Sizes are unknown for entries stored with a data descriptor. Encrypted
// entries cannot be opened: they fail with ErrPasswordRequired, and are
// skipped over when the extraction keeps going.
type StreamSource struct {
	reader *zipstream.Reader
	header *kzip.FileHeader
}

// zip compression method used by WinZip AES encrypted entries.
const zipMethodAES = 99

func NewStreamSource(r io.Reader) *StreamSource {
	ss := &StreamSource{reader: zipstream.NewReader(r)}
	ss.reader.RegisterDecompressor(zipstream.Store, ss.deferred(io.NopCloser))
	ss.reader.RegisterDecompressor(zipstream.Deflate, ss.deferred(flate.NewReader))
	ss.reader.RegisterDecompressor(zipMethodAES, ss.deferred(nil))
	return ss
}

// deferred returns a zipstream.Decompressor choosing between dcomp and the raw
// bytes at the first read.
//
// zipstream picks the decompressor before the header of the entry is returned,
// while encrypted entries can only be recognized from the header flags.
func (ss *StreamSource) deferred(dcomp zipstream.Decompressor) zipstream.Decompressor {
	return func(r io.Reader) io.ReadCloser {
		return &deferredReader{source: ss, raw: r, dcomp: dcomp}
	}
}

type deferredReader struct {
	source *StreamSource
	raw    io.Reader
	dcomp  zipstream.Decompressor
	inner  io.ReadCloser
}

func (dr *deferredReader) Read(p []byte) (int, error) {
	header := dr.source.header
	if header != nil && header.Flags&zipFlagEncrypted != 0 {
		// Encrypted entries are only skipped. Their checksum covers the
		// plain text, which is never computed.
		n, err := dr.raw.Read(p)
		header.CRC32 = 0
		return n, err
	}
	if dr.inner == nil {
		if dr.dcomp == nil {
			return 0, kzip.ErrAlgorithm
		}
		dr.inner = dr.dcomp(dr.raw)
	}
	return dr.inner.Read(p)
}

func (dr *deferredReader) Close() error {
	if dr.inner == nil {
		return nil
	}
	return dr.inner.Close()
}

func (ss *StreamSource) Next() (*Entry, error) {
	meta, err := ss.reader.Next()
	if err != nil {
		ss.header = nil
		return nil, err
	}

	ss.header = meta
	encrypted := meta.Flags&zipFlagEncrypted != 0

	size := int64(meta.UncompressedSize64)
	if meta.Flags&zipFlagDataDescriptor != 0 {
		size = -1
	}

	return &Entry{
		Name:     meta.Name,
		Size:     size,
		Mode:     meta.Mode(),
		Modified: meta.Modified,
		Kind:     zipKind(meta.Name),
		open: func() (io.ReadCloser, error) {
			if encrypted {
				return nil, fmt.Errorf("%w - not supported when streaming", ErrPasswordRequired)
			}
			return io.NopCloser(ss.reader), nil
		},
	}, nil
}

// UnzipStream reads a zip archive sequentially from r, and unpacks it in the dest directory.
//
// This is useful to extract archives from pipes, like stdin, where the central
// directory at the end of the file is not reachable.
func UnzipStream(r io.Reader, dest string, mods ...Modifier) (*Result, error) {
	return extract(NewStreamSource(r), dest, newOptions(mods...))
}
