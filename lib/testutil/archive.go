package testutil

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ulikunitz/xz"
	"github.com/yeka/zip"
)

// Entry describes a file to store in a test archive.
type Entry struct {
	// Name as stored in the archive. Names ending with / are directories.
	Name string
	Body string
	// Mode of the entry. Zero means 0644 for files, 0755 for directories.
	Mode os.FileMode
	// Modified time. Zero means a fixed time in the past.
	Modified time.Time

	// Password encrypts the entry in zip archives, with AES256 unless
	// Encryption is set.
	Password   string
	Encryption zip.EncryptionMethod

	// Linkname makes the entry a symlink in tar archives.
	Linkname string
}

var defaultTime = time.Date(2001, time.February, 3, 4, 5, 6, 0, time.UTC)

func (e Entry) mode(dir bool) os.FileMode {
	if e.Mode != 0 {
		return e.Mode
	}
	if dir {
		return 0755
	}
	return 0644
}

func (e Entry) modified() time.Time {
	if e.Modified.IsZero() {
		return defaultTime
	}
	return e.Modified
}

func isDir(name string) bool {
	return len(name) > 0 && name[len(name)-1] == '/'
}

// Zip returns a zip archive with the entries specified, in order.
func Zip(t *testing.T, entries ...Entry) []byte {
	t.Helper()

	var buffer bytes.Buffer
	zw := zip.NewWriter(&buffer)
	for _, e := range entries {
		var w io.Writer
		var err error
		if e.Password != "" {
			method := e.Encryption
			if method == 0 {
				method = zip.AES256Encryption
			}
			w, err = zw.Encrypt(e.Name, e.Password, method)
		} else {
			header := &zip.FileHeader{Name: e.Name, Method: zip.Deflate}
			if isDir(e.Name) {
				header.SetMode(os.ModeDir | e.mode(true))
			} else {
				header.SetMode(e.mode(false))
			}
			header.SetModTime(e.modified())
			w, err = zw.CreateHeader(header)
		}
		if err != nil {
			t.Fatalf("adding %s to zip: %v", e.Name, err)
		}
		if _, err := io.WriteString(w, e.Body); err != nil {
			t.Fatalf("writing %s to zip: %v", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return buffer.Bytes()
}

// Tar returns an uncompressed tar archive with the entries specified, in order.
func Tar(t *testing.T, entries ...Entry) []byte {
	t.Helper()

	var buffer bytes.Buffer
	tw := tar.NewWriter(&buffer)
	for _, e := range entries {
		hdr := &tar.Header{
			Name:    e.Name,
			ModTime: e.modified(),
			Size:    int64(len(e.Body)),
		}
		switch {
		case e.Linkname != "":
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = e.Linkname
			hdr.Mode = 0777
			hdr.Size = 0
		case isDir(e.Name):
			hdr.Typeflag = tar.TypeDir
			hdr.Mode = int64(e.mode(true).Perm())
			hdr.Size = 0
		default:
			hdr.Typeflag = tar.TypeReg
			hdr.Mode = int64(e.mode(false).Perm())
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("adding %s to tar: %v", e.Name, err)
		}
		if hdr.Size > 0 {
			if _, err := io.WriteString(tw, e.Body); err != nil {
				t.Fatalf("writing %s to tar: %v", e.Name, err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("closing tar: %v", err)
	}
	return buffer.Bytes()
}

// Gzip compresses data with gzip.
func Gzip(t *testing.T, data []byte) []byte {
	t.Helper()

	var buffer bytes.Buffer
	gw := gzip.NewWriter(&buffer)
	if _, err := gw.Write(data); err != nil {
		t.Fatalf("gzip: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("gzip: %v", err)
	}
	return buffer.Bytes()
}

// Xz compresses data with xz.
func Xz(t *testing.T, data []byte) []byte {
	t.Helper()

	var buffer bytes.Buffer
	xw, err := xz.NewWriter(&buffer)
	if err != nil {
		t.Fatalf("xz: %v", err)
	}
	if _, err := xw.Write(data); err != nil {
		t.Fatalf("xz: %v", err)
	}
	if err := xw.Close(); err != nil {
		t.Fatalf("xz: %v", err)
	}
	return buffer.Bytes()
}

// WriteFile stores data in a file named name in dir, and returns its path.
func WriteFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}
