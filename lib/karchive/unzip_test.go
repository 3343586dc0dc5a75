package karchive

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/enfabrica/kunzip/lib/errdiff"
	"github.com/enfabrica/kunzip/lib/multierror"
	"github.com/enfabrica/kunzip/lib/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/yeka/zip"
)

const readme = "hello, kunzip world!"

func writeZip(t *testing.T, entries ...testutil.Entry) string {
	return testutil.WriteFile(t, t.TempDir(), "archive.zip", testutil.Zip(t, entries...))
}

func lines(out *strings.Builder) func(string, ...interface{}) {
	return func(format string, args ...interface{}) {
		fmt.Fprintf(out, format, args...)
	}
}

func TestUnzipExample(t *testing.T) {
	archive := writeZip(t,
		testutil.Entry{Name: "docs/"},
		testutil.Entry{Name: "docs/readme.txt", Body: readme},
		testutil.Entry{Name: "empty/"},
	)
	dest := filepath.Join(t.TempDir(), "out")

	var out strings.Builder
	result, err := Unzip(archive, dest, WithReporter(NewLineReporter(lines(&out))))
	assert.NoError(t, err)

	assert.Equal(t, 2, result.Directories)
	assert.Equal(t, 1, result.Files)
	assert.Equal(t, int64(20), result.Bytes)
	assert.Equal(t, 0, result.Skipped)

	testutil.AssertTree(t, testutil.NewFS(t, map[string][]byte{
		"docs/readme.txt": []byte(readme),
		"empty/":          nil,
	}), dest)

	expected := fmt.Sprintf("File 0 extracted to %q\nFile 1 extracted to %q (20 bytes)\nFile 2 extracted to %q\n",
		filepath.Join(dest, "docs"), filepath.Join(dest, "docs", "readme.txt"), filepath.Join(dest, "empty"))
	assert.Equal(t, expected, out.String())
}

func TestUnzipObjectCount(t *testing.T) {
	entries := []testutil.Entry{
		{Name: "a/"},
		{Name: "a/one.txt", Body: "1"},
		{Name: "a/b/"},
		{Name: "a/b/two.txt", Body: "22"},
		{Name: "three.txt", Body: "333"},
		{Name: "c/"},
	}
	dest := t.TempDir()
	result, err := Unzip(writeZip(t, entries...), dest)
	assert.NoError(t, err)
	assert.Equal(t, len(entries), result.Directories+result.Files)

	tree := testutil.ListDir(t, dest)
	assert.Len(t, tree, len(entries))
	assert.Equal(t, "dir/", tree["c"])
	assert.Equal(t, "22", tree["a/b/two.txt"])
}

func TestUnzipSharedParents(t *testing.T) {
	archive := writeZip(t,
		testutil.Entry{Name: "a/b/1.txt", Body: "1"},
		testutil.Entry{Name: "a/b/2.txt", Body: "2"},
		testutil.Entry{Name: "a/c/3.txt", Body: "3"},
		testutil.Entry{Name: "a/b/"},
	)
	dest := filepath.Join(t.TempDir(), "out")

	result, err := Unzip(archive, dest)
	assert.NoError(t, err)
	assert.Equal(t, []string{
		dest,
		filepath.Join(dest, "a"),
		filepath.Join(dest, "a", "b"),
		filepath.Join(dest, "a", "c"),
	}, result.Created)
	assert.Equal(t, 3, result.Files)
	assert.Equal(t, 1, result.Directories)
}

func TestUnzipBinaryContent(t *testing.T) {
	var body bytes.Buffer
	for i := 0; i < 256*1024; i++ {
		body.WriteByte(byte(i * 7))
	}
	dest := t.TempDir()
	_, err := Unzip(writeZip(t, testutil.Entry{Name: "blob.bin", Body: body.String()}), dest)
	assert.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dest, "blob.bin"))
	assert.NoError(t, err)
	assert.True(t, bytes.Equal(body.Bytes(), data))
}

func TestUnzipSkipsEscapingEntries(t *testing.T) {
	top := t.TempDir()
	dest := filepath.Join(top, "out")
	archive := writeZip(t,
		testutil.Entry{Name: "../evil.txt", Body: "evil"},
		testutil.Entry{Name: "/etc/evil.txt", Body: "evil"},
		testutil.Entry{Name: "ok.txt", Body: "ok"},
		testutil.Entry{Name: "a/../../evil.txt", Body: "evil"},
		testutil.Entry{Name: "C:\\evil.txt", Body: "evil"},
	)

	var out strings.Builder
	result, err := Unzip(archive, dest, WithReporter(NewLineReporter(lines(&out))))
	assert.NoError(t, err)
	assert.Equal(t, 4, result.Skipped)
	assert.Equal(t, 1, result.Files)

	assert.Equal(t, testutil.Tree{"ok.txt": "ok"}, testutil.ListDir(t, dest))
	_, err = os.Stat(filepath.Join(top, "evil.txt"))
	assert.True(t, os.IsNotExist(err))
	assert.Contains(t, out.String(), `File 0 skipped: "../evil.txt" (path escapes the destination directory)`)
	assert.Contains(t, out.String(), `File 1 skipped: "/etc/evil.txt" (path is absolute)`)
}

func TestUnzipStrictPaths(t *testing.T) {
	dest := t.TempDir()
	archive := writeZip(t,
		testutil.Entry{Name: "ok.txt", Body: "ok"},
		testutil.Entry{Name: "../evil.txt", Body: "evil"},
		testutil.Entry{Name: "after.txt", Body: "after"},
	)

	result, err := Unzip(archive, dest, WithStrictPaths(true))
	errdiff.CheckIs(t, err, ErrParentEscape)
	assert.Equal(t, ClassEntry, ClassOf(err))
	assert.True(t, IsUnsafePath(err))
	assert.Equal(t, 1, result.Files)

	var ae *Error
	assert.True(t, errors.As(err, &ae))
	assert.Equal(t, 1, ae.Index)
	assert.Equal(t, "../evil.txt", ae.Name)
	assert.Equal(t, testutil.Tree{"ok.txt": "ok"}, testutil.ListDir(t, dest))
}

func TestUnzipFileNamingRoot(t *testing.T) {
	entries := []testutil.Entry{
		{Name: "ok.txt", Body: "ok"},
		{Name: "a/..", Body: "the destination itself"},
		{Name: "after.txt", Body: "after"},
	}

	// A file cannot replace the destination: unlike escaping names, this is
	// an entry error rather than a skip.
	dest := t.TempDir()
	result, err := Unzip(writeZip(t, entries...), dest)
	errdiff.CheckIs(t, err, ErrInvalidName)
	assert.Equal(t, ClassEntry, ClassOf(err))
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, testutil.Tree{"ok.txt": "ok"}, testutil.ListDir(t, dest))

	dest = t.TempDir()
	result, err = Unzip(writeZip(t, entries...), dest, WithKeepGoing(true))
	errdiff.CheckIs(t, err, ErrInvalidName)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, testutil.Tree{"ok.txt": "ok", "after.txt": "after"}, testutil.ListDir(t, dest))
}

func TestUnzipAbortAndKeepGoing(t *testing.T) {
	entries := []testutil.Entry{
		{Name: "first.txt", Body: "first"},
		{Name: "blocked", Body: "cannot be written over a directory"},
		{Name: "secret.txt", Body: "secret", Password: "golang"},
		{Name: "last.txt", Body: "last"},
	}
	archive := writeZip(t, entries...)

	prepare := func(t *testing.T) string {
		dest := t.TempDir()
		assert.NoError(t, os.Mkdir(filepath.Join(dest, "blocked"), 0755))
		return dest
	}

	t.Run("abort", func(t *testing.T) {
		dest := prepare(t)
		result, err := Unzip(archive, dest)
		assert.Error(t, err)
		assert.Equal(t, ClassFilesystem, ClassOf(err))
		assert.Len(t, multierror.Errors(err), 1)
		assert.Equal(t, 1, result.Files)

		_, err = os.Stat(filepath.Join(dest, "last.txt"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("keep going", func(t *testing.T) {
		dest := prepare(t)
		var out strings.Builder
		result, err := Unzip(archive, dest, WithKeepGoing(true), WithReporter(NewLineReporter(lines(&out))))
		assert.Error(t, err)
		assert.Equal(t, ClassFilesystem, ClassOf(err))
		assert.True(t, errors.Is(err, ErrPasswordRequired))

		errs := multierror.Errors(err)
		assert.Len(t, errs, 2)
		assert.Equal(t, ClassEntry, ClassOf(errs[1]))

		assert.Equal(t, 2, result.Files)
		assert.Equal(t, 2, result.Failed)
		assert.Equal(t, "last", testutil.ListDir(t, dest)["last.txt"])
		assert.Contains(t, out.String(), `File 2 failed: "secret.txt"`)
	})
}

func TestUnzipNoClobber(t *testing.T) {
	dest := t.TempDir()
	existing := testutil.WriteFile(t, dest, "keep.txt", []byte("original"))
	archive := writeZip(t, testutil.Entry{Name: "keep.txt", Body: "replacement"})

	_, err := Unzip(archive, dest, WithNoClobber(true))
	assert.Equal(t, ClassFilesystem, ClassOf(err))
	assert.True(t, errors.Is(err, os.ErrExist))
	data, _ := os.ReadFile(existing)
	assert.Equal(t, "original", string(data))

	// Without no-clobber, the file is truncated and replaced.
	_, err = Unzip(archive, dest)
	assert.NoError(t, err)
	data, _ = os.ReadFile(existing)
	assert.Equal(t, "replacement", string(data))
}

func TestUnzipEncrypted(t *testing.T) {
	archive := writeZip(t,
		testutil.Entry{Name: "aes.txt", Body: "aes protected", Password: "golang"},
		testutil.Entry{Name: "zipcrypto.txt", Body: "zipcrypto protected", Password: "golang", Encryption: zip.StandardEncryption},
		testutil.Entry{Name: "plain.txt", Body: "plain"},
	)

	dest := t.TempDir()
	result, err := Unzip(archive, dest, WithPassword("golang"))
	assert.NoError(t, err)
	assert.Equal(t, 3, result.Files)
	assert.Equal(t, testutil.Tree{
		"aes.txt":       "aes protected",
		"zipcrypto.txt": "zipcrypto protected",
		"plain.txt":     "plain",
	}, testutil.ListDir(t, dest))

	_, err = Unzip(archive, t.TempDir())
	errdiff.CheckIs(t, err, ErrPasswordRequired)
	assert.Equal(t, ClassEntry, ClassOf(err))

	_, err = Unzip(archive, t.TempDir(), WithPassword("wrong"))
	assert.Equal(t, ClassEntry, ClassOf(err))
}

func TestUnzipRestoreMetadata(t *testing.T) {
	stamp := time.Date(2010, time.June, 7, 8, 9, 10, 0, time.UTC)
	archive := writeZip(t,
		testutil.Entry{Name: "bin/", Mode: 0750, Modified: stamp},
		testutil.Entry{Name: "bin/tool", Body: "#!/bin/sh\n", Mode: 0755, Modified: stamp},
		testutil.Entry{Name: "private.txt", Body: "private", Mode: 0640, Modified: stamp},
	)

	dest := t.TempDir()
	_, err := Unzip(archive, dest, WithPermissions(true), WithTimes(true), WithFileUmask(0022))
	assert.NoError(t, err)

	stat, err := os.Stat(filepath.Join(dest, "private.txt"))
	assert.NoError(t, err)
	assert.True(t, stat.ModTime().Equal(stamp), "%v != %v", stat.ModTime(), stamp)
	if runtime.GOOS != "windows" {
		assert.Equal(t, os.FileMode(0640), stat.Mode().Perm())

		stat, err = os.Stat(filepath.Join(dest, "bin"))
		assert.NoError(t, err)
		assert.Equal(t, os.FileMode(0750), stat.Mode().Perm())
		assert.True(t, stat.ModTime().Equal(stamp), "%v != %v", stat.ModTime(), stamp)
	}
}

func TestUnzipInputErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Unzip(filepath.Join(dir, "missing.zip"), dir)
	errdiff.Check(t, err, "input error: could not open archive")
	assert.Equal(t, ClassInput, ClassOf(err))

	garbage := testutil.WriteFile(t, dir, "garbage.zip", []byte("this is not a zip file"))
	_, err = Unzip(garbage, filepath.Join(dir, "out"))
	assert.Equal(t, ClassInput, ClassOf(err))

	// Nothing is created when the archive cannot be opened.
	_, err = os.Stat(filepath.Join(dir, "out"))
	assert.True(t, os.IsNotExist(err))
}

func TestUnzipStream(t *testing.T) {
	data := testutil.Zip(t,
		testutil.Entry{Name: "docs/"},
		testutil.Entry{Name: "docs/readme.txt", Body: readme},
		testutil.Entry{Name: "../evil.txt", Body: "evil"},
		testutil.Entry{Name: "empty/"},
	)

	dest := t.TempDir()
	var out strings.Builder
	result, err := UnzipStream(bytes.NewReader(data), dest, WithReporter(NewLineReporter(lines(&out))))
	assert.NoError(t, err)
	assert.Equal(t, 2, result.Directories)
	assert.Equal(t, 1, result.Files)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, int64(20), result.Bytes)
	testutil.AssertTree(t, testutil.NewFS(t, map[string][]byte{
		"docs/readme.txt": []byte(readme),
		"empty/":          nil,
	}), dest)
	assert.Contains(t, out.String(), "(20 bytes)")
}

func TestUnzipStreamTruncated(t *testing.T) {
	data := testutil.Zip(t, testutil.Entry{Name: "docs/readme.txt", Body: readme})

	// Cut the archive in the middle of the first local header.
	result, err := UnzipStream(bytes.NewReader(data[:10]), t.TempDir(), WithKeepGoing(true))
	errdiff.Check(t, err, "input error: reading entry 0:")
	assert.Equal(t, ClassInput, ClassOf(err))
	assert.Equal(t, 0, result.Files)

	var ae *Error
	assert.True(t, errors.As(err, &ae))
	assert.Equal(t, -1, ae.Index)
	assert.NotContains(t, err.Error(), `""`)
}

func TestUnzipStreamEncrypted(t *testing.T) {
	for _, method := range []zip.EncryptionMethod{zip.AES256Encryption, zip.StandardEncryption} {
		data := testutil.Zip(t,
			testutil.Entry{Name: "secret.txt", Body: "secret", Password: "golang", Encryption: method},
			testutil.Entry{Name: "plain.txt", Body: "plain"},
		)

		_, err := UnzipStream(bytes.NewReader(data), t.TempDir(), WithPassword("golang"))
		errdiff.CheckIs(t, err, ErrPasswordRequired)
		assert.Equal(t, ClassEntry, ClassOf(err))

		// The encrypted entry is skipped over, the following ones are extracted.
		dest := t.TempDir()
		result, err := UnzipStream(bytes.NewReader(data), dest, WithKeepGoing(true))
		errdiff.CheckIs(t, err, ErrPasswordRequired)
		assert.Equal(t, ClassEntry, ClassOf(err))
		assert.Equal(t, 1, result.Files)
		assert.Equal(t, 1, result.Failed)
		testutil.AssertTree(t, testutil.NewFS(t, map[string][]byte{
			"plain.txt": []byte("plain"),
		}), dest)
	}
}
