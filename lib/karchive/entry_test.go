package karchive

import (
	"io"
	"testing"

	"github.com/enfabrica/kunzip/lib/errdiff"
	"github.com/stretchr/testify/assert"
)

func TestEnclosedName(t *testing.T) {
	testCases := []struct {
		name    string
		want    string
		wantErr error
	}{
		{name: "docs/readme.txt", want: "docs/readme.txt"},
		{name: "docs/", want: "docs"},
		{name: "./docs//readme.txt", want: "docs/readme.txt"},
		{name: "a/b/../c", want: "a/c"},
		{name: "a/..", want: "."},
		{name: "docs\\windows.txt", want: "docs/windows.txt"},
		{name: "..dots/file", want: "..dots/file"},
		{name: "", wantErr: ErrInvalidName},
		{name: "nul\x00byte", wantErr: ErrInvalidName},
		{name: "/etc/passwd", wantErr: ErrAbsolutePath},
		{name: "\\share\\file", wantErr: ErrAbsolutePath},
		{name: "C:\\Windows\\win.ini", wantErr: ErrAbsolutePath},
		{name: "c:relative", wantErr: ErrAbsolutePath},
		{name: "../evil", wantErr: ErrParentEscape},
		{name: "..", wantErr: ErrParentEscape},
		{name: "a/../../evil", wantErr: ErrParentEscape},
		{name: "test/toat/../../../mandela.wisdom", wantErr: ErrParentEscape},
		{name: "a\\..\\..\\evil", wantErr: ErrParentEscape},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := EnclosedName(tc.name)
			errdiff.CheckIs(t, err, tc.wantErr)
			assert.Equal(t, tc.want, got)
			if tc.wantErr != nil {
				assert.True(t, IsUnsafePath(err))
			}
		})
	}
}

func TestEntryOpenEmpty(t *testing.T) {
	e := &Entry{Name: "empty/", Kind: KindDir}
	rc, err := e.Open()
	assert.NoError(t, err)
	data, err := io.ReadAll(rc)
	assert.NoError(t, err)
	assert.Empty(t, data)
	assert.NoError(t, rc.Close())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "file", KindFile.String())
	assert.Equal(t, "directory", KindDir.String())
	assert.Equal(t, "symlink", KindSymlink.String())
}
