package testutil

import (
	"io/fs"
	"path"
	"strings"
	"testing"

	"github.com/psanford/memfs"
)

// NewFS returns an in memory file system with the specified files.
//
// Keys ending with / create empty directories, all other keys create files
// with the corresponding content. Parent directories are created as needed.
func NewFS(t *testing.T, files map[string][]byte) fs.FS {
	t.Helper()
	rootFS := memfs.New()
	for filename, contents := range files {
		if strings.HasSuffix(filename, "/") {
			if err := rootFS.MkdirAll(strings.TrimSuffix(filename, "/"), 0777); err != nil {
				t.Fatal(err)
			}
			continue
		}

		if dir := path.Dir(filename); dir != "." {
			if err := rootFS.MkdirAll(dir, 0777); err != nil {
				t.Fatal(err)
			}
		}
		if err := rootFS.WriteFile(filename, contents, 0644); err != nil {
			t.Fatal(err)
		}
	}
	return rootFS
}
