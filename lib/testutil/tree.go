package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Tree maps slash separated paths to a description of what is found there:
// "dir/" for directories, "-> target" for symlinks, the content for files.
type Tree map[string]string

// ListFS returns the Tree of a file system, for example one created with NewFS.
func ListFS(t *testing.T, fsys fs.FS) Tree {
	t.Helper()
	tree := Tree{}
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || path == "." {
			return err
		}
		if d.IsDir() {
			tree[path] = "dir/"
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		tree[path] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("listing file system: %v", err)
	}
	return tree
}

// ListDir returns the Tree of a directory on disk. Symlinks are not followed.
func ListDir(t *testing.T, dir string) Tree {
	t.Helper()
	tree := Tree{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || path == dir {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		switch {
		case d.IsDir():
			tree[rel] = "dir/"
		case d.Type()&fs.ModeSymlink != 0:
			target, err := os.Readlink(path)
			if err != nil {
				return err
			}
			tree[rel] = "-> " + target
		default:
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			tree[rel] = string(data)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("listing directory %s: %v", dir, err)
	}
	return tree
}

// AssertTree fails the test if the content of dir differs from the want file system.
func AssertTree(t *testing.T, want fs.FS, dir string) {
	t.Helper()
	if diff := cmp.Diff(ListFS(t, want), ListDir(t, dir)); diff != "" {
		t.Errorf("content of %s does not match (-want +got):\n%s", dir, diff)
	}
}
