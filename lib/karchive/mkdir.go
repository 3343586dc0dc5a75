package karchive

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// MkdirAll is just like os.MkdirAll, except it returns the set of directories created.
//
// Directories are returned innermost first. On error, the directories that were
// being created are returned, some of which may exist.
func MkdirAll(dir string, perm os.FileMode) ([]string, error) {
	dir = filepath.Clean(dir)

	chunk := dir
	tocreate := []string{}
	for {
		stat, err := os.Stat(chunk)
		if err == nil {
			if stat.IsDir() {
				break
			}
			return nil, &os.PathError{Op: "mkdir", Path: chunk, Err: syscall.ENOTDIR}
		}
		tocreate = append(tocreate, chunk)

		ix := strings.LastIndex(chunk, string(os.PathSeparator))
		if ix <= 0 {
			break
		}
		chunk = chunk[:ix]
	}

	created := []string{}
	for ix := len(tocreate) - 1; ix >= 0; ix-- {
		err := os.Mkdir(tocreate[ix], perm)
		if err != nil {
			if errors.Is(err, fs.ErrExist) {
				continue
			}
			return reverse(created), err
		}
		created = append(created, tocreate[ix])
	}

	return reverse(created), nil
}

func reverse(dirs []string) []string {
	for i, j := 0, len(dirs)-1; i < j; i, j = i+1, j-1 {
		dirs[i], dirs[j] = dirs[j], dirs[i]
	}
	return dirs
}
