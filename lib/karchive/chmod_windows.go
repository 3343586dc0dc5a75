//go:build windows

package karchive

import "os"

// Windows only supports the read-only bit, which does not map to the unix
// permissions stored in archives. Restoring permissions is a noop.
func chmod(path string, mode os.FileMode) error {
	return nil
}
