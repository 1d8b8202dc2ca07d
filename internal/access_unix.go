//go:build !windows

package internal

import "golang.org/x/sys/unix"

// hasAccess checks read rights, plus search rights for directories.
func hasAccess(path string, isDir bool) bool {
	mode := uint32(unix.R_OK)
	if isDir {
		mode |= unix.X_OK
	}
	return unix.Access(path, mode) == nil
}
