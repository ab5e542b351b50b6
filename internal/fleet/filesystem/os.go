// Package filesystem provides the OS-backed implementation of the fleet
// FileSystem interface.
package filesystem

import (
	"io/fs"
	"os"
)

// OSFileSystem implements the fleet FileSystem using operating system primitives.
type OSFileSystem struct{}

// Stat retrieves file metadata.
func (OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// MkdirAll ensures a directory hierarchy exists with the provided permissions.
func (OSFileSystem) MkdirAll(path string, permissions fs.FileMode) error {
	return os.MkdirAll(path, permissions)
}
