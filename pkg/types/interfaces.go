package types

import (
	"io/fs"
	"time"
)

// FS is the filesystem interface required for settle operations
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Other operations
	Remove(name string) error
	RemoveAll(path string) error
	Chtimes(name string, atime, mtime time.Time) error

	// DirFS exposes the subtree rooted at dir as an io/fs filesystem,
	// used for glob matching.
	DirFS(dir string) fs.FS
}

// PropertyReader reads root-level project properties such as groupId.
type PropertyReader interface {
	Property(name string) (string, bool)
}

// PropertyMap is a PropertyReader backed by a plain map.
type PropertyMap map[string]string

// Property implements PropertyReader
func (m PropertyMap) Property(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}
