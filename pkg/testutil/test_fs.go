package testutil

import (
	"io/fs"

	"github.com/arthur-debert/settle/pkg/filesystem"
	"github.com/arthur-debert/settle/pkg/types"
	"github.com/spf13/afero"
)

// NewTestFS creates a new in-memory filesystem for testing.
func NewTestFS() types.FS {
	return filesystem.NewAferoFS(afero.NewMemMapFs())
}

// NewReadOnlyTestFS wraps an in-memory filesystem so that every write
// fails, for exercising I/O error paths.
func NewReadOnlyTestFS(files map[string]string) types.FS {
	base := afero.NewMemMapFs()
	for path, content := range files {
		_ = afero.WriteFile(base, path, []byte(content), 0644)
	}
	return filesystem.NewAferoFS(afero.NewReadOnlyFs(base))
}

// RecordingFS wraps a filesystem and records every write
type RecordingFS struct {
	types.FS
	Writes []string
}

// NewRecordingFS wraps inner
func NewRecordingFS(inner types.FS) *RecordingFS {
	return &RecordingFS{FS: inner}
}

// WriteFile records the path and delegates
func (r *RecordingFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	r.Writes = append(r.Writes, name)
	return r.FS.WriteFile(name, data, perm)
}
