package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOS(t *testing.T) {
	fsys := NewOS()
	assert.NotNil(t, fsys)

	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "README.md")
	testContent := []byte("# Core\n\n")

	require.NoError(t, fsys.WriteFile(testFile, testContent, 0644))

	info, err := fsys.Stat(testFile)
	require.NoError(t, err)
	assert.Equal(t, "README.md", info.Name())
	assert.Equal(t, int64(len(testContent)), info.Size())

	content, err := fsys.ReadFile(testFile)
	require.NoError(t, err)
	assert.Equal(t, testContent, content)

	require.NoError(t, fsys.MkdirAll(filepath.Join(tmpDir, "core", "api"), 0755))

	entries, err := fsys.ReadDir(tmpDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2) // README.md and core/

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, fsys.Chtimes(testFile, old, old))
	info, err = fsys.Stat(testFile)
	require.NoError(t, err)
	assert.WithinDuration(t, old, info.ModTime(), time.Second)

	require.NoError(t, fsys.Remove(testFile))
	_, err = fsys.Stat(testFile)
	assert.True(t, os.IsNotExist(err))
}

func TestAferoFS(t *testing.T) {
	fsys := NewAferoFS(afero.NewMemMapFs())

	require.NoError(t, fsys.MkdirAll("/work/core", 0755))
	require.NoError(t, fsys.WriteFile("/work/core/build.toml", []byte("[dependencies]\n"), 0644))

	t.Run("read_dir_as_file_fails", func(t *testing.T) {
		_, err := fsys.ReadFile("/work/core")
		assert.Error(t, err)
	})

	t.Run("dir_fs_is_scoped", func(t *testing.T) {
		data, err := fs.ReadFile(fsys.DirFS("/work"), "core/build.toml")
		require.NoError(t, err)
		assert.Equal(t, "[dependencies]\n", string(data))
	})

	t.Run("remove_all", func(t *testing.T) {
		require.NoError(t, fsys.RemoveAll("/work/core"))
		_, err := fsys.Stat("/work/core/build.toml")
		assert.True(t, os.IsNotExist(err))
	})
}
