package testutil

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/settle/pkg/types"
	"github.com/stretchr/testify/require"
)

// TestTree is an in-memory project tree rooted at Root
type TestTree struct {
	FS   types.FS
	Root string
}

// NewTestTree creates an empty project tree in a fresh in-memory filesystem
func NewTestTree(t *testing.T) *TestTree {
	t.Helper()

	fs := NewTestFS()
	root := "/work/root"
	require.NoError(t, fs.MkdirAll(root, 0755))
	return &TestTree{FS: fs, Root: root}
}

// AddFile writes a file relative to the tree root, creating parents
func (tt *TestTree) AddFile(t *testing.T, rel, content string) string {
	t.Helper()

	path := filepath.Join(tt.Root, rel)
	require.NoError(t, tt.FS.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, tt.FS.WriteFile(path, []byte(content), 0644))
	return path
}

// AddModule creates a module directory with a build file declaring the
// given dependency scopes
func (tt *TestTree) AddModule(t *testing.T, rel string, scopes map[string][]string) string {
	t.Helper()

	content := "[dependencies]\n"
	for scope, deps := range scopes {
		content += scope + " = ["
		for i, d := range deps {
			if i > 0 {
				content += ", "
			}
			content += `"` + d + `"`
		}
		content += "]\n"
	}
	tt.AddFile(t, filepath.Join(rel, "build.toml"), content)
	return filepath.Join(tt.Root, rel)
}

// ReadFile returns a file's content relative to the tree root
func (tt *TestTree) ReadFile(t *testing.T, rel string) string {
	t.Helper()

	data, err := tt.FS.ReadFile(filepath.Join(tt.Root, rel))
	require.NoError(t, err)
	return string(data)
}

// Exists reports whether a path relative to the tree root exists
func (tt *TestTree) Exists(rel string) bool {
	_, err := tt.FS.Stat(filepath.Join(tt.Root, rel))
	return err == nil
}
