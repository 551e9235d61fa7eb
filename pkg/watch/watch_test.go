// pkg/watch/watch_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Real filesystem (t.TempDir), fsnotify
// PURPOSE: Test debounced change notification

package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/settle/pkg/watch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_CoalescesChanges(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "core"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "out"), 0755))

	runs := make(chan []string, 4)
	w, err := watch.New(watch.Config{
		Root:     root,
		Patterns: []string{"**/README.md", "**/CHANGELOG.md"},
		Ignore:   []string{"**/out/**"},
		Debounce: 250 * time.Millisecond,
		OnChange: func(ctx context.Context, changed []string) error {
			runs <- changed
			return nil
		},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// give the watcher a moment to start its loop
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(root, "core", "README.md"), []byte("# Core\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "core", "CHANGELOG.md"), []byte("## [1.0.0]\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "core", "notes.txt"), []byte("ignored"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "out", "README.md"), []byte("ignored"), 0644))

	select {
	case changed := <-runs:
		assert.Equal(t, []string{"core/CHANGELOG.md", "core/README.md"}, changed)
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestNew_InvalidPattern(t *testing.T) {
	_, err := watch.New(watch.Config{Root: t.TempDir(), Patterns: []string{"[unclosed"}})
	assert.Error(t, err)
}
