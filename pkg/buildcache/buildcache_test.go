// pkg/buildcache/buildcache_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Memory FS
// PURPOSE: Test cache entries, eviction and the clean task

package buildcache_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/settle/pkg/buildcache"
	"github.com/arthur-debert/settle/pkg/environment"
	"github.com/arthur-debert/settle/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func policy(dir string) environment.BuildCache {
	return environment.BuildCache{
		Dir:                          dir,
		Enabled:                      true,
		Push:                         true,
		RemoveUnusedEntriesAfterDays: 7,
	}
}

func TestOpen_CreatesDirectory(t *testing.T) {
	tree := testutil.NewTestTree(t)

	store, err := buildcache.Open(tree.FS, policy(filepath.Join(tree.Root, "build")))
	require.NoError(t, err)

	assert.True(t, tree.Exists("build/cache"))
	assert.Equal(t, filepath.Join(tree.Root, "build"), store.Dir())
}

func TestPutGet(t *testing.T) {
	tree := testutil.NewTestTree(t)
	store, err := buildcache.Open(tree.FS, policy(filepath.Join(tree.Root, "build")))
	require.NoError(t, err)

	_, ok, err := store.Get("abcdef")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put("abcdef", []byte("snapshot")))
	assert.True(t, tree.Exists("build/cache/ab/abcdef"))

	data, ok, err := store.Get("abcdef")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "snapshot", string(data))
}

func TestPut_NoPush(t *testing.T) {
	tree := testutil.NewTestTree(t)
	p := policy(filepath.Join(tree.Root, "build"))
	p.Push = false

	store, err := buildcache.Open(tree.FS, p)
	require.NoError(t, err)
	require.NoError(t, store.Put("abcdef", []byte("snapshot")))

	_, ok, err := store.Get("abcdef")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDisabled(t *testing.T) {
	tree := testutil.NewTestTree(t)
	p := policy(filepath.Join(tree.Root, "build"))
	p.Enabled = false

	store, err := buildcache.Open(tree.FS, p)
	require.NoError(t, err)
	require.NoError(t, store.Put("abcdef", []byte("snapshot")))

	assert.False(t, tree.Exists("build"))
}

func TestEvict(t *testing.T) {
	tree := testutil.NewTestTree(t)
	dir := filepath.Join(tree.Root, "build")
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	now := start

	store, err := buildcache.Open(tree.FS, policy(dir), buildcache.WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	require.NoError(t, store.Put("aa01", []byte("old")))

	now = start.Add(5 * 24 * time.Hour)
	require.NoError(t, store.Put("bb02", []byte("recent")))

	now = start.Add(8 * 24 * time.Hour)
	removed, err := store.Evict()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.False(t, tree.Exists("build/cache/aa/aa01"))
	assert.True(t, tree.Exists("build/cache/bb/bb02"))

	// reading an entry counts as use
	_, ok, err := store.Get("bb02")
	require.NoError(t, err)
	require.True(t, ok)
	now = start.Add(14 * 24 * time.Hour)
	removed, err = store.Evict()
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestEvict_OnOpen(t *testing.T) {
	tree := testutil.NewTestTree(t)
	dir := filepath.Join(tree.Root, "build")
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	store, err := buildcache.Open(tree.FS, policy(dir), buildcache.WithClock(func() time.Time { return start }))
	require.NoError(t, err)
	require.NoError(t, store.Put("cc03", []byte("stale")))

	later := start.Add(30 * 24 * time.Hour)
	_, err = buildcache.Open(tree.FS, policy(dir), buildcache.WithClock(func() time.Time { return later }))
	require.NoError(t, err)
	assert.False(t, tree.Exists("build/cache/cc/cc03"))
}

func TestClean(t *testing.T) {
	tree := testutil.NewTestTree(t)
	tree.AddFile(t, "build/cache/aa/aa01", "x")
	tree.AddFile(t, "build/scans/report.prom", "y")
	dir := filepath.Join(tree.Root, "build")

	require.NoError(t, buildcache.Clean(tree.FS, dir))
	assert.False(t, tree.Exists("build"))

	// a second run succeeds on the missing directory
	require.NoError(t, buildcache.Clean(tree.FS, dir))
}
