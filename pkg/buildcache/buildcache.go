package buildcache

import (
	"os"
	"path/filepath"
	"time"

	"github.com/arthur-debert/settle/pkg/environment"
	"github.com/arthur-debert/settle/pkg/errors"
	"github.com/arthur-debert/settle/pkg/logging"
	"github.com/arthur-debert/settle/pkg/types"
)

// EntriesDir is the cache subdirectory holding entries
const EntriesDir = "cache"

// Store is the build cache API used by the rest of settle
type Store interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, data []byte) error
	Evict() (int, error)
	Dir() string
}

type filesystemStore struct {
	fs     types.FS
	policy environment.BuildCache
	now    func() time.Time
}

// Option configures a store
type Option func(*filesystemStore)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(s *filesystemStore) {
		s.now = now
	}
}

// Open creates the cache directory on first use and evicts stale entries.
// A disabled cache is returned as a store that never hits and never writes.
func Open(fs types.FS, policy environment.BuildCache, opts ...Option) (Store, error) {
	s := &filesystemStore{fs: fs, policy: policy, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if !policy.Enabled {
		logger := logging.GetLogger("buildcache")
		logger.Debug().Msg("Build cache disabled")
		return s, nil
	}

	if err := fs.MkdirAll(s.entriesDir(), 0755); err != nil {
		return nil, errors.Wrap(err, errors.ErrDirCreate, "failed to create build cache directory").
			WithDetail("dir", s.entriesDir())
	}
	if _, err := s.Evict(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *filesystemStore) Dir() string {
	return s.policy.Dir
}

func (s *filesystemStore) entriesDir() string {
	return filepath.Join(s.policy.Dir, EntriesDir)
}

func (s *filesystemStore) entryPath(key string) string {
	shard := key
	if len(shard) > 2 {
		shard = shard[:2]
	}
	return filepath.Join(s.entriesDir(), shard, key)
}

// Get reads an entry and marks it as used
func (s *filesystemStore) Get(key string) ([]byte, bool, error) {
	if !s.policy.Enabled {
		return nil, false, nil
	}
	path := s.entryPath(key)
	data, err := s.fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, errors.ErrFileAccess, "failed to read cache entry").
			WithDetail("key", key)
	}
	now := s.now()
	if err := s.fs.Chtimes(path, now, now); err != nil {
		logger := logging.GetLogger("buildcache")
		logger.Warn().Err(err).Str("key", key).Msg("Failed to touch cache entry")
	}
	return data, true, nil
}

// Put stores an entry when pushing is enabled
func (s *filesystemStore) Put(key string, data []byte) error {
	if !s.policy.Enabled || !s.policy.Push {
		return nil
	}
	path := s.entryPath(key)
	if err := s.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, errors.ErrDirCreate, "failed to create cache shard").
			WithDetail("key", key)
	}
	if err := s.fs.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "failed to write cache entry").
			WithDetail("key", key)
	}
	now := s.now()
	if err := s.fs.Chtimes(path, now, now); err != nil {
		logger := logging.GetLogger("buildcache")
		logger.Warn().Err(err).Str("key", key).Msg("Failed to touch cache entry")
	}
	return nil
}

// Evict removes entries unused for longer than the policy allows. A
// non-positive retention keeps everything.
func (s *filesystemStore) Evict() (int, error) {
	days := s.policy.RemoveUnusedEntriesAfterDays
	if !s.policy.Enabled || days <= 0 {
		return 0, nil
	}
	logger := logging.GetLogger("buildcache")
	cutoff := s.now().Add(-time.Duration(days) * 24 * time.Hour)

	shards, err := s.fs.ReadDir(s.entriesDir())
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, errors.Wrap(err, errors.ErrFileAccess, "failed to list build cache").
			WithDetail("dir", s.entriesDir())
	}

	removed := 0
	for _, shard := range shards {
		if !shard.IsDir() {
			continue
		}
		shardDir := filepath.Join(s.entriesDir(), shard.Name())
		entries, err := s.fs.ReadDir(shardDir)
		if err != nil {
			return removed, errors.Wrap(err, errors.ErrFileAccess, "failed to list cache shard").
				WithDetail("dir", shardDir)
		}
		for _, e := range entries {
			info, err := e.Info()
			if err != nil || info.IsDir() || !info.ModTime().Before(cutoff) {
				continue
			}
			if err := s.fs.Remove(filepath.Join(shardDir, e.Name())); err != nil && !os.IsNotExist(err) {
				return removed, errors.Wrap(err, errors.ErrFileWrite, "failed to evict cache entry").
					WithDetail("key", e.Name())
			}
			removed++
		}
	}

	if removed > 0 {
		logger.Info().Int("removed", removed).Int("days", days).Msg("Evicted stale cache entries")
	}
	return removed, nil
}

// Clean deletes dir and everything below it. A missing directory is not
// an error.
func Clean(fs types.FS, dir string) error {
	logger := logging.GetLogger("buildcache")
	if _, err := fs.Stat(dir); os.IsNotExist(err) {
		logger.Info().Str("dir", dir).Msg("Nothing to clean")
		return nil
	}
	if err := fs.RemoveAll(dir); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "failed to remove build directory").
			WithDetail("dir", dir)
	}
	logger.Info().Str("dir", dir).Msg("Removed build directory")
	return nil
}
