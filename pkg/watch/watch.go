// Package watch re-runs a callback when project files change.
//
// Events are coalesced over a debounce window and the callback runs on the
// watcher's own goroutine, so runs never overlap. Writes made by the
// callback itself show up as events too; an idempotent callback settles
// after one extra run.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/arthur-debert/settle/pkg/errors"
	"github.com/arthur-debert/settle/pkg/logging"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when Config.Debounce is not positive
const DefaultDebounce = 300 * time.Millisecond

var defaultIgnores = []string{
	"**/.git/**",
	"**/*.swp",
	"**/*~",
	"**/.DS_Store",
}

// Config controls a Watcher
type Config struct {
	// Root is watched recursively
	Root string
	// Patterns select the root-relative paths that trigger a run. Empty
	// matches everything not ignored.
	Patterns []string
	// Ignore adds to the built-in ignore patterns
	Ignore   []string
	Debounce time.Duration
	// OnChange receives the sorted root-relative paths that changed
	OnChange func(ctx context.Context, changed []string) error
}

// Watcher watches a project tree
type Watcher struct {
	cfg     Config
	fsw     *fsnotify.Watcher
	ignores []string
}

// New validates the patterns and registers every directory under Root
func New(cfg Config) (*Watcher, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, "failed to resolve watch root")
	}
	cfg.Root = root
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	for _, p := range append(append([]string(nil), cfg.Patterns...), cfg.Ignore...) {
		if !doublestar.ValidatePattern(p) {
			return nil, errors.Newf(errors.ErrInvalidInput, "invalid watch pattern %q", p)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to create file watcher")
	}

	w := &Watcher{
		cfg:     cfg,
		fsw:     fsw,
		ignores: append(append([]string(nil), defaultIgnores...), cfg.Ignore...),
	}
	if err := w.addDirectories(); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run processes events until ctx is cancelled
func (w *Watcher) Run(ctx context.Context) error {
	logger := logging.GetLogger("watch")
	defer func() {
		if err := w.fsw.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close file watcher")
		}
	}()

	pending := map[string]struct{}{}
	timer := time.NewTimer(time.Hour)
	timer.Stop()

	logger.Info().Str("root", w.cfg.Root).Msg("Watching for changes")
	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New(errors.ErrInternal, "file watcher closed unexpectedly")
			}
			rel, err := filepath.Rel(w.cfg.Root, evt.Name)
			if err != nil {
				rel = evt.Name
			}
			rel = filepath.ToSlash(rel)
			if w.ignored(rel) {
				continue
			}
			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(evt.Name, rel)
			}
			if !w.matches(rel) {
				continue
			}
			logger.Trace().Str("path", rel).Str("op", evt.Op.String()).Msg("Change detected")
			pending[rel] = struct{}{}
			timer.Reset(w.cfg.Debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			pending = map[string]struct{}{}

			if w.cfg.OnChange == nil {
				continue
			}
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				logger.Error().Err(err).Strs("changed", changed).Msg("Re-run failed")
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New(errors.ErrInternal, "file watcher closed unexpectedly")
			}
			logger.Warn().Err(err).Msg("File watcher error")
		}
	}
}

func (w *Watcher) addDirectories() error {
	return filepath.WalkDir(w.cfg.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger := logging.GetLogger("watch")
			logger.Debug().Err(err).Str("path", path).Msg("Skipping inaccessible path")
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(w.cfg.Root, path)
		if relErr == nil && rel != "." && w.dirIgnored(filepath.ToSlash(rel)) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return errors.Wrap(err, errors.ErrInternal, "failed to watch directory").
				WithDetail("dir", path)
		}
		return nil
	})
}

func (w *Watcher) maybeAddDir(path, rel string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || w.dirIgnored(rel) {
		return
	}
	if err := w.fsw.Add(path); err != nil {
		logger := logging.GetLogger("watch")
		logger.Warn().Err(err).Str("dir", path).Msg("Failed to watch new directory")
	}
}

func (w *Watcher) ignored(rel string) bool {
	return matchAny(w.ignores, rel)
}

// dirIgnored reports whether everything inside dir is ignored
func (w *Watcher) dirIgnored(dir string) bool {
	return w.ignored(dir) || w.ignored(dir+"/_")
}

func (w *Watcher) matches(rel string) bool {
	return len(w.cfg.Patterns) == 0 || matchAny(w.cfg.Patterns, rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}
