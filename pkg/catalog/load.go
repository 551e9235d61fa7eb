package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/settle/pkg/errors"
	"github.com/arthur-debert/settle/pkg/logging"
	"github.com/arthur-debert/settle/pkg/types"
	toml "github.com/pelletier/go-toml/v2"
)

// DefaultName is the catalog whose file may be absent without error
const DefaultName = "libs"

// SnapshotCache stores parsed catalog snapshots between runs
type SnapshotCache interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, data []byte) error
}

// Loader reads the catalogs declared at the root of a project tree
type Loader struct {
	FS   types.FS
	Root string
	// Files maps catalog names to root-relative paths
	Files map[string]string
	// Cache is optional
	Cache SnapshotCache
}

// Load reads every declared catalog without a snapshot cache
func Load(fs types.FS, root string, files map[string]string) ([]*Catalog, error) {
	return (&Loader{FS: fs, Root: root, Files: files}).Catalogs()
}

// Catalogs implements the catalog source consumed by the orchestrator.
// Catalogs are returned sorted by name.
func (l *Loader) Catalogs() ([]*Catalog, error) {
	logger := logging.GetLogger("catalog")

	names := make([]string, 0, len(l.Files))
	for name := range l.Files {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*Catalog, 0, len(names))
	for _, name := range names {
		path := filepath.Join(l.Root, l.Files[name])
		data, err := l.FS.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				if name == DefaultName {
					logger.Debug().Str("catalog", name).Str("path", path).Msg("Default catalog absent, skipping")
					continue
				}
				return nil, errors.Wrapf(err, errors.ErrFileNotFound, "catalog %q not found", name).
					WithDetail("path", path)
			}
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read catalog %q", name).
				WithDetail("path", path)
		}

		c, err := l.parse(name, data, FormatFromPath(path))
		if err != nil {
			return nil, err
		}
		logger.Info().Str("catalog", name).Int("libraries", c.Len()).Msg("Catalog loaded")
		out = append(out, c)
	}
	return out, nil
}

type snapshot struct {
	Name      string                      `toml:"name"`
	Libraries map[string]types.Coordinate `toml:"libraries"`
}

func (l *Loader) parse(name string, data []byte, format Format) (*Catalog, error) {
	if l.Cache == nil {
		return Parse(name, data, format)
	}

	logger := logging.GetLogger("catalog")
	key := snapshotKey(name, format, data)

	if cached, ok, err := l.Cache.Get(key); err != nil {
		logger.Warn().Err(err).Str("catalog", name).Msg("Snapshot cache read failed")
	} else if ok {
		var snap snapshot
		if err := toml.Unmarshal(cached, &snap); err == nil {
			if c, err := New(snap.Name, snap.Libraries); err == nil {
				logger.Debug().Str("catalog", name).Str("key", key).Msg("Catalog snapshot hit")
				return c, nil
			}
		}
		logger.Debug().Str("catalog", name).Msg("Discarding unreadable catalog snapshot")
	}

	c, err := Parse(name, data, format)
	if err != nil {
		return nil, err
	}

	snap := snapshot{Name: c.Name(), Libraries: make(map[string]types.Coordinate, c.Len())}
	for _, alias := range c.Aliases() {
		snap.Libraries[alias] = c.entries[alias]
	}
	encoded, err := toml.Marshal(snap)
	if err == nil {
		err = l.Cache.Put(key, encoded)
	}
	if err != nil {
		logger.Warn().Err(err).Str("catalog", name).Msg("Failed to store catalog snapshot")
	}
	return c, nil
}

func snapshotKey(name string, format Format, data []byte) string {
	h := sha256.New()
	h.Write([]byte("catalog\x00" + name + "\x00" + string(format) + "\x00"))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
