package catalog

import (
	"sort"
	"strings"

	"github.com/arthur-debert/settle/pkg/errors"
	"github.com/arthur-debert/settle/pkg/types"
)

// Catalog is an immutable mapping from alias to coordinate
type Catalog struct {
	name    string
	entries map[string]types.Coordinate
	aliases []string
}

// New builds a catalog from declared aliases. Aliases must stay unique
// after normalization.
func New(name string, declared map[string]types.Coordinate) (*Catalog, error) {
	c := &Catalog{
		name:    name,
		entries: make(map[string]types.Coordinate, len(declared)),
	}

	seen := make(map[string]string, len(declared))
	for alias, coord := range declared {
		key := NormalizeAlias(alias)
		if key == "" {
			return nil, errors.New(errors.ErrCatalogInvalid, "empty library alias").
				WithDetail("catalog", name)
		}
		if prev, ok := seen[key]; ok {
			return nil, errors.Newf(errors.ErrCatalogInvalid,
				"aliases %q and %q both normalize to %q", prev, alias, key).
				WithDetail("catalog", name)
		}
		seen[key] = alias
		c.entries[key] = coord
		c.aliases = append(c.aliases, key)
	}
	sort.Strings(c.aliases)
	return c, nil
}

// Name returns the catalog name, e.g. "libs"
func (c *Catalog) Name() string {
	return c.name
}

// Aliases returns all normalized library aliases in sorted order
func (c *Catalog) Aliases() []string {
	out := make([]string, len(c.aliases))
	copy(out, c.aliases)
	return out
}

// Len returns the number of library aliases
func (c *Catalog) Len() int {
	return len(c.aliases)
}

// Lookup resolves an alias to its coordinate. An unknown alias is an
// error, never a default.
func (c *Catalog) Lookup(alias string) (types.Coordinate, error) {
	coord, ok := c.entries[NormalizeAlias(alias)]
	if !ok {
		return types.Coordinate{}, errors.Newf(errors.ErrAliasNotFound,
			"alias %q not found in catalog %q", alias, c.name).
			WithDetail("catalog", c.name).
			WithDetail("alias", alias)
	}
	return coord, nil
}

// NormalizeAlias maps '-' and '_' separators to '.'
func NormalizeAlias(alias string) string {
	return strings.NewReplacer("-", ".", "_", ".").Replace(strings.TrimSpace(alias))
}
