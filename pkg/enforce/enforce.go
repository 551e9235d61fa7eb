package enforce

import (
	"sort"

	"github.com/arthur-debert/settle/pkg/catalog"
	"github.com/arthur-debert/settle/pkg/errors"
	"github.com/arthur-debert/settle/pkg/logging"
	"github.com/arthur-debert/settle/pkg/types"
)

// Origin records which catalog entry declared a directive
type Origin struct {
	Catalog string
	Alias   string
}

func (o Origin) String() string {
	return o.Catalog + "." + o.Alias
}

// Directive forces one identity to a version
type Directive struct {
	types.Coordinate
	Origin Origin
}

// Enforcer holds the merged, conflict-free directives of all catalogs
type Enforcer struct {
	directives []Directive
}

// NewEnforcer merges the catalogs into a single directive set. Catalogs
// are visited by name and aliases in sorted order so that conflict
// reports are deterministic.
func NewEnforcer(catalogs []*catalog.Catalog) (*Enforcer, error) {
	logger := logging.GetLogger("enforce")

	sorted := make([]*catalog.Catalog, len(catalogs))
	copy(sorted, catalogs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name() < sorted[j].Name()
	})

	seen := make(map[types.Identity]Directive)
	for _, c := range sorted {
		for _, alias := range c.Aliases() {
			coord, err := c.Lookup(alias)
			if err != nil {
				return nil, err
			}
			if coord.Version == "" {
				logger.Debug().
					Str("catalog", c.Name()).
					Str("alias", alias).
					Msg("Catalog entry has no version, not forcing")
				continue
			}

			d := Directive{Coordinate: coord, Origin: Origin{Catalog: c.Name(), Alias: alias}}
			prev, ok := seen[coord.Identity()]
			if !ok {
				seen[coord.Identity()] = d
				continue
			}
			if prev.Version != coord.Version {
				return nil, errors.Newf(errors.ErrCatalogConflict,
					"catalog conflict for %s: %s (%s) vs %s (%s)",
					coord.Identity(), prev.Version, prev.Origin, coord.Version, d.Origin).
					WithDetail("identity", coord.Identity().String()).
					WithDetail("versions", []string{prev.Version, coord.Version}).
					WithDetail("origins", []string{prev.Origin.String(), d.Origin.String()})
			}
		}
	}

	e := &Enforcer{directives: make([]Directive, 0, len(seen))}
	for _, d := range seen {
		e.directives = append(e.directives, d)
	}
	sort.Slice(e.directives, func(i, j int) bool {
		return e.directives[i].Identity().String() < e.directives[j].Identity().String()
	})

	logger.Debug().Int("directives", len(e.directives)).Int("catalogs", len(sorted)).Msg("Enforcer built")
	return e, nil
}

// Directives returns the forced directives sorted by identity
func (e *Enforcer) Directives() []Directive {
	out := make([]Directive, len(e.directives))
	copy(out, e.directives)
	return out
}

// Attach applies the policy to one resolution context. Contexts with no
// requested dependencies receive it as well.
func (e *Enforcer) Attach(rc *types.ResolutionContext) {
	rc.FailOnVersionConflict = true
	for _, d := range e.directives {
		rc.Force(d.Coordinate)
	}
	logger := logging.GetLogger("enforce")
	logger.Trace().
		Str("context", rc.String()).
		Int("forced", len(e.directives)).
		Msg("Policy attached")
}

// Enforce builds an enforcer from catalogs and attaches it to every context
func Enforce(contexts []*types.ResolutionContext, catalogs []*catalog.Catalog) error {
	e, err := NewEnforcer(catalogs)
	if err != nil {
		return err
	}
	for _, rc := range contexts {
		e.Attach(rc)
	}
	return nil
}
