package tree

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/settle/pkg/config"
	"github.com/arthur-debert/settle/pkg/errors"
	"github.com/arthur-debert/settle/pkg/logging"
	"github.com/arthur-debert/settle/pkg/types"
	"github.com/bmatcuk/doublestar/v4"
	toml "github.com/pelletier/go-toml/v2"
)

// BuildFileName is the build file settle reads dependency scopes from
const BuildFileName = "build.toml"

// Tree is the ordered set of modules of one project
type Tree struct {
	root    *types.Module
	modules []*types.Module
	byPath  map[string]*types.Module
}

type buildFile struct {
	Repositories []string            `toml:"repositories"`
	Dependencies map[string][]string `toml:"dependencies"`
}

// Load discovers every module below root
func Load(fsys types.FS, root string, cfg *config.Config) (*Tree, error) {
	logger := logging.GetLogger("tree")

	name := cfg.Project.Name
	if name == "" {
		name = filepath.Base(root)
	}

	t := &Tree{byPath: map[string]*types.Module{}}
	t.root = types.NewModule(name, root, types.PathSeparator)
	t.add(t.root)

	for _, p := range cfg.Project.Include {
		if err := t.include(root, p); err != nil {
			return nil, err
		}
	}

	for _, pattern := range cfg.Project.IncludeGlobs {
		matches, err := doublestar.Glob(fsys.DirFS(root), pattern, doublestar.WithFailOnIOErrors())
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigValid, "invalid include glob %q", pattern)
		}
		for _, m := range matches {
			if m == "." {
				continue
			}
			dir := filepath.Join(root, filepath.FromSlash(m))
			if info, err := fsys.Stat(dir); err != nil || !info.IsDir() {
				continue
			}
			if detectBuildFile(fsys, dir, cfg.Project.BuildFiles) == "" {
				continue
			}
			if err := t.include(root, types.PathSeparator+strings.ReplaceAll(m, "/", types.PathSeparator)); err != nil {
				return nil, err
			}
		}
	}

	sort.SliceStable(t.modules, func(i, j int) bool {
		return lessPath(t.modules[i].Path, t.modules[j].Path)
	})

	for _, m := range t.modules {
		m.BuildFile = detectBuildFile(fsys, m.Dir, cfg.Project.BuildFiles)
		if m.BuildFile != BuildFileName {
			if !m.IsRoot() && m.BuildFile == "" {
				if _, err := fsys.Stat(m.Dir); os.IsNotExist(err) {
					return nil, errors.Newf(errors.ErrModuleNotFound, "module %s has no directory", m.Path).
						WithDetail("module", m.Path).
						WithDetail("dir", m.Dir)
				}
			}
			continue
		}
		if err := readBuildFile(fsys, m); err != nil {
			return nil, err
		}
	}

	logger.Info().Str("root", root).Str("name", name).Int("modules", len(t.modules)).Msg("Module tree loaded")
	return t, nil
}

// include adds the module at path and its implicit parents
func (t *Tree) include(root, p string) error {
	segments := strings.Split(strings.Trim(p, types.PathSeparator), types.PathSeparator)
	parent := types.PathSeparator
	dir := root
	for _, seg := range segments {
		if seg == "" || seg == "." || seg == ".." || strings.ContainsAny(seg, `/\`) {
			return errors.Newf(errors.ErrModuleInvalid, "invalid module path %q", p).
				WithDetail("module", p)
		}
		current := types.ChildPath(parent, seg)
		dir = filepath.Join(dir, seg)
		if _, ok := t.byPath[current]; !ok {
			t.add(types.NewModule(seg, dir, current))
		}
		parent = current
	}
	return nil
}

func (t *Tree) add(m *types.Module) {
	t.byPath[m.Path] = m
	t.modules = append(t.modules, m)
}

func detectBuildFile(fsys types.FS, dir string, names []string) string {
	for _, name := range names {
		if info, err := fsys.Stat(filepath.Join(dir, name)); err == nil && !info.IsDir() {
			return name
		}
	}
	return ""
}

func readBuildFile(fsys types.FS, m *types.Module) error {
	p := m.GetFilePath(m.BuildFile)
	data, err := fsys.ReadFile(p)
	if err != nil {
		return errors.Wrap(err, errors.ErrFileAccess, "failed to read build file").
			WithDetail("module", m.Path).
			WithDetail("path", p)
	}

	var bf buildFile
	if err := toml.Unmarshal(data, &bf); err != nil {
		return errors.Wrap(err, errors.ErrModuleInvalid, "failed to parse build file").
			WithDetail("module", m.Path).
			WithDetail("path", p)
	}

	m.Repositories = bf.Repositories
	scopes := make([]string, 0, len(bf.Dependencies))
	for scope := range bf.Dependencies {
		scopes = append(scopes, scope)
	}
	sort.Strings(scopes)
	for _, scope := range scopes {
		notations := bf.Dependencies[scope]
		requested := make([]types.Coordinate, 0, len(notations))
		for _, n := range notations {
			c, err := types.ParseCoordinate(n)
			if err != nil {
				return errors.Wrap(err, errors.ErrModuleInvalid, "invalid dependency").
					WithDetail("module", m.Path).
					WithDetail("scope", scope)
			}
			requested = append(requested, c)
		}
		m.AddContext(scope, requested)
	}

	logger := logging.ForModule("tree", m.Path)
	logger.Debug().
		Int("scopes", len(m.Contexts)).
		Int("repositories", len(m.Repositories)).
		Msg("Build file read")
	return nil
}

// lessPath orders the root first, then parents before children, then by name
func lessPath(a, b string) bool {
	as := strings.Split(strings.Trim(a, types.PathSeparator), types.PathSeparator)
	bs := strings.Split(strings.Trim(b, types.PathSeparator), types.PathSeparator)
	if a == types.PathSeparator {
		return b != types.PathSeparator
	}
	if b == types.PathSeparator {
		return false
	}
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] != bs[i] {
			return as[i] < bs[i]
		}
	}
	return len(as) < len(bs)
}

// Root returns the root module
func (t *Tree) Root() *types.Module {
	return t.root
}

// Modules returns all modules in tree order, root first
func (t *Tree) Modules() []*types.Module {
	return append([]*types.Module(nil), t.modules...)
}

// Find returns the module at a tree path
func (t *Tree) Find(modulePath string) (*types.Module, error) {
	if !strings.HasPrefix(modulePath, types.PathSeparator) {
		modulePath = types.PathSeparator + modulePath
	}
	m, ok := t.byPath[modulePath]
	if !ok {
		return nil, errors.Newf(errors.ErrModuleNotFound, "no module at %s", modulePath).
			WithDetail("module", modulePath)
	}
	return m, nil
}

// Contexts returns every resolution context of every module in tree order
func (t *Tree) Contexts() []*types.ResolutionContext {
	var out []*types.ResolutionContext
	for _, m := range t.modules {
		out = append(out, m.Contexts...)
	}
	return out
}

// WatchPatterns returns the root-relative patterns of every file whose
// change can alter the outcome of a sync
func WatchPatterns(cfg *config.Config) []string {
	out := []string{config.SettingsFileName}
	for _, name := range cfg.Project.BuildFiles {
		out = append(out, "**/"+name)
	}
	out = append(out, "**/"+cfg.Metadata.Readme, "**/"+cfg.Metadata.Changelog)

	names := make([]string, 0, len(cfg.Catalogs.Files))
	for name := range cfg.Catalogs.Files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out = append(out, filepath.ToSlash(cfg.Catalogs.Files[name]))
	}

	for _, f := range []string{cfg.Project.PropertiesFile, cfg.Project.EnvFile} {
		if f != "" {
			out = append(out, filepath.ToSlash(f))
		}
	}
	return out
}
