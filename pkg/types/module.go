package types

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// PathSeparator separates segments of a module tree path. The root
// module's path is the bare separator.
const PathSeparator = ":"

// ModuleConfig is the configuration object owned by the host build. The
// metadata synchronizer writes the effective description, version and
// group identity back into it.
type ModuleConfig struct {
	Description string
	Version     string
	Group       string
}

// Module represents one buildable unit within the project tree
type Module struct {
	// Name is the module's short name (the last tree path segment, or the
	// project name for the root)
	Name string

	// Dir is the path to the module directory
	Dir string

	// Path is the root-relative tree path, e.g. ":core:api". The root is ":".
	Path string

	// BuildFile is the build file found in Dir, empty when the module has
	// no buildable sources
	BuildFile string

	// Repositories lists repositories the module's build file declares
	Repositories []string

	// Contexts holds one resolution context per dependency scope
	Contexts []*ResolutionContext

	// Config is written back by the metadata synchronizer
	Config *ModuleConfig
}

// NewModule creates a module with an empty configuration object
func NewModule(name, dir, path string) *Module {
	return &Module{
		Name:   name,
		Dir:    dir,
		Path:   path,
		Config: &ModuleConfig{},
	}
}

// IsRoot reports whether the module is the root of the tree
func (m *Module) IsRoot() bool {
	return m.Path == PathSeparator
}

// HasBuildFile reports whether the module has buildable sources
func (m *Module) HasBuildFile() bool {
	return m.BuildFile != ""
}

// Segments returns the tree path split into its segments. The root has none.
func (m *Module) Segments() []string {
	trimmed := strings.Trim(m.Path, PathSeparator)
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, PathSeparator)
}

// GetFilePath returns the full path to a file within the module
func (m *Module) GetFilePath(filename string) string {
	return filepath.Join(m.Dir, filename)
}

// FileExists checks if a file exists within the module
func (m *Module) FileExists(fs FS, filename string) (bool, error) {
	_, err := fs.Stat(m.GetFilePath(filename))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Context returns the resolution context for scope, or nil
func (m *Module) Context(scope string) *ResolutionContext {
	for _, rc := range m.Contexts {
		if rc.Scope == scope {
			return rc
		}
	}
	return nil
}

// AddContext appends a resolution context for scope and returns it. The
// contexts are kept sorted by scope name.
func (m *Module) AddContext(scope string, requested []Coordinate) *ResolutionContext {
	rc := NewResolutionContext(m.Path, scope, requested)
	m.Contexts = append(m.Contexts, rc)
	sort.Slice(m.Contexts, func(i, j int) bool {
		return m.Contexts[i].Scope < m.Contexts[j].Scope
	})
	return rc
}

// ChildPath joins a child segment onto a parent tree path
func ChildPath(parent, name string) string {
	if parent == PathSeparator {
		return PathSeparator + name
	}
	return parent + PathSeparator + name
}
