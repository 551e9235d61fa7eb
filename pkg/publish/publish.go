// Package publish writes Maven POM publication descriptors from the
// synchronized module metadata and the resolved dependencies.
package publish

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/settle/pkg/errors"
	"github.com/arthur-debert/settle/pkg/logging"
	"github.com/arthur-debert/settle/pkg/types"
	"github.com/beevik/etree"
)

const (
	// PublicationsDir is relative to the module directory
	PublicationsDir = "build/publications"
	POMFileName     = "pom.xml"
)

// MavenScope maps a dependency scope to a Maven scope. The second result
// is false for scopes that are not published.
func MavenScope(scope string) (string, bool) {
	switch {
	case scope == "api":
		return "compile", true
	case scope == "implementation" || scope == "runtimeOnly":
		return "runtime", true
	case scope == "compileOnly":
		return "provided", true
	case strings.HasPrefix(scope, "test"):
		return "test", true
	default:
		return "", false
	}
}

// Descriptor builds the POM document of a module. resolved maps scope
// names to their resolved coordinates.
func Descriptor(m *types.Module, resolved map[string][]types.Coordinate) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	project := doc.CreateElement("project")
	project.CreateAttr("xmlns", "http://maven.apache.org/POM/4.0.0")
	project.CreateAttr("xmlns:xsi", "http://www.w3.org/2001/XMLSchema-instance")
	project.CreateAttr("xsi:schemaLocation", "http://maven.apache.org/POM/4.0.0 https://maven.apache.org/xsd/maven-4.0.0.xsd")
	project.CreateElement("modelVersion").SetText("4.0.0")

	if m.Config.Group != "" {
		project.CreateElement("groupId").SetText(m.Config.Group)
	}
	project.CreateElement("artifactId").SetText(m.Name)
	if m.Config.Version != "" {
		project.CreateElement("version").SetText(m.Config.Version)
	}
	if m.Config.Description != "" {
		project.CreateElement("description").SetText(m.Config.Description)
	}

	type entry struct {
		coord types.Coordinate
		scope string
	}
	var entries []entry
	seen := map[types.Identity]bool{}

	scopes := make([]string, 0, len(resolved))
	for scope := range resolved {
		scopes = append(scopes, scope)
	}
	sort.Strings(scopes)
	for _, scope := range scopes {
		mavenScope, ok := MavenScope(scope)
		if !ok {
			continue
		}
		for _, c := range resolved[scope] {
			if seen[c.Identity()] {
				continue
			}
			seen[c.Identity()] = true
			entries = append(entries, entry{coord: c, scope: mavenScope})
		}
	}

	if len(entries) > 0 {
		deps := project.CreateElement("dependencies")
		for _, e := range entries {
			dep := deps.CreateElement("dependency")
			dep.CreateElement("groupId").SetText(e.coord.Group)
			dep.CreateElement("artifactId").SetText(e.coord.Artifact)
			if e.coord.Version != "" {
				dep.CreateElement("version").SetText(e.coord.Version)
			}
			dep.CreateElement("scope").SetText(e.scope)
		}
	}

	doc.Indent(2)
	return doc
}

// WritePOM writes the descriptor to <module>/build/publications/pom.xml
func WritePOM(fs types.FS, m *types.Module, resolved map[string][]types.Coordinate) (string, error) {
	dir := filepath.Join(m.Dir, PublicationsDir)
	path := filepath.Join(dir, POMFileName)

	data, err := Descriptor(m, resolved).WriteToBytes()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to encode POM").
			WithDetail("module", m.Path)
	}
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrap(err, errors.ErrDirCreate, "failed to create publications directory").
			WithDetail("dir", dir)
	}
	if err := fs.WriteFile(path, data, 0644); err != nil {
		return "", errors.Wrap(err, errors.ErrFileWrite, "failed to write POM").
			WithDetail("path", path)
	}

	logger := logging.ForModule("publish", m.Path)
	logger.Info().Str("path", path).Msg("POM written")
	return path, nil
}
