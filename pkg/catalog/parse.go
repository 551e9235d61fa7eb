package catalog

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/settle/pkg/errors"
	"github.com/arthur-debert/settle/pkg/logging"
	"github.com/arthur-debert/settle/pkg/types"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is the on-disk encoding of a catalog file
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension. Anything that is
// not YAML is read as TOML.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// Parse decodes a catalog document and resolves every library entry
func Parse(name string, data []byte, format Format) (*Catalog, error) {
	raw := map[string]interface{}{}

	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	case FormatTOML:
		err = toml.Unmarshal(data, &raw)
	default:
		return nil, errors.Newf(errors.ErrCatalogInvalid, "unsupported catalog format %q", format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCatalogInvalid, "failed to parse catalog %q", name).
			WithDetail("format", string(format))
	}

	versions, err := parseVersions(raw["versions"])
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCatalogInvalid, "invalid [versions] in catalog %q", name)
	}

	libraries, ok := asTable(raw["libraries"])
	if !ok && raw["libraries"] != nil {
		return nil, errors.Newf(errors.ErrCatalogInvalid, "[libraries] in catalog %q is not a table", name)
	}

	declared := make(map[string]types.Coordinate, len(libraries))
	for alias, value := range libraries {
		coord, err := parseLibrary(value, versions)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrCatalogInvalid, "invalid library %q in catalog %q", alias, name).
				WithDetail("alias", alias)
		}
		declared[alias] = coord
	}

	c, err := New(name, declared)
	if err != nil {
		return nil, err
	}

	logger := logging.GetLogger("catalog")
	logger.Debug().
		Str("catalog", name).
		Int("versions", len(versions)).
		Int("libraries", c.Len()).
		Msg("Catalog parsed")
	return c, nil
}

func parseVersions(v interface{}) (map[string]string, error) {
	out := map[string]string{}
	if v == nil {
		return out, nil
	}
	table, ok := asTable(v)
	if !ok {
		return nil, fmt.Errorf("not a table")
	}
	for name, value := range table {
		version, err := parseVersion(value, nil)
		if err != nil {
			return nil, fmt.Errorf("version %q: %w", name, err)
		}
		out[name] = version
	}
	return out, nil
}

// parseVersion accepts a plain string, a {ref = "..."} reference or a
// rich version. Rich versions resolve to strictly, then require, then prefer.
func parseVersion(v interface{}, refs map[string]string) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	}

	table, ok := asTable(v)
	if !ok {
		return "", fmt.Errorf("unsupported version value %v", v)
	}
	if ref, ok := table["ref"].(string); ok {
		if refs == nil {
			return "", fmt.Errorf("version references are not allowed here")
		}
		version, found := refs[ref]
		if !found {
			return "", fmt.Errorf("unknown version reference %q", ref)
		}
		return version, nil
	}
	for _, key := range []string{"strictly", "require", "prefer"} {
		if s, ok := table[key].(string); ok && s != "" {
			return s, nil
		}
	}
	return "", fmt.Errorf("rich version has none of strictly, require or prefer")
}

func parseLibrary(v interface{}, versions map[string]string) (types.Coordinate, error) {
	if notation, ok := v.(string); ok {
		return types.ParseCoordinate(notation)
	}

	table, ok := asTable(v)
	if !ok {
		return types.Coordinate{}, fmt.Errorf("unsupported library value %v", v)
	}

	var coord types.Coordinate
	if module, ok := table["module"].(string); ok {
		parsed, err := types.ParseCoordinate(module)
		if err != nil {
			return types.Coordinate{}, err
		}
		if parsed.Version != "" {
			return types.Coordinate{}, fmt.Errorf("module %q must not carry a version", module)
		}
		coord = parsed
	} else {
		group, _ := table["group"].(string)
		artifact, _ := table["name"].(string)
		if group == "" || artifact == "" {
			return types.Coordinate{}, fmt.Errorf("library needs either module or group and name")
		}
		coord = types.Coordinate{Group: group, Artifact: artifact}
	}

	version, err := parseVersion(table["version"], versions)
	if err != nil {
		return types.Coordinate{}, err
	}
	coord.Version = version
	return coord, nil
}

func asTable(v interface{}) (map[string]interface{}, bool) {
	switch t := v.(type) {
	case map[string]interface{}:
		return t, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}
