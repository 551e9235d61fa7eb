package types

import (
	"fmt"
	"strings"
)

// Identity is the (group, artifact) pair that identifies a dependency
// independently of its version.
type Identity struct {
	Group    string
	Artifact string
}

// String returns the "group:artifact" notation
func (i Identity) String() string {
	return i.Group + ":" + i.Artifact
}

// Coordinate identifies a specific dependency artifact and version.
type Coordinate struct {
	Group    string `toml:"group" yaml:"group"`
	Artifact string `toml:"artifact" yaml:"artifact"`
	Version  string `toml:"version" yaml:"version"`
}

// Identity returns the version-independent identity of the coordinate
func (c Coordinate) Identity() Identity {
	return Identity{Group: c.Group, Artifact: c.Artifact}
}

// String returns the "group:artifact:version" notation. A coordinate
// without a version renders as "group:artifact".
func (c Coordinate) String() string {
	if c.Version == "" {
		return c.Identity().String()
	}
	return c.Group + ":" + c.Artifact + ":" + c.Version
}

// WithVersion returns a copy of the coordinate carrying version
func (c Coordinate) WithVersion(version string) Coordinate {
	c.Version = version
	return c
}

// ParseCoordinate parses "group:artifact" or "group:artifact:version".
func ParseCoordinate(notation string) (Coordinate, error) {
	parts := strings.Split(strings.TrimSpace(notation), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return Coordinate{}, fmt.Errorf("invalid dependency notation %q: want group:artifact[:version]", notation)
	}
	for _, p := range parts {
		if p == "" {
			return Coordinate{}, fmt.Errorf("invalid dependency notation %q: empty segment", notation)
		}
	}

	c := Coordinate{Group: parts[0], Artifact: parts[1]}
	if len(parts) == 3 {
		c.Version = parts[2]
	}
	return c, nil
}
