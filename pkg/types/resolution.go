package types

import (
	"sort"
)

// ResolutionContext is one dependency-resolvable scope of one module,
// e.g. "implementation" or "testRuntime".
type ResolutionContext struct {
	// Module is the owning module's tree path
	Module string

	// Scope names the context within the module
	Scope string

	// FailOnVersionConflict makes the resolver fail instead of picking the
	// highest version when requests disagree
	FailOnVersionConflict bool

	// Requested lists the coordinates the module declares in this scope
	Requested []Coordinate

	forced map[Identity]string
}

// NewResolutionContext creates an empty context for a module scope
func NewResolutionContext(modulePath, scope string, requested []Coordinate) *ResolutionContext {
	return &ResolutionContext{
		Module:    modulePath,
		Scope:     scope,
		Requested: requested,
		forced:    make(map[Identity]string),
	}
}

// Force adds a forced-version directive for the coordinate's identity.
// An existing directive for the same identity is replaced.
func (rc *ResolutionContext) Force(c Coordinate) {
	if rc.forced == nil {
		rc.forced = make(map[Identity]string)
	}
	rc.forced[c.Identity()] = c.Version
}

// ForcedVersion returns the forced version for an identity, if any
func (rc *ResolutionContext) ForcedVersion(id Identity) (string, bool) {
	v, ok := rc.forced[id]
	return v, ok
}

// Forced returns all forced directives as coordinates, sorted by identity
func (rc *ResolutionContext) Forced() []Coordinate {
	out := make([]Coordinate, 0, len(rc.forced))
	for id, v := range rc.forced {
		out = append(out, Coordinate{Group: id.Group, Artifact: id.Artifact, Version: v})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Identity().String() < out[j].Identity().String()
	})
	return out
}

// String returns "module/scope" for logging
func (rc *ResolutionContext) String() string {
	return rc.Module + "/" + rc.Scope
}
