package enforce

import (
	"sort"
	"strings"

	"github.com/arthur-debert/settle/pkg/errors"
	"github.com/arthur-debert/settle/pkg/logging"
	"github.com/arthur-debert/settle/pkg/types"
	"golang.org/x/mod/semver"
)

// Resolve computes the selected coordinate for every identity requested in
// rc. Forced identities take the forced version. Other identities with
// disagreeing requests fail when rc.FailOnVersionConflict is set and
// otherwise converge on the highest version.
func Resolve(rc *types.ResolutionContext) ([]types.Coordinate, error) {
	logger := logging.GetLogger("enforce")

	requested := make(map[types.Identity][]string)
	var order []types.Identity
	for _, c := range rc.Requested {
		id := c.Identity()
		if _, ok := requested[id]; !ok {
			order = append(order, id)
		}
		if c.Version != "" && !containsString(requested[id], c.Version) {
			requested[id] = append(requested[id], c.Version)
		}
	}
	sort.Slice(order, func(i, j int) bool {
		return order[i].String() < order[j].String()
	})

	out := make([]types.Coordinate, 0, len(order))
	for _, id := range order {
		versions := requested[id]

		if forced, ok := rc.ForcedVersion(id); ok {
			if len(versions) > 0 && (len(versions) > 1 || versions[0] != forced) {
				logger.Debug().
					Str("context", rc.String()).
					Str("identity", id.String()).
					Strs("requested", versions).
					Str("forced", forced).
					Msg("Overriding requested version")
			}
			out = append(out, types.Coordinate{Group: id.Group, Artifact: id.Artifact, Version: forced})
			continue
		}

		switch len(versions) {
		case 0:
			out = append(out, types.Coordinate{Group: id.Group, Artifact: id.Artifact})
		case 1:
			out = append(out, types.Coordinate{Group: id.Group, Artifact: id.Artifact, Version: versions[0]})
		default:
			if rc.FailOnVersionConflict {
				sorted := append([]string(nil), versions...)
				sort.Slice(sorted, func(i, j int) bool { return CompareVersions(sorted[i], sorted[j]) < 0 })
				return nil, errors.Newf(errors.ErrUnresolvedConflict,
					"unresolved version conflict for %s in %s: %s",
					id, rc, strings.Join(sorted, ", ")).
					WithDetail("module", rc.Module).
					WithDetail("scope", rc.Scope).
					WithDetail("identity", id.String()).
					WithDetail("versions", sorted)
			}
			out = append(out, types.Coordinate{Group: id.Group, Artifact: id.Artifact, Version: highest(versions)})
		}
	}
	return out, nil
}

// CompareVersions orders two version strings. Versions that parse as
// semantic versions (with or without a leading "v") compare by semver
// precedence; anything else falls back to byte order.
func CompareVersions(a, b string) int {
	ca, cb := canonical(a), canonical(b)
	if semver.IsValid(ca) && semver.IsValid(cb) {
		if c := semver.Compare(ca, cb); c != 0 {
			return c
		}
	}
	return strings.Compare(a, b)
}

func canonical(v string) string {
	if strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}

func highest(versions []string) string {
	best := versions[0]
	for _, v := range versions[1:] {
		if CompareVersions(v, best) > 0 {
			best = v
		}
	}
	return best
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
