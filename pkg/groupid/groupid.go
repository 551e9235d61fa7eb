// Package groupid derives the hierarchical group identity of a module from
// the root group property and the module's position in the tree.
package groupid

import (
	"strings"

	"github.com/arthur-debert/settle/pkg/logging"
	"github.com/arthur-debert/settle/pkg/types"
)

// Derive returns "{rootGroup}.{rootName}{modulePath}" with the module's own
// trailing segment removed and the remaining separators turned into dots.
// modulePath is root-relative (":core:api"), as the tree produces it.
func Derive(rootGroup, rootName, modulePath, moduleName string) string {
	full := rootGroup + "." + rootName + modulePath
	full = strings.TrimSuffix(full, types.PathSeparator+moduleName)
	return strings.ReplaceAll(full, types.PathSeparator, ".")
}

// Apply writes the derived identity into module.Config. The root module is
// left alone, as is every module when the root property is absent.
func Apply(module, root *types.Module, props types.PropertyReader, property string) {
	if module.IsRoot() {
		return
	}
	logger := logging.ForModule("groupid", module.Path)

	rootGroup, ok := props.Property(property)
	if !ok || rootGroup == "" {
		logger.Debug().Str("property", property).Msg("Root group property not set, leaving group untouched")
		return
	}

	module.Config.Group = Derive(rootGroup, root.Name, module.Path, module.Name)
	logger.Debug().Str("group", module.Config.Group).Msg("Group identity derived")
}
