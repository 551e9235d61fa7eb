package settle

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Apply shared build conventions to a multi-module project tree"
	MsgSyncShort       = "Synchronize module metadata and enforce catalog versions"
	MsgCheckShort      = "Fail when any dependency scope holds an unresolved version conflict"
	MsgResolveShort    = "Show the resolved dependencies of each module"
	MsgCatalogShort    = "List the aliases of the central version catalogs"
	MsgShowShort       = "Render a module's description and release history"
	MsgPomShort        = "Write Maven publication descriptors"
	MsgCleanShort      = "Delete the root build directory"
	MsgEnvShort        = "Print the configured build environment"
	MsgVersionShort    = "Print version information"
	MsgGenConfigShort  = "Generate a settle.toml with every default commented out"
	MsgGenConfigLong   = "Output the default settings to stdout, or write them to settle.toml at the tree root with -w.\n\nAn existing settle.toml is never overwritten."
	MsgCompletionShort = "Generate shell completion script"

	// Status messages
	MsgSyncChanged     = "\nChanged: %s\n"
	MsgCheckPassed     = "No version conflicts in %d resolution contexts.\n"
	MsgCheckFailed     = "%d version conflict(s) found"
	MsgNoModules       = "No modules with a build file."
	MsgNoCatalogs      = "No catalogs declared."
	MsgNoDependencies  = "no dependencies"
	MsgNoReleases      = "No releases recorded."
	MsgPomWritten      = "Wrote %s\n"
	MsgSettingsWritten = "Wrote %s\n"
	MsgCleaned         = "Removed %s\n"
	MsgScanWritten     = "Build scan: %s\n"
	MsgVersionFormat   = "settle %s (commit %s, built %s)\n"
	MsgForcedMarker    = " (forced)"
	MsgEmptyValue      = "-"
	MsgReleaseFormat   = "%s  %s"
	MsgModuleNotBuilt  = "module %s has no build file"
	MsgConflictFormat  = "%s %s %s: %s"
	MsgRepositoryEntry = "%s  %s"

	// Flag descriptions
	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagRoot    = "Project tree root (defaults to the current directory)"
	MsgFlagWatch   = "Keep running and synchronize again when project files change"
	MsgFlagWrite   = "Write settle.toml instead of printing to stdout"

	MsgGenConfigExample = `  settle gen-config                # Output to stdout
  settle gen-config -w             # Write ./settle.toml`

	// Error messages
	MsgErrWorkingDir = "failed to determine working directory: %w"
	MsgErrNoCommand  = "no command specified"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/sync-long.txt
	msgSyncLongRaw string
	MsgSyncLong    = strings.TrimSpace(msgSyncLongRaw)

	//go:embed msgs/sync-example.txt
	msgSyncExampleRaw string
	MsgSyncExample    = strings.TrimRight(msgSyncExampleRaw, "\n")

	//go:embed msgs/check-long.txt
	msgCheckLongRaw string
	MsgCheckLong    = strings.TrimSpace(msgCheckLongRaw)

	//go:embed msgs/resolve-example.txt
	msgResolveExampleRaw string
	MsgResolveExample    = strings.TrimRight(msgResolveExampleRaw, "\n")

	//go:embed msgs/show-long.txt
	msgShowLongRaw string
	MsgShowLong    = strings.TrimSpace(msgShowLongRaw)

	//go:embed msgs/pom-long.txt
	msgPomLongRaw string
	MsgPomLong    = strings.TrimSpace(msgPomLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
