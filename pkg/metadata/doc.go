// Package metadata keeps each module's README.md and CHANGELOG.md
// authoritative for its description and version.
//
// The description is line index 2 of the README after the
// "# <Capitalized name>" title has been ensured. The version is the token
// between the first '[' and the first ']' of the change log, which is the
// most recent "## [version] - date" entry.
//
// Every document follows a read-check-write sequence with at most one
// whole-file write, so running a sync twice leaves the files unchanged.
package metadata
