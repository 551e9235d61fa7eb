// Package tree discovers the modules of a project tree.
//
// Modules come from the root itself, from explicit include paths such as
// ":core:api" (whose parents ":core" are added implicitly) and from
// directory globs relative to the root. A module is buildable when its
// directory holds one of the configured build files. build.toml files are
// read for dependency scopes and repositories.
//
// A build.toml looks like:
//
//	repositories = ["https://jitpack.io"]
//
//	[dependencies]
//	implementation = ["com.google.guava:guava:33.0.0-jre"]
//	testImplementation = ["org.junit.jupiter:junit-jupiter-api"]
package tree
