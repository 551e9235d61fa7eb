// Package catalog reads version catalogs: named tables of library aliases
// mapped to fixed (group, artifact, version) coordinates.
//
// Catalogs use the Gradle version catalog layout, either as TOML
// (libs.versions.toml) or as YAML with the same structure:
//
//	[versions]
//	kotlin = "1.9.0"
//
//	[libraries]
//	kotlin-stdlib = { module = "org.jetbrains.kotlin:kotlin-stdlib", version.ref = "kotlin" }
//	okio = "com.squareup.okio:okio:3.4.0"
//	junit = { group = "junit", name = "junit", version = "4.13.2" }
//
// Aliases are normalized the way Gradle does it: '-' and '_' become '.'.
// Two declared aliases that normalize to the same key are rejected.
// A built Catalog is immutable and safe to share.
package catalog
