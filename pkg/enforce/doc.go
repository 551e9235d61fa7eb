// Package enforce pins every dependency resolution context to the versions
// declared in the central catalogs.
//
// An Enforcer is built once from all catalogs. Building it fails with
// ErrCatalogConflict when two catalog entries name the same group and
// artifact with different versions. Attaching the enforcer to a context
// turns on fail-on-conflict and adds one forced directive per catalog
// identity.
//
// Resolve stands in for the host tool's own resolution pass. It applies
// the forced directives and refuses to pick a winner among disagreeing
// requests for identities outside the catalogs.
package enforce
