// Package types defines the core data model shared across settle:
// dependency coordinates, modules of the project tree, their externally
// owned configuration and the per-scope resolution contexts that the
// version enforcer populates.
package types
