// Package testutil provides utilities for testing settle components.
//
// Key components:
//   - NewTestFS: in-memory filesystem for fast, isolated tests
//   - TestTree: declarative project tree setup (modules, catalogs, documents)
//
// Tests should define their data inline and stay isolated from each other.
package testutil
