// Package buildcache manages the local build cache directory at
// <root>/<build-dir>. Entries are plain files keyed by content hash and
// sharded by the first two hex characters of the key. Entries that were
// not used for the configured number of days are evicted when the cache
// is opened.
package buildcache
