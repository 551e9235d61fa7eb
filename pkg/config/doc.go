// Package config handles configuration management for settle.
// It layers the embedded defaults, the user config under the XDG config
// home, the root settle.toml and SETTLE_* environment variables, then
// decodes the result into a Config value. No package-level state is kept:
// callers pass the loaded Config explicitly.
package config
