// Package config loads, normalizes, and validates shotscout configuration
// from TOML files, with env-var overrides for provider credentials.
package config
