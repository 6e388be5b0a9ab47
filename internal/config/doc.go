// Package config loads, normalizes, and validates coderbridge configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the CODERBRIDGE_WORKSPACE
// environment fallback. The Config type gathers the settings the bridge
// server, the bridge client, and the CLI need in one pass.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical log formats, and clear validation errors.
package config
