// Package config loads, normalizes, and validates tastats configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TRUEACHIEVEMENTS_TOKEN. The Config type centralizes every knob the daemon
// and CLI need, so the data directory, cached export path, and external
// service credentials are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
