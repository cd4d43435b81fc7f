// Package config loads, normalizes, and validates mashup configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// PORT. The Config type centralizes every knob the CLI and web server need:
// scratch directories, input bounds, external tool binaries, and delivery
// settings are all discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
