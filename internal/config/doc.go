// Package config loads, normalizes, and validates connect2vid configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// CONNECT2VID_LOG_LEVEL. The Config type centralizes the external tool names,
// the Connect URL template, the track naming patterns and the failure policy so
// the pipeline stages never hard-code them.
//
// Always obtain settings through this package so downstream code receives
// absolute paths and clear validation errors.
package config
