// Package config loads, normalizes, and validates lingq_upload configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// LINGQ_API_KEY and the legacy APIKey variable used by the original upload
// scripts. The Config type centralizes every knob the CLI needs so that the
// LingQ token, discovery thresholds and downloader settings are resolved in one
// pass and handed to downstream packages explicitly.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
