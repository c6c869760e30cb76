// Package config loads, normalizes, and validates qween configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and layers AR engine credentials from a .env
// file and the process environment (QWEEN_APP_ID, QWEEN_LICENSE_KEY,
// QWEEN_SECRET_KEY) over whatever the file provides.
//
// Missing credentials are deliberately not a validation error: the mirror
// reports them as a failed session so the daemon and CLI stay usable.
package config
