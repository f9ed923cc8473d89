// Package env resolves configuration values from the process environment.
// Required lookups fail with a ConfigurationError naming the variable,
// optional lookups fall back to a default, and every resolved value is kept
// in an ordered trace so callers can report where each setting came from.
package env
