// Package config resolves the application configuration.
//
// Values come from four layers, highest priority first: command-line flags,
// FUNNELCALC_* environment variables (optionally seeded from a .env file), a
// YAML plan file given with -config, and built-in defaults. The package also
// loads batches of named plans from YAML or CSV and watches a plan file for
// changes.
package config
