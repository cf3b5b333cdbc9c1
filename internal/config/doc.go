// Package config loads the jarvis configuration. Values are layered: built-in
// defaults, then an optional YAML file, then JARVIS_* environment variables
// (a .env file may provide them), then command line overrides.
package config
