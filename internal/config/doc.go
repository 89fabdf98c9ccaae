// Package config loads and validates simdb configuration from a TOML file,
// providing defaults suitable for running against the public catalog and
// search endpoints without any file present.
package config
