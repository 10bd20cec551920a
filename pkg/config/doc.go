// Package config loads the service configuration of a Lookout instance from a
// YAML file: listen address, data directory, logging and monitor tuning.
// Command-line flags override file values.
package config
