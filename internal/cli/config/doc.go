// Package config provides CLI configuration for jobctl.
//
// Configuration merges, lowest priority first: built-in defaults, the
// YAML file (~/.jobctl/config.yaml by default), JOBCTL_* environment
// variables, then command-line flags applied by the command layer.
//
// The node URL and credentials are opaque inputs here; nothing in the
// business logic reads the environment directly.
package config
