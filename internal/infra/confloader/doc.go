// Package confloader provides configuration loading for jobctl.
//
// It uses koanf to merge configuration from multiple sources with
// priority: Flag > Env > File > Default. Command-line flags are
// handled by the CLI layer; this package merges the file and
// environment layers beneath them.
//
// Environment variables use the JOBCTL_ prefix with underscores as
// section separators: JOBCTL_NODE_URL maps to node.url.
package confloader
