package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the full jobctl configuration.
type Config struct {
	Node   NodeConfig   `koanf:"node"`
	Poll   PollConfig   `koanf:"poll"`
	Output OutputConfig `koanf:"output"`
	Log    LogConfig    `koanf:"log"`

	// TokenFile is the credential artifact location.
	TokenFile string `koanf:"token_file"`
}

// NodeConfig holds the node endpoint and credentials.
type NodeConfig struct {
	// URL is the node's management API base URL.
	URL string `koanf:"url"`

	// Email and Password are the operator credentials for the node's
	// login endpoint.
	Email    string `koanf:"email"`
	Password string `koanf:"password"`

	// CACert is an optional PEM file with extra trusted roots for
	// https node URLs.
	CACert string `koanf:"ca_cert"`

	// Timeout bounds each HTTP request.
	Timeout time.Duration `koanf:"timeout"`
}

// PollConfig controls the run poller.
type PollConfig struct {
	// Interval between status polls.
	Interval time.Duration `koanf:"interval"`

	// Attempts is the maximum number of status polls per run.
	Attempts int `koanf:"attempts"`
}

// OutputConfig holds output preferences.
type OutputConfig struct {
	// Format is the default output format: table, json, yaml.
	Format string `koanf:"format"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `koanf:"level"`

	// Format is json or text.
	Format string `koanf:"format"`
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".jobctl", "config.yaml")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Node: NodeConfig{
			URL:     "http://localhost:6688",
			Timeout: 10 * time.Second,
		},
		Poll: PollConfig{
			Interval: 2 * time.Second,
			Attempts: 30,
		},
		Output: OutputConfig{
			Format: "table",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "json",
		},
	}
}

// Validate checks that the configuration can support an authenticated
// operation.
func (c *Config) Validate() error {
	if c.Node.URL == "" {
		return fmt.Errorf("node url is required (flag --node-url, env JOBCTL_NODE_URL, or config file)")
	}
	if c.Node.Email == "" {
		return fmt.Errorf("node email is required (flag --email or env JOBCTL_NODE_EMAIL)")
	}
	if c.Node.Password == "" {
		return fmt.Errorf("node password is required (env JOBCTL_NODE_PASSWORD)")
	}
	if c.Poll.Attempts < 1 {
		return fmt.Errorf("poll attempts must be positive, got %d", c.Poll.Attempts)
	}
	if c.Poll.Interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.Poll.Interval)
	}
	return nil
}
