package config

import (
	"fmt"
	"os"

	"github.com/nodeops/jobctl/internal/infra/confloader"
	"github.com/nodeops/jobctl/internal/storage/credfile"
)

// Load builds the configuration by merging defaults, the YAML config
// file and JOBCTL_* environment variables. filePath may be empty, in
// which case the default path is tried and silently skipped when the
// file does not exist. Flags are applied on top by the command layer.
func Load(filePath string) (*Config, error) {
	cfg := Default()

	if filePath == "" {
		// The default file is optional.
		filePath = DefaultConfigPath()
		if _, err := os.Stat(filePath); err != nil {
			filePath = ""
		}
	}

	// Keys with underscores in their own name need explicit env
	// mappings; the blanket separator replacement would split them.
	opts := []confloader.Option{
		confloader.WithEnvOverrides(map[string]string{
			"NODE_CA_CERT": "node.ca_cert",
			"TOKEN_FILE":   "token_file",
		}),
	}
	if filePath != "" {
		opts = append(opts, confloader.WithConfigFile(filePath))
	}

	loader := confloader.NewLoader(opts...)
	if err := loader.Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if cfg.TokenFile == "" {
		cfg.TokenFile = credfile.DefaultPath()
	}

	return cfg, nil
}
