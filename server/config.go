package server

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultAddr is the listen address when neither the config file nor the
// environment names one.
const DefaultAddr = ":8080"

// Config is the server configuration, loaded from an optional YAML file with
// environment overrides on top.
type Config struct {
	Addr     string `yaml:"addr"`
	AgentURL string `yaml:"agentUrl"`
}

// LoadConfig reads the YAML file at path when path is non-empty, then applies
// STEWARD_ADDR and STEWARD_AGENT_URL overrides and defaults.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if v := os.Getenv("STEWARD_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("STEWARD_AGENT_URL"); v != "" {
		cfg.AgentURL = v
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	return cfg, nil
}
