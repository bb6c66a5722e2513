// Package config loads glasschaind's on-disk configuration, split into a
// ProtocolConfiguration (wire-level bounds every peer is held to) and an
// ApplicationConfiguration (local storage, logging, peer-manager policy),
// the same split the node's configuration file has historically used.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full on-disk configuration file for one network.
type Config struct {
	ProtocolConfiguration    ProtocolConfiguration    `yaml:"ProtocolConfiguration"`
	ApplicationConfiguration ApplicationConfiguration `yaml:"ApplicationConfiguration"`
}

// Default returns a standalone-privnet configuration, used when no file is
// supplied.
func Default() Config {
	return Config{
		ProtocolConfiguration:    DefaultProtocolConfiguration(),
		ApplicationConfiguration: DefaultApplicationConfiguration(),
	}
}

// LoadFile reads and parses a YAML configuration file at configPath,
// validating both sections before returning.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config: %w", err)
	}

	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	if err := cfg.ProtocolConfiguration.Validate(); err != nil {
		return Config{}, err
	}
	if err := cfg.ApplicationConfiguration.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
