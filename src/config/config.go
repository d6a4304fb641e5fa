// Package config loads the YAML configuration file that wires an MPD
// server, the history database, and logging together.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration document.
type Config struct {
	Mpd         Mpd         `yaml:"mpd"`
	Persistence Persistence `yaml:"persistence"`
	Logging     Logging     `yaml:"logging"`
}

// Mpd configures the connection to the MPD server this instance tracks.
type Mpd struct {
	Network  string  `yaml:"network"`
	Address  string  `yaml:"address"`
	Password *string `yaml:"password,omitempty"`
}

// Persistence configures where playback history is kept.
type Persistence struct {
	Path string `yaml:"path"`
}

// Logging configures the structured logger.
type Logging struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is present: a local
// MPD on its standard port, no password, a database file in the working
// directory, and info-level logging.
func Default() *Config {
	return &Config{
		Mpd: Mpd{
			Network: "tcp",
			Address: "localhost:6600",
		},
		Persistence: Persistence{
			Path: "./trollibox.db",
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// Load reads and parses the YAML config file at path. A missing file is
// not an error; it yields Default().
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	return cfg, nil
}
