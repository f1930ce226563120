package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Fetch   Fetch   `yaml:"fetch"`
	History History `yaml:"history"`
	Server  Server  `yaml:"server"`
	Storage Storage `yaml:"storage"`
}

type Fetch struct {
	MaxPerFeed     int    `yaml:"max_per_feed"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Concurrency    int    `yaml:"concurrency"`
	UserAgent      string `yaml:"user_agent"`
	FullText       bool   `yaml:"full_text"`
}

type History struct {
	Days int `yaml:"days"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Storage struct {
	DataDir string `yaml:"data_dir"`
}

// ConfigDir returns the XDG config directory for stockfeed.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "stockfeed")
}

// DataDir returns the XDG data directory for stockfeed.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "stockfeed")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/stockfeed/config.yaml > ./config.yaml.
// An empty path with a nil error means no config file exists; Load("")
// then yields the built-in defaults, so the tool works without setup.
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", nil
}

// Load reads and parses a config YAML file. An empty path returns the
// built-in defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return parse(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Fetch: Fetch{
			MaxPerFeed:     10,
			TimeoutSeconds: 20,
			Concurrency:    4,
			UserAgent:      "stockfeed/1.0 (+https://github.com/aazamm/stockfeed)",
		},
		History: History{Days: 30},
		Server:  Server{Port: 8000},
	}

	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.normalize()
	return cfg, nil
}

// normalize replaces non-positive numeric settings with their defaults so
// a partially filled config file never disables fetching outright.
func (c *Config) normalize() {
	if c.Fetch.MaxPerFeed <= 0 {
		c.Fetch.MaxPerFeed = 10
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		c.Fetch.TimeoutSeconds = 20
	}
	if c.Fetch.Concurrency <= 0 {
		c.Fetch.Concurrency = 4
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = "stockfeed/1.0 (+https://github.com/aazamm/stockfeed)"
	}
	if c.History.Days <= 0 {
		c.History.Days = 30
	}
	if c.Server.Port <= 0 {
		c.Server.Port = 8000
	}
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Storage.DataDir != "" {
		return c.Storage.DataDir
	}
	return DataDir()
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
