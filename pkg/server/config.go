package server

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AppConfig is the on-disk server configuration. All fields are optional;
// zero values fall back to the defaults below.
type AppConfig struct {
	// Host and Port form the listen address.
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// DBPath locates the sqlite ledger. ":memory:" keeps it ephemeral.
	DBPath string `yaml:"dbPath"`

	// LogFile receives rotated logs alongside stderr. Empty disables the
	// file sink.
	LogFile     string `yaml:"logFile"`
	DebugLevel  string `yaml:"debugLevel"`
	MaxLogFiles int    `yaml:"maxLogFiles"`

	// Per-game settings.
	MaxPlayers         int `yaml:"maxPlayers"`
	BidWindowSeconds   int `yaml:"bidWindowSeconds"`
	MatchWindowSeconds int `yaml:"matchWindowSeconds"`
}

// DefaultAppConfig returns the built-in defaults.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Host:               "127.0.0.1",
		Port:               8080,
		DBPath:             "kuhhandel.db",
		DebugLevel:         "info",
		MaxLogFiles:        5,
		MaxPlayers:         5,
		BidWindowSeconds:   30,
		MatchWindowSeconds: 15,
	}
}

// LoadAppConfig reads a yaml config file over the defaults. A missing path
// returns the defaults untouched.
func LoadAppConfig(path string) (*AppConfig, error) {
	cfg := DefaultAppConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %v", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %v", path, err)
	}
	return cfg, nil
}

// ListenAddr returns the host:port pair to listen on.
func (c *AppConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
