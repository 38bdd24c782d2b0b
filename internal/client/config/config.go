package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the securechat CLI.
//
// ServerURL is the base URL of the relay HTTP API. StateDir holds the local
// SQLite state (session token and key pair). RequestTimeout bounds every
// call made to the relay.
type Config struct {
	ServerURL      string
	StateDir       string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8000"
	c.StateDir = defaultStateDir()
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig applies defaults, then JSON (if -c/-config is given), then flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".securechat"
	}
	return filepath.Join(home, ".securechat")
}
