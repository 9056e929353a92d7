package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds runtime settings for the userbase CLI.
//
// Fields:
//   - ServerEndpointAddr: address of the HTTP API.
//   - SessionDBPath: SQLite file that keeps the login between runs.
//   - RequestTimeout: upper bound for a single API call.
type Config struct {
	ServerEndpointAddr string
	SessionDBPath      string
	RequestTimeout     time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:3000"
	c.SessionDBPath = "userbase.db"
	c.RequestTimeout = 5 * time.Second
}

// Load constructs a Config from args (without the program name): defaults,
// then JSON (if -c is given), then flags.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, args); err != nil {
		return nil, fmt.Errorf("json config: %w", err)
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	return cfg, nil
}

// LoadConfig is Load over the process command line.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}
