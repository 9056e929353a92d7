package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/userbase/internal/flagx"
	"github.com/dmitrijs2005/userbase/internal/timex"
)

// JsonConfig is the on-disk shape of the JSON config file. Durations are
// timex.Duration so both "24h" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrHTTP      string         `json:"endpoint_addr_http"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	LogLevel              string         `json:"log_level"`
	GinMode               string         `json:"gin_mode"`
}

// parseJSON overlays the file named by -c/-config onto config. Fields absent
// from the file keep their current values. Without the flag nothing happens.
func parseJSON(config *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	overlay(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	overlay(&config.DatabaseDSN, c.DatabaseDSN)
	overlay(&config.SecretKey, c.SecretKey)
	overlay(&config.LogLevel, c.LogLevel)
	overlay(&config.GinMode, c.GinMode)
	if c.TokenValidityDuration.Duration != 0 {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}

	return nil
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
