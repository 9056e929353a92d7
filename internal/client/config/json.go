package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/userbase/internal/flagx"
	"github.com/dmitrijs2005/userbase/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	SessionDBPath      string         `json:"session_db_path"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
}

// parseJSON overlays cfg with the non-empty values of the file named by
// -c/-config. Without the flag it does nothing.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return err
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.SessionDBPath != "" {
		cfg.SessionDBPath = jc.SessionDBPath
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	return nil
}
