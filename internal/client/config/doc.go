// Package config loads runtime configuration for the userbase CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJSON) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   address of the server ("host:port" or a URL)
//	-f string   path of the local session database
//	-i int      request timeout (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration, so the timeout can be either a string
// like "5s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:3000",
//	  "session_db_path": "userbase.db",
//	  "request_timeout": "5s"
//	}
package config
