package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/userbase/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., "127.0.0.1:3000")
//	-d string   PostgreSQL DSN
//	-s string   token HMAC secret key
//	-t int      token validity, minutes
//	-l string   log level
//
// Args are first filtered to the flags handled here with flagx.FilterArgs,
// so -c/-env and flags of other components do not collide.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-s", "-t", "-l"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	validity := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token validity duration (in minutes)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.TokenValidityDuration = time.Duration(*validity) * time.Minute
		}
	})
	return nil
}
