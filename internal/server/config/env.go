package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/dmitrijs2005/userbase/internal/flagx"
	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// Environment variables read by parseEnv.
const (
	EnvServerAddress = "SERVER_ADDRESS"
	EnvDatabaseURL   = "DATABASE_URL"
	EnvJWTSecret     = "JWT_SECRET"
	EnvTokenValidity = "TOKEN_VALIDITY"
	EnvLogLevel      = "LOG_LEVEL"
	EnvGinMode       = "GIN_MODE"
)

// parseEnv loads the dotenv file (-env, default ".env") into the process
// environment without overriding variables already set, then copies the
// known variables into config. A missing default file is not an error; a
// missing file named by -env is.
func parseEnv(config *Config, args []string) error {
	file := flagx.EnvFile(args, defaultEnvFile)

	if err := godotenv.Load(file); err != nil {
		if !(file == defaultEnvFile && errors.Is(err, fs.ErrNotExist)) {
			return fmt.Errorf("load %s: %w", file, err)
		}
	}

	setString(&config.EndpointAddrHTTP, EnvServerAddress)
	setString(&config.DatabaseDSN, EnvDatabaseURL)
	setString(&config.SecretKey, EnvJWTSecret)
	setString(&config.LogLevel, EnvLogLevel)
	setString(&config.GinMode, EnvGinMode)

	if v, ok := os.LookupEnv(EnvTokenValidity); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTokenValidity, err)
		}
		config.TokenValidityDuration = d
	}

	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
