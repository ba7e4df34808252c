package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

const (
	EnvAPIURL    = "PAYCHAIN_API_URL"
	EnvStorage   = "PAYCHAIN_STORAGE"
	EnvLogLevel  = "PAYCHAIN_LOG_LEVEL"
	EnvLogFormat = "PAYCHAIN_LOG_FORMAT"
)

// envFile is loaded into the process environment when it exists. Variables
// already set are not overridden.
var envFile = ".env"

// parseEnv overlays cfg with PAYCHAIN_* variables. It panics when the env
// file exists but cannot be parsed.
func parseEnv(cfg *Config) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	setString(&cfg.APIBaseURL, os.Getenv(EnvAPIURL))
	setString(&cfg.StoragePath, os.Getenv(EnvStorage))
	setString(&cfg.LogLevel, os.Getenv(EnvLogLevel))
	setString(&cfg.LogFormat, os.Getenv(EnvLogFormat))
}
