package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Environment overrides.
const (
	EnvAddr      = "PRICECAST_ADDR"
	EnvLogLevel  = "PRICECAST_LOG_LEVEL"
	EnvLogFormat = "PRICECAST_LOG_FORMAT"
	EnvInput     = "PRICECAST_INPUT"
)

// ApplyEnv overrides config values from the process environment and from
// an optional <projectRoot>/.env file. Process variables win over the file.
func ApplyEnv(cfg *Config, projectRoot string) error {
	file, err := godotenv.Read(filepath.Join(projectRoot, ".env"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("reading .env: %w", err)
	}
	env := envSource{file: file}

	cfg.Server.Addr = env.getString(EnvAddr, cfg.Server.Addr)
	cfg.Log.Level = env.getString(EnvLogLevel, cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(env.getString(EnvLogFormat, cfg.Log.Format))
	cfg.Data.Input = env.getString(EnvInput, cfg.Data.Input)
	return nil
}

type envSource struct {
	file map[string]string
}

func (e envSource) getString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	if v, ok := e.file[key]; ok && v != "" {
		return v
	}
	return fallback
}
