package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables read at startup. A .env file in the working
// directory is loaded first; variables already set in the process win.
const (
	EnvConfigPath  = "ARENA_CONFIG"
	EnvDatabaseDSN = "ARENA_DATABASE_DSN"
	EnvBindAddress = "ARENA_BIND_ADDRESS"
)

// LoadDotEnv loads path into the process environment. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ConfigPath returns the config file to load, honouring ARENA_CONFIG.
func ConfigPath(fallback string) string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return fallback
}

// ApplyEnv overrides settings that usually differ per deployment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvDatabaseDSN); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(EnvBindAddress); v != "" {
		c.Network.BindAddress = v
	}
}
