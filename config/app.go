package config

import (
	"fmt"
	"path/filepath"
	"time"

	"ezswitch/config/storage"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// OverridesFileName is an optional dotenv file in the config directory whose
// values act as defaults for the EZSWITCH_* variables.
const OverridesFileName = "ezswitch.env"

// AppConfig holds process-level settings for ezswitch itself
type AppConfig struct {
	ConfigDir          string        `env:"EZSWITCH_CONFIG_DIR"`
	Backend            string        `env:"EZSWITCH_BACKEND"`
	LogLevel           string        `env:"EZSWITCH_LOG_LEVEL" envDefault:"info"`
	MutationTimeout    time.Duration `env:"EZSWITCH_MUTATION_TIMEOUT" envDefault:"30s"`
	QueryTimeout       time.Duration `env:"EZSWITCH_QUERY_TIMEOUT" envDefault:"5s"`
	ClaudeSettingsPath string        `env:"EZSWITCH_CLAUDE_SETTINGS"`
}

// LoadAppConfig reads EZSWITCH_* variables. When the resolved config
// directory holds an ezswitch.env file, it is loaded first; variables that
// are already set in the environment win.
func LoadAppConfig() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	paths, err := DefaultPaths(cfg.ConfigDir)
	if err != nil {
		return nil, err
	}

	overrides := filepath.Join(paths.Dir, OverridesFileName)
	if storage.FileExists(overrides) {
		if err := godotenv.Load(overrides); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", overrides, err)
		}
		cfg = &AppConfig{}
		if err := env.Parse(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse environment: %w", err)
		}
	}

	if cfg.ConfigDir == "" {
		cfg.ConfigDir = paths.Dir
	}
	if cfg.MutationTimeout <= 0 {
		cfg.MutationTimeout = 30 * time.Second
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 5 * time.Second
	}

	return cfg, nil
}

// Paths resolves settings file locations for this configuration
func (c *AppConfig) Paths() (Paths, error) {
	return DefaultPaths(c.ConfigDir)
}
