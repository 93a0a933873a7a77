// Package config loads service configuration from TOML files with
// environment-specific overlays and environment variable overrides.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/KartikLabhshetwar/FolioSign/pkg/logging"
	"github.com/KartikLabhshetwar/FolioSign/pkg/pagination"
)

const (
	// BaseConfigFile is the base configuration file name.
	BaseConfigFile = "config.toml"

	// OverlayConfigPattern names environment overlay files, e.g. config.production.toml.
	OverlayConfigPattern = "config.%s.toml"

	// EnvServiceEnv selects which overlay file to apply.
	EnvServiceEnv = "SERVICE_ENV"
)

// Config is the root service configuration.
type Config struct {
	Server     ServerConfig      `toml:"server"`
	Database   DatabaseConfig    `toml:"database"`
	Storage    StorageConfig     `toml:"storage"`
	Signing    SigningConfig     `toml:"signing"`
	Cleanup    CleanupConfig     `toml:"cleanup"`
	Logging    logging.Config    `toml:"logging"`
	Pagination pagination.Config `toml:"pagination"`
}

// Load reads the base config file from dir, applies the SERVICE_ENV overlay
// if one exists, then finalizes every section. A missing base file is not an
// error; defaults and environment variables still apply.
func Load(dir string) (*Config, error) {
	cfg := &Config{}

	if err := readInto(cfg, fmt.Sprintf("%s/%s", dir, BaseConfigFile)); err != nil {
		return nil, err
	}

	if env := os.Getenv(EnvServiceEnv); env != "" {
		overlay := &Config{}
		path := fmt.Sprintf("%s/"+OverlayConfigPattern, dir, env)
		if err := readInto(overlay, path); err != nil {
			return nil, err
		}
		cfg.merge(overlay)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Finalize applies defaults, environment overrides, and validation to every section.
func (c *Config) Finalize() error {
	sections := []struct {
		name     string
		finalize func() error
	}{
		{"server", c.Server.Finalize},
		{"database", c.Database.Finalize},
		{"storage", c.Storage.Finalize},
		{"signing", c.Signing.Finalize},
		{"cleanup", c.Cleanup.Finalize},
		{"logging", c.Logging.Finalize},
		{"pagination", c.Pagination.Finalize},
	}

	for _, s := range sections {
		if err := s.finalize(); err != nil {
			return fmt.Errorf("config section %s: %w", s.name, err)
		}
	}

	return nil
}

func (c *Config) merge(overlay *Config) {
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Signing.Merge(&overlay.Signing)
	c.Cleanup.Merge(&overlay.Cleanup)
	c.Logging.Merge(&overlay.Logging)
	c.Pagination.Merge(&overlay.Pagination)
}

func readInto(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	return nil
}
