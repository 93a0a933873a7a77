package config

import (
	"fmt"
	"os"

	"github.com/robfig/cron/v3"
)

// Environment variable names for cleanup configuration.
const (
	EnvCleanupSchedule = "CLEANUP_SCHEDULE"
	EnvCleanupEnabled  = "CLEANUP_ENABLED"
)

// CleanupConfig holds guest document cleanup scheduling settings.
type CleanupConfig struct {
	// Enabled turns the scheduled cleanup flush on or off. Manual cleanup
	// through the API works regardless.
	Enabled bool `toml:"enabled"`

	// Schedule is a cron expression controlling how often queued guest
	// documents are flushed.
	Schedule string `toml:"schedule"`
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
func (c *CleanupConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies non-zero values from overlay onto the receiver.
func (c *CleanupConfig) Merge(overlay *CleanupConfig) {
	if overlay.Schedule != "" {
		c.Schedule = overlay.Schedule
	}
	if overlay.Enabled {
		c.Enabled = true
	}
}

func (c *CleanupConfig) loadDefaults() {
	if c.Schedule == "" {
		c.Schedule = "@hourly"
	}
}

func (c *CleanupConfig) loadEnv() {
	if v := os.Getenv(EnvCleanupSchedule); v != "" {
		c.Schedule = v
	}
	if v := os.Getenv(EnvCleanupEnabled); v != "" {
		c.Enabled = v == "true" || v == "1"
	}
}

func (c *CleanupConfig) validate() error {
	if _, err := cron.ParseStandard(c.Schedule); err != nil {
		return fmt.Errorf("invalid cleanup schedule %q: %w", c.Schedule, err)
	}
	return nil
}
