package config

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variable names for signing configuration.
const (
	EnvSigningFontPath     = "SIGNING_FONT_PATH"
	EnvSigningCanvasWidth  = "SIGNING_CANVAS_WIDTH"
	EnvSigningCanvasHeight = "SIGNING_CANVAS_HEIGHT"
)

// SigningConfig holds signature capture and compositing settings.
type SigningConfig struct {
	// FontPath locates the TTF font used to render typed signatures.
	FontPath string `toml:"font_path"`

	// CanvasWidth and CanvasHeight define the typed-signature raster size
	// before transparent-margin trimming.
	CanvasWidth  int `toml:"canvas_width"`
	CanvasHeight int `toml:"canvas_height"`

	// FontSize is the point size for typed signature rendering.
	FontSize float64 `toml:"font_size"`
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
func (c *SigningConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies non-zero values from overlay onto the receiver.
func (c *SigningConfig) Merge(overlay *SigningConfig) {
	if overlay.FontPath != "" {
		c.FontPath = overlay.FontPath
	}
	if overlay.CanvasWidth != 0 {
		c.CanvasWidth = overlay.CanvasWidth
	}
	if overlay.CanvasHeight != 0 {
		c.CanvasHeight = overlay.CanvasHeight
	}
	if overlay.FontSize != 0 {
		c.FontSize = overlay.FontSize
	}
}

func (c *SigningConfig) loadDefaults() {
	if c.FontPath == "" {
		c.FontPath = "assets/fonts/signature.ttf"
	}
	if c.CanvasWidth == 0 {
		c.CanvasWidth = 400
	}
	if c.CanvasHeight == 0 {
		c.CanvasHeight = 120
	}
	if c.FontSize == 0 {
		c.FontSize = 64
	}
}

func (c *SigningConfig) loadEnv() {
	if v := os.Getenv(EnvSigningFontPath); v != "" {
		c.FontPath = v
	}
	if v := os.Getenv(EnvSigningCanvasWidth); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.CanvasWidth = n
		}
	}
	if v := os.Getenv(EnvSigningCanvasHeight); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.CanvasHeight = n
		}
	}
}

func (c *SigningConfig) validate() error {
	if c.CanvasWidth < 1 || c.CanvasHeight < 1 {
		return fmt.Errorf("canvas dimensions must be positive")
	}
	if c.FontSize <= 0 {
		return fmt.Errorf("font_size must be positive")
	}
	return nil
}
