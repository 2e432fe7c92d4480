package legacygfx

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Config holds renderer settings. Zero values are not meaningful; start from
// DefaultConfig.
type Config struct {
	// Width and Height are the back buffer size in pixels.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	// Title is the window title used by EbitenPlatform.
	Title string `yaml:"title"`
	// VSync enables the platform swap interval at startup.
	VSync bool `yaml:"vsync"`
	// Interpolate selects linear texture filtering at startup.
	Interpolate bool `yaml:"interpolate"`
	// ClearColour is the colour Finish clears the back buffer to.
	ClearColour Colour `yaml:"clear_colour"`
	// MaxBatchQuads caps the quads in one device draw; reaching it flushes.
	MaxBatchQuads int `yaml:"max_batch_quads"`
	// CirclePrecision is the number of segments used by DrawEllipse.
	CirclePrecision int `yaml:"circle_precision"`
	// Debug logs per-frame statistics through the package logger.
	Debug bool `yaml:"debug"`
}

const (
	defaultMaxBatchQuads   = 4096
	defaultCirclePrecision = 24
	maxCirclePrecision     = 64
)

// DefaultConfig returns an 800×600 configuration with vsync on.
func DefaultConfig() Config {
	return Config{
		Width:           800,
		Height:          600,
		Title:           "legacygfx",
		VSync:           true,
		ClearColour:     ColourBlack,
		MaxBatchQuads:   defaultMaxBatchQuads,
		CirclePrecision: defaultCirclePrecision,
	}
}

// LoadConfig parses YAML over DefaultConfig and validates the result.
func LoadConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("legacygfx: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("legacygfx: invalid back buffer size %dx%d", c.Width, c.Height)
	}
	if c.MaxBatchQuads <= 0 {
		return fmt.Errorf("legacygfx: max_batch_quads must be positive, got %d", c.MaxBatchQuads)
	}
	if c.CirclePrecision < 4 || c.CirclePrecision > maxCirclePrecision {
		return fmt.Errorf("legacygfx: circle_precision must be in [4, %d], got %d", maxCirclePrecision, c.CirclePrecision)
	}
	if c.ClearColour > 0xFFFFFF {
		return fmt.Errorf("legacygfx: clear_colour 0x%X is not a 24-bit colour", uint32(c.ClearColour))
	}
	return nil
}
