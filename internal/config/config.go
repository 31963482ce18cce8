package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
)

// ErrInvalid is returned by Validate for values that cannot be normalized.
var ErrInvalid = errors.New("invalid config")

// Config holds runtime configuration for the badge compositor.
// Fields may be loaded from a JSON file; PORT in the environment overrides Addr.
type Config struct {
	Addr  string `json:"addr"`
	Debug bool   `json:"debug"`

	// Placement and clamping
	OverlayWidthRatio float64 `json:"overlay_width_ratio"`
	BasePaddingPx     float64 `json:"base_padding_px"`
	PaddingRatio      float64 `json:"padding_ratio"`
	ClampWithinBounds bool    `json:"clamp_within_bounds"`

	// Keyboard nudging
	NudgeStep     float64 `json:"nudge_step"`
	NudgeStepFast float64 `json:"nudge_step_fast"`

	// Overlay graphic; empty path selects the embedded badge.
	OverlayPath  string `json:"overlay_path"`
	OverlayWidth int    `json:"overlay_width"`

	ExportFilename string  `json:"export_filename"`
	MaxUpload      string  `json:"max_upload"`
	MaxSessions    int     `json:"max_sessions"`
	MaxPixelRatio  float64 `json:"max_pixel_ratio"`
	// MaxPixels bounds both the decoded photo and each session's backing
	// store.
	MaxPixels int64 `json:"max_pixels"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Addr:              ":8080",
		Debug:             false,
		OverlayWidthRatio: 0.28,
		BasePaddingPx:     12,
		PaddingRatio:      0.015,
		ClampWithinBounds: true,
		NudgeStep:         1,
		NudgeStepFast:     8,
		OverlayPath:       "",
		OverlayWidth:      560,
		ExportFilename:    "CopilotChampion-TeamsImage.png",
		MaxUpload:         "10MB",
		MaxSessions:       64,
		MaxPixelRatio:     4,
		MaxPixels:         50_000_000,
	}
}

// Validate clamps/normalizes values to safe ranges. Only an unparseable
// upload limit is reported as an error.
func (c *Config) Validate() error {
	d := DefaultConfig()
	if c.Addr == "" {
		c.Addr = d.Addr
	}
	if c.OverlayWidthRatio <= 0 || c.OverlayWidthRatio > 1 {
		c.OverlayWidthRatio = d.OverlayWidthRatio
	}
	if c.BasePaddingPx < 0 {
		c.BasePaddingPx = d.BasePaddingPx
	}
	if c.PaddingRatio < 0 || c.PaddingRatio >= 0.5 {
		c.PaddingRatio = d.PaddingRatio
	}
	if c.NudgeStep <= 0 {
		c.NudgeStep = d.NudgeStep
	}
	if c.NudgeStepFast <= 0 {
		c.NudgeStepFast = d.NudgeStepFast
	}
	if c.OverlayWidth <= 0 {
		c.OverlayWidth = d.OverlayWidth
	}
	if c.ExportFilename == "" {
		c.ExportFilename = d.ExportFilename
	}
	if c.MaxUpload == "" {
		c.MaxUpload = d.MaxUpload
	}
	if c.MaxSessions <= 0 {
		c.MaxSessions = d.MaxSessions
	}
	if c.MaxPixelRatio < 1 {
		c.MaxPixelRatio = d.MaxPixelRatio
	}
	if c.MaxPixels <= 0 {
		c.MaxPixels = d.MaxPixels
	}
	if _, err := humanize.ParseBytes(c.MaxUpload); err != nil {
		return fmt.Errorf("%w: max_upload %q: %v", ErrInvalid, c.MaxUpload, err)
	}
	return nil
}

// MaxUploadBytes returns the parsed upload limit.
func (c *Config) MaxUploadBytes() int64 {
	n, err := humanize.ParseBytes(c.MaxUpload)
	if err != nil {
		n, _ = humanize.ParseBytes(DefaultConfig().MaxUpload)
	}
	return int64(n)
}

// Load attempts to read configuration from the given JSON file path. If path is
// empty or the file does not exist it returns DefaultConfig(). PORT from the
// environment is applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		f, err := os.Open(path)
		switch {
		case err == nil:
			defer f.Close()
			if err := json.NewDecoder(f).Decode(cfg); err != nil {
				return DefaultConfig(), fmt.Errorf("decode %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return cfg, err
		}
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Addr = ":" + port
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
