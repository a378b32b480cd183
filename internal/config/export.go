package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/banshee-data/trackexo/internal/exo"
	"github.com/banshee-data/trackexo/internal/segment"
	"github.com/banshee-data/trackexo/internal/simplify"
	"github.com/banshee-data/trackexo/internal/trace"
)

// DefaultConfigPath is the path to the canonical export defaults file.
const DefaultConfigPath = "config/export.defaults.json"

// Export is the configuration of one trace conversion. Every field is
// optional in JSON; the Get* methods supply defaults for omitted fields, so
// a file, the environment and command-line flags can each set a subset.
type Export struct {
	// Cleaner
	SmoothingWindow *int `json:"smoothing_window,omitempty"`

	// Simplifier
	SimplifyThreshold *float64 `json:"simplify_threshold,omitempty"`

	// Source footage (required for exo output)
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
	FPS    *float64 `json:"fps,omitempty"`

	// Output targets (optional, same as source when omitted)
	TargetWidth  *float64 `json:"target_width,omitempty"`
	TargetHeight *float64 `json:"target_height,omitempty"`
	TargetFPS    *float64 `json:"target_fps,omitempty"`
	ScaleMode    *string  `json:"scale_mode,omitempty"` // "independent" or "uniform"

	// Document
	AudioRate     *int    `json:"audio_rate,omitempty"`
	AudioChannels *int    `json:"audio_channels,omitempty"`
	Language      *string `json:"language,omitempty"` // "jp" or "en"
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyExport returns an Export with all fields set to nil.
func EmptyExport() *Export {
	return &Export{}
}

// LoadExport loads an Export from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file fall back to their defaults, so
// partial configs are safe.
func LoadExport(path string) (*Export, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyExport()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Merge overlays every field set in other onto c. Later sources win.
func (c *Export) Merge(other *Export) {
	if other == nil {
		return
	}
	if other.SmoothingWindow != nil {
		c.SmoothingWindow = other.SmoothingWindow
	}
	if other.SimplifyThreshold != nil {
		c.SimplifyThreshold = other.SimplifyThreshold
	}
	if other.Width != nil {
		c.Width = other.Width
	}
	if other.Height != nil {
		c.Height = other.Height
	}
	if other.FPS != nil {
		c.FPS = other.FPS
	}
	if other.TargetWidth != nil {
		c.TargetWidth = other.TargetWidth
	}
	if other.TargetHeight != nil {
		c.TargetHeight = other.TargetHeight
	}
	if other.TargetFPS != nil {
		c.TargetFPS = other.TargetFPS
	}
	if other.ScaleMode != nil {
		c.ScaleMode = other.ScaleMode
	}
	if other.AudioRate != nil {
		c.AudioRate = other.AudioRate
	}
	if other.AudioChannels != nil {
		c.AudioChannels = other.AudioChannels
	}
	if other.Language != nil {
		c.Language = other.Language
	}
}

// Validate checks the ranges of every field that is set. Source dimensions
// are only rejected when set to a negative or non-finite value: a missing
// dimension is reported by the corrector so runs that stop before exo
// output do not need one.
func (c *Export) Validate() error {
	if err := c.CleanConfig().Validate(); err != nil {
		return err
	}
	if err := c.SimplifyConfig().Validate(); err != nil {
		return err
	}

	dims := [...]struct {
		name string
		v    *float64
	}{
		{"width", c.Width}, {"height", c.Height}, {"fps", c.FPS},
		{"target_width", c.TargetWidth}, {"target_height", c.TargetHeight}, {"target_fps", c.TargetFPS},
	}
	for _, d := range dims {
		if d.v == nil {
			continue
		}
		if math.IsNaN(*d.v) || math.IsInf(*d.v, 0) || *d.v < 0 {
			return trace.NewFieldError(trace.ErrInvalidConfiguration, d.name,
				"must be a finite value >= 0, got %v", *d.v)
		}
	}

	if _, err := segment.ParseScaleMode(c.GetScaleMode()); err != nil {
		return err
	}
	if _, err := exo.ParseLanguage(c.GetLanguage()); err != nil {
		return err
	}

	if c.AudioRate != nil && *c.AudioRate <= 0 {
		return trace.NewFieldError(trace.ErrInvalidConfiguration, "audio_rate", "must be positive, got %d", *c.AudioRate)
	}
	if c.AudioChannels != nil && *c.AudioChannels <= 0 {
		return trace.NewFieldError(trace.ErrInvalidConfiguration, "audio_channels", "must be positive, got %d", *c.AudioChannels)
	}
	return nil
}

// GetSmoothingWindow returns the smoothing_window value. An absent window
// disables smoothing.
func (c *Export) GetSmoothingWindow() int {
	if c.SmoothingWindow == nil {
		return 0
	}
	return *c.SmoothingWindow
}

// GetSimplifyThreshold returns the simplify_threshold value or the default.
func (c *Export) GetSimplifyThreshold() float64 {
	if c.SimplifyThreshold == nil {
		return simplify.DefaultThreshold
	}
	return *c.SimplifyThreshold
}

// GetAudioRate returns the audio_rate value or the default.
func (c *Export) GetAudioRate() int {
	if c.AudioRate == nil {
		return exo.DefaultAudioRate
	}
	return *c.AudioRate
}

// GetAudioChannels returns the audio_channels value or the default.
func (c *Export) GetAudioChannels() int {
	if c.AudioChannels == nil {
		return exo.DefaultAudioChannels
	}
	return *c.AudioChannels
}

// GetLanguage returns the language value or the default ("jp").
func (c *Export) GetLanguage() string {
	if c.Language == nil {
		return string(exo.Japanese)
	}
	return *c.Language
}

// GetScaleMode returns the scale_mode value or the default ("independent").
func (c *Export) GetScaleMode() string {
	if c.ScaleMode == nil {
		return segment.ScaleIndependent.String()
	}
	return *c.ScaleMode
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// CleanConfig returns the cleaner stage configuration.
func (c *Export) CleanConfig() trace.CleanConfig {
	return trace.CleanConfig{SmoothWindow: c.GetSmoothingWindow()}
}

// SimplifyConfig returns the simplifier stage configuration.
func (c *Export) SimplifyConfig() simplify.Config {
	return simplify.Config{Threshold: c.GetSimplifyThreshold()}
}

// CorrectConfig returns the corrector stage configuration. Unset dimensions
// are zero, which the corrector reports as missing.
func (c *Export) CorrectConfig() (segment.CorrectConfig, error) {
	mode, err := segment.ParseScaleMode(c.GetScaleMode())
	if err != nil {
		return segment.CorrectConfig{}, err
	}
	return segment.CorrectConfig{
		Width:        deref(c.Width),
		Height:       deref(c.Height),
		FPS:          deref(c.FPS),
		TargetWidth:  deref(c.TargetWidth),
		TargetHeight: deref(c.TargetHeight),
		TargetFPS:    deref(c.TargetFPS),
		ScaleMode:    mode,
	}, nil
}

// LanguageValue returns the parsed document language.
func (c *Export) LanguageValue() (exo.Language, error) {
	return exo.ParseLanguage(c.GetLanguage())
}
