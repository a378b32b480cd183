package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. TRACKEXO_WIDTH.
const EnvPrefix = "TRACKEXO"

// Keys accepted from the environment. Names match the JSON fields.
var (
	envIntKeys   = []string{"smoothing_window", "audio_rate", "audio_channels"}
	envFloatKeys = []string{
		"simplify_threshold", "width", "height", "fps",
		"target_width", "target_height", "target_fps",
	}
	envStringKeys = []string{"language", "scale_mode"}
)

// LoadEnv reads overrides from TRACKEXO_* environment variables. Variables
// that are unset leave the matching field nil.
func LoadEnv() (*Export, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Export, error) {
	cfg := EmptyExport()

	for _, key := range envIntKeys {
		if !v.IsSet(key) {
			continue
		}
		raw := strings.TrimSpace(v.GetString(key))
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%s_%s: %q is not an integer", EnvPrefix, strings.ToUpper(key), raw)
		}
		*intField(cfg, key) = ptrInt(n)
	}

	for _, key := range envFloatKeys {
		if !v.IsSet(key) {
			continue
		}
		raw := strings.TrimSpace(v.GetString(key))
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%s_%s: %q is not a number", EnvPrefix, strings.ToUpper(key), raw)
		}
		*floatField(cfg, key) = ptrFloat64(f)
	}

	for _, key := range envStringKeys {
		if !v.IsSet(key) {
			continue
		}
		*stringField(cfg, key) = ptrString(strings.TrimSpace(v.GetString(key)))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid environment configuration: %w", err)
	}
	return cfg, nil
}

func intField(c *Export, key string) **int {
	switch key {
	case "smoothing_window":
		return &c.SmoothingWindow
	case "audio_rate":
		return &c.AudioRate
	case "audio_channels":
		return &c.AudioChannels
	}
	panic("config: unknown int key " + key)
}

func floatField(c *Export, key string) **float64 {
	switch key {
	case "simplify_threshold":
		return &c.SimplifyThreshold
	case "width":
		return &c.Width
	case "height":
		return &c.Height
	case "fps":
		return &c.FPS
	case "target_width":
		return &c.TargetWidth
	case "target_height":
		return &c.TargetHeight
	case "target_fps":
		return &c.TargetFPS
	}
	panic("config: unknown float key " + key)
}

func stringField(c *Export, key string) **string {
	switch key {
	case "language":
		return &c.Language
	case "scale_mode":
		return &c.ScaleMode
	}
	panic("config: unknown string key " + key)
}
