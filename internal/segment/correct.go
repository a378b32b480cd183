package segment

import (
	"fmt"
	"math"
	"strings"

	"github.com/banshee-data/trackexo/internal/monitoring"
	"github.com/banshee-data/trackexo/internal/trace"
)

// ScaleMode selects how target dimensions map to scale factors.
type ScaleMode int

const (
	// ScaleIndependent scales x by the width ratio and y by the height ratio.
	ScaleIndependent ScaleMode = iota
	// ScaleUniform applies one factor to both axes: the height ratio when a
	// target height is given, otherwise the width ratio.
	ScaleUniform
)

func (m ScaleMode) String() string {
	switch m {
	case ScaleIndependent:
		return "independent"
	case ScaleUniform:
		return "uniform"
	default:
		return fmt.Sprintf("ScaleMode(%d)", int(m))
	}
}

// ParseScaleMode parses "independent" or "uniform". The empty string selects
// ScaleIndependent.
func ParseScaleMode(s string) (ScaleMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "independent":
		return ScaleIndependent, nil
	case "uniform":
		return ScaleUniform, nil
	default:
		return 0, trace.NewFieldError(trace.ErrInvalidConfiguration, "scale_mode",
			"unknown scale mode %q (want independent or uniform)", s)
	}
}

// CorrectConfig describes the source footage and the optional output
// targets. A zero target means "same as source".
type CorrectConfig struct {
	Width  float64
	Height float64
	FPS    float64

	TargetWidth  float64
	TargetHeight float64
	TargetFPS    float64

	ScaleMode ScaleMode
}

// Validate reports the first missing source dimension or invalid target.
func (c CorrectConfig) Validate() error {
	required := [...]struct {
		name string
		v    float64
	}{
		{"width", c.Width}, {"height", c.Height}, {"fps", c.FPS},
	}
	for _, f := range required {
		if math.IsNaN(f.v) || f.v <= 0 {
			return trace.NewFieldError(trace.ErrMissingDimension, f.name, "must be set to a positive value")
		}
		if math.IsInf(f.v, 0) {
			return trace.NewFieldError(trace.ErrInvalidConfiguration, f.name, "must be finite")
		}
	}

	targets := [...]struct {
		name string
		v    float64
	}{
		{"target_width", c.TargetWidth}, {"target_height", c.TargetHeight}, {"target_fps", c.TargetFPS},
	}
	for _, f := range targets {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
			return trace.NewFieldError(trace.ErrInvalidConfiguration, f.name,
				"must be a finite value >= 0, got %v", f.v)
		}
	}

	if c.ScaleMode != ScaleIndependent && c.ScaleMode != ScaleUniform {
		return trace.NewFieldError(trace.ErrInvalidConfiguration, "scale_mode", "unknown mode %d", int(c.ScaleMode))
	}
	return nil
}

// Factors returns the horizontal and vertical position/size scale.
func (c CorrectConfig) Factors() (sx, sy float64) {
	sx, sy = 1, 1
	if c.TargetWidth > 0 {
		sx = c.TargetWidth / c.Width
	}
	if c.TargetHeight > 0 {
		sy = c.TargetHeight / c.Height
	}
	if c.ScaleMode == ScaleUniform {
		if c.TargetHeight > 0 {
			sx = sy
		} else {
			sy = sx
		}
	}
	return sx, sy
}

// OutputWidth returns the canvas width of the corrected output.
func (c CorrectConfig) OutputWidth() float64 {
	if c.TargetWidth > 0 {
		return c.TargetWidth
	}
	return c.Width
}

// OutputHeight returns the canvas height of the corrected output.
func (c CorrectConfig) OutputHeight() float64 {
	if c.TargetHeight > 0 {
		return c.TargetHeight
	}
	return c.Height
}

// OutputFPS returns the frame rate of the corrected output.
func (c CorrectConfig) OutputFPS() float64 {
	if c.TargetFPS > 0 {
		return c.TargetFPS
	}
	return c.FPS
}

// RemapFrame converts a 0-based source frame to a 1-based output frame at
// the output frame rate, truncating partial frames.
func (c CorrectConfig) RemapFrame(frame int) int {
	return int(math.Floor(float64(frame)*c.OutputFPS()/c.FPS)) + 1
}

// Correct re-origins positions on the source frame centre, scales positions
// and sizes for the target canvas and remaps frame bounds to the target
// rate. Rotation is untouched. It returns a corrected copy of segs.
func Correct(segs []Segment, cfg CorrectConfig) ([]Segment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	warnAspect(cfg)

	sx, sy := cfg.Factors()
	cx, cy := cfg.Width/2, cfg.Height/2

	out := make([]Segment, len(segs))
	for i, s := range segs {
		out[i] = Segment{
			ID:         s.ID,
			FrameStart: cfg.RemapFrame(s.FrameStart),
			FrameEnd:   cfg.RemapFrame(s.FrameEnd),
			W:          Span{s.W.Start * sx, s.W.End * sx},
			H:          Span{s.H.Start * sy, s.H.End * sy},
			X:          Span{(s.X.Start - cx) * sx, (s.X.End - cx) * sx},
			Y:          Span{(s.Y.Start - cy) * sy, (s.Y.End - cy) * sy},
			R:          s.R,
		}
	}
	return out, nil
}

// TotalLength returns the output length in frames for a track whose last
// keyframe sits on lastFrame. It is computed from the keyframe itself rather
// than from the last segment, whose end stops one frame short.
func TotalLength(lastFrame int, cfg CorrectConfig) (int, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	return cfg.RemapFrame(lastFrame), nil
}

// warnAspect flags target dimensions whose ratios disagree, since the two
// scale modes then produce different output.
func warnAspect(cfg CorrectConfig) {
	if cfg.TargetWidth <= 0 || cfg.TargetHeight <= 0 {
		return
	}
	rw, rh := cfg.TargetWidth/cfg.Width, cfg.TargetHeight/cfg.Height
	if math.Abs(rw-rh) <= 1e-9*math.Max(rw, rh) {
		return
	}
	sx, sy := cfg.Factors()
	monitoring.Warnf("target width ratio %.4f and height ratio %.4f differ; %s scaling uses x=%.4f y=%.4f",
		rw, rh, cfg.ScaleMode, sx, sy)
}
