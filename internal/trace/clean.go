package trace

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// MaxSmoothWindow is the largest accepted moving-average window.
const MaxSmoothWindow = 120

// DefaultSmoothWindow is the command line default for -smooth.
const DefaultSmoothWindow = 3

// CleanConfig configures Clean.
type CleanConfig struct {
	// SmoothWindow is the centered moving-average window applied to x and y.
	// 0 and 1 disable smoothing.
	SmoothWindow int
}

// Validate checks the smoothing window range.
func (c CleanConfig) Validate() error {
	if c.SmoothWindow < 0 || c.SmoothWindow > MaxSmoothWindow {
		return NewFieldError(ErrInvalidConfiguration, "smoothing_window",
			"must be 0, 1 or between 2 and %d, got %d", MaxSmoothWindow, c.SmoothWindow)
	}
	return nil
}

// Smoothing reports whether the configuration requests smoothing.
func (c CleanConfig) Smoothing() bool {
	return c.SmoothWindow > 1
}

// Clean deduplicates samples by frame, keeping the last sample seen for each
// frame, and returns the points sorted by frame. When smoothing is enabled
// x and y are replaced by their centered moving average; frame, size and
// rotation are never altered. The input slice is not modified.
func Clean(samples []Sample, cfg CleanConfig) ([]TrackPoint, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	last := make(map[int]int, len(samples))
	for i, s := range samples {
		if err := checkFinite(i, s); err != nil {
			return nil, err
		}
		last[s.Frame] = i
	}
	if len(last) == 0 {
		return nil, NewFieldError(ErrInvalidInput, "samples", "trace is empty")
	}

	frames := make([]int, 0, len(last))
	for f := range last {
		frames = append(frames, f)
	}
	slices.Sort(frames)

	points := make([]TrackPoint, len(frames))
	for i, f := range frames {
		points[i] = samples[last[f]].Point()
	}

	if cfg.Smoothing() {
		smooth(points, cfg.SmoothWindow)
	}
	return points, nil
}

// smooth applies a centered moving average with a minimum of one sample, so
// the window shrinks at the sequence boundaries instead of yielding NaN. For
// even windows the extra sample falls before the center.
func smooth(points []TrackPoint, k int) {
	n := len(points)
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
	}

	for i := range points {
		lo := max(0, i-k/2)
		hi := min(n-1, i+(k-1)/2)
		points[i].X = stat.Mean(xs[lo:hi+1], nil)
		points[i].Y = stat.Mean(ys[lo:hi+1], nil)
	}
}

func checkFinite(row int, s Sample) error {
	fields := [...]struct {
		name string
		v    float64
	}{
		{"x", s.X}, {"y", s.Y}, {"w", s.W}, {"h", s.H}, {"r", s.R},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return NewFieldError(ErrInvalidInput, f.name, "sample %d (frame %d) is not finite", row, s.Frame)
		}
	}
	return nil
}
