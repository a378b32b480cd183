// Package simplify reduces a cleaned trace to its significant keyframes.
//
// The reduction is a Visvalingam–Whyatt variant in (x, y, frame) space:
// a point's cost is the area of the triangle it forms with its current
// neighbours, so a spatial deviation held over few frames outweighs the
// same deviation spread over many. Costs never decrease between passes,
// and passes repeat until one removes nothing.
package simplify

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/trackexo/internal/monitoring"
	"github.com/banshee-data/trackexo/internal/trace"
)

// DefaultThreshold is the area below which interior points are dropped.
const DefaultThreshold = 1.0

// Config configures Simplify.
type Config struct {
	// Threshold is the minimum triangle area an interior point must carry to
	// survive. Zero removes only exactly collinear points.
	Threshold float64
}

// DefaultConfig returns the default simplifier configuration.
func DefaultConfig() Config {
	return Config{Threshold: DefaultThreshold}
}

// Validate checks that the threshold is finite and non-negative.
func (c Config) Validate() error {
	if math.IsNaN(c.Threshold) || math.IsInf(c.Threshold, 0) || c.Threshold < 0 {
		return trace.NewFieldError(trace.ErrInvalidConfiguration, "simplify_threshold",
			"must be a finite value >= 0, got %v", c.Threshold)
	}
	return nil
}

// Stats summarises one Simplify call.
type Stats struct {
	Input          int // points received
	Output         int // points returned
	Passes         int // passes run, including the final pass that removed nothing
	ZeroCost       int // collinear points removed
	BelowThreshold int // points removed for a cost under the threshold
}

// Removed returns the total number of points dropped.
func (s Stats) Removed() int {
	return s.ZeroCost + s.BelowThreshold
}

// Simplify removes low-significance interior points from points and returns
// the survivors with their final costs. Endpoints are marked protected and
// always survive; sequences of two points or fewer are returned unchanged.
// Points that already carry computed costs (for example the output of an
// earlier call) have those costs folded in, so costs only grow.
// The input slice is not modified.
func Simplify(points []trace.TrackPoint, cfg Config) ([]trace.TrackPoint, Stats, error) {
	stats := Stats{Input: len(points)}
	if err := cfg.Validate(); err != nil {
		return nil, stats, err
	}
	for i := 1; i < len(points); i++ {
		if points[i].Frame <= points[i-1].Frame {
			return nil, stats, trace.NewFieldError(trace.ErrInvalidInput, "frame",
				"frames must be strictly ascending, got %d after %d", points[i].Frame, points[i-1].Frame)
		}
	}

	work := make([]trace.TrackPoint, len(points))
	copy(work, points)

	if len(work) <= 2 {
		stats.Output = len(work)
		return work, stats, nil
	}
	work[0].Cost = trace.Protected()
	work[len(work)-1].Cost = trace.Protected()

	for {
		stats.Passes++
		var zero, below int
		work, zero, below = pass(work, cfg.Threshold)
		stats.ZeroCost += zero
		stats.BelowThreshold += below
		monitoring.Logf("simplify: pass %d removed %d collinear and %d below threshold, %d remain",
			stats.Passes, zero, below, len(work))
		if zero+below == 0 {
			break
		}
	}

	stats.Output = len(work)
	return work, stats, nil
}

// pass runs one batch removal over pts. Every interior cost is refreshed
// against the current neighbours before anything is dropped, so removals
// within a pass never influence each other. pts is compacted in place.
func pass(pts []trace.TrackPoint, threshold float64) (kept []trace.TrackPoint, zero, below int) {
	for i := 1; i < len(pts)-1; i++ {
		pts[i].Cost = pts[i].Cost.Merge(TriangleArea(pts[i-1], pts[i], pts[i+1]))
	}

	kept = pts[:0]
	for _, p := range pts {
		if p.Cost.IsComputed() {
			switch {
			case p.Cost.Value == 0:
				zero++
				continue
			case p.Cost.Value < threshold:
				below++
				continue
			}
		}
		kept = append(kept, p)
	}
	return kept, zero, below
}

// TriangleArea returns the area of the triangle p0 p1 p2 in
// (x, y, frame) space: half the magnitude of (p1-p0) × (p2-p0).
func TriangleArea(p0, p1, p2 trace.TrackPoint) float64 {
	a := vec(p0)
	return r3.Norm(r3.Cross(r3.Sub(vec(p1), a), r3.Sub(vec(p2), a))) / 2
}

func vec(p trace.TrackPoint) r3.Vec {
	return r3.Vec{X: p.X, Y: p.Y, Z: float64(p.Frame)}
}
