// Package segment turns simplified keyframes into linear animation segments
// and corrects them for the output canvas and frame rate.
package segment

import (
	"github.com/banshee-data/trackexo/internal/trace"
)

// Span is a linearly interpolated parameter over one segment.
type Span struct {
	Start float64
	End   float64
}

// Segment animates every parameter linearly between two consecutive
// keyframes. Frame bounds are inclusive.
type Segment struct {
	ID         int
	FrameStart int
	FrameEnd   int

	W Span // size along x
	H Span // size along y
	X Span
	Y Span
	R Span // rotation in degrees
}

// Build emits one segment per pair of consecutive points. Segment i starts
// at point i and ends one frame before point i+1, so segments cover the
// track without overlapping.
func Build(points []trace.TrackPoint) ([]Segment, error) {
	if len(points) < 2 {
		return nil, trace.NewFieldError(trace.ErrInsufficientPoints, "points",
			"need at least 2 keyframes to build a segment, got %d", len(points))
	}

	segs := make([]Segment, len(points)-1)
	for i := range segs {
		a, b := points[i], points[i+1]
		segs[i] = Segment{
			ID:         i,
			FrameStart: a.Frame,
			FrameEnd:   b.Frame - 1,
			W:          Span{a.W, b.W},
			H:          Span{a.H, b.H},
			X:          Span{a.X, b.X},
			Y:          Span{a.Y, b.Y},
			R:          Span{a.R, b.R},
		}
	}
	return segs, nil
}
