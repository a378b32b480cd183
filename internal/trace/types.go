package trace

import (
	"fmt"
	"math"
)

// Sample is one raw row of a tracking trace. Input order matters: when
// several samples share a frame the last one wins.
type Sample struct {
	Frame int
	X, Y  float64 // position in source pixels
	W, H  float64 // tracked box size
	R     float64 // rotation in degrees
}

// TrackPoint is a cleaned sample, unique per frame.
type TrackPoint struct {
	Frame int
	X, Y  float64
	W, H  float64
	R     float64
	Cost  Cost
}

// Point returns the track point for s with an unset cost.
func (s Sample) Point() TrackPoint {
	return TrackPoint{Frame: s.Frame, X: s.X, Y: s.Y, W: s.W, H: s.H, R: s.R}
}

// CostState tags the removal significance of a point.
type CostState uint8

const (
	// CostUnset marks a point that has never been evaluated.
	CostUnset CostState = iota
	// CostComputed marks a point carrying a triangle-area cost.
	CostComputed
	// CostProtected marks a point that must never be removed.
	CostProtected
)

func (s CostState) String() string {
	switch s {
	case CostUnset:
		return "unset"
	case CostComputed:
		return "computed"
	case CostProtected:
		return "protected"
	default:
		return fmt.Sprintf("CostState(%d)", uint8(s))
	}
}

// Cost is the removal significance of a point. Value is meaningful only
// when State is CostComputed.
type Cost struct {
	State CostState
	Value float64
}

// Computed returns a computed cost of v.
func Computed(v float64) Cost {
	return Cost{State: CostComputed, Value: v}
}

// Protected returns the cost carried by endpoints.
func Protected() Cost {
	return Cost{State: CostProtected}
}

// Merge folds a freshly computed cost into c. Costs only grow: the result is
// max(c, fresh), an unset prior contributes nothing, and a protected point
// stays protected.
func (c Cost) Merge(fresh float64) Cost {
	switch c.State {
	case CostProtected:
		return c
	case CostComputed:
		return Computed(math.Max(c.Value, fresh))
	default:
		return Computed(fresh)
	}
}

// IsComputed reports whether c carries a real cost.
func (c Cost) IsComputed() bool { return c.State == CostComputed }

func (c Cost) String() string {
	if c.State == CostComputed {
		return fmt.Sprintf("%g", c.Value)
	}
	return c.State.String()
}
