// Package testutil provides shared test utilities and fixtures.
//
// This package centralises the canonical traces used across the pipeline
// tests so each stage is exercised against the same inputs.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/banshee-data/trackexo/internal/trace"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// ZigZag returns three non-collinear points ten frames apart: out to
// x=100 and back.
func ZigZag() []trace.TrackPoint {
	return []trace.TrackPoint{
		{Frame: 0, X: 0, Y: 0, W: 10, H: 10, R: 0},
		{Frame: 10, X: 100, Y: 0, W: 10, H: 10, R: 0},
		{Frame: 20, X: 0, Y: 0, W: 10, H: 10, R: 0},
	}
}

// Line returns n points spaced step frames apart moving by (dx, dy) per
// point from the origin. Every interior point is exactly collinear.
func Line(n, step int, dx, dy float64) []trace.TrackPoint {
	pts := make([]trace.TrackPoint, n)
	for i := range pts {
		pts[i] = trace.TrackPoint{
			Frame: i * step,
			X:     float64(i) * dx,
			Y:     float64(i) * dy,
			W:     32,
			H:     24,
		}
	}
	return pts
}

// Samples converts points back into raw samples in the same order.
func Samples(points []trace.TrackPoint) []trace.Sample {
	out := make([]trace.Sample, len(points))
	for i, p := range points {
		out[i] = trace.Sample{Frame: p.Frame, X: p.X, Y: p.Y, W: p.W, H: p.H, R: p.R}
	}
	return out
}

// WriteTraceCSV writes content to name under a fresh temp dir and returns
// the file path.
func WriteTraceCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
