package simplify

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/trackexo/internal/testutil"
	"github.com/banshee-data/trackexo/internal/trace"
)

func frames(pts []trace.TrackPoint) []int {
	out := make([]int, len(pts))
	for i, p := range pts {
		out[i] = p.Frame
	}
	return out
}

// noisyTrace returns n points one frame apart wandering around a slow drift.
func noisyTrace(seed uint64, n int) []trace.TrackPoint {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	pts := make([]trace.TrackPoint, n)
	x, y := 960.0, 540.0
	for i := range pts {
		x += rng.NormFloat64()*3 + 0.5
		y += rng.NormFloat64() * 2
		pts[i] = trace.TrackPoint{Frame: i, X: x, Y: y, W: 64, H: 48}
	}
	return pts
}

func TestTriangleArea(t *testing.T) {
	t.Parallel()

	zz := testutil.ZigZag()
	assert.InDelta(t, 1000.0, TriangleArea(zz[0], zz[1], zz[2]), 1e-9)

	line := testutil.Line(3, 4, 1.5, -2)
	assert.Equal(t, 0.0, TriangleArea(line[0], line[1], line[2]))

	// Frame spacing is the third axis.
	a := trace.TrackPoint{Frame: 0}
	b := trace.TrackPoint{Frame: 1, X: 1}
	c := trace.TrackPoint{Frame: 2}
	assert.InDelta(t, 1.0, TriangleArea(a, b, c), 1e-12)
}

func TestSimplify_ZigZagKeepsAllPoints(t *testing.T) {
	t.Parallel()

	got, stats, err := Simplify(testutil.ZigZag(), Config{Threshold: 1})
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, []int{0, 10, 20}, frames(got))
	assert.Equal(t, trace.Protected(), got[0].Cost)
	assert.Equal(t, trace.Protected(), got[2].Cost)
	require.True(t, got[1].Cost.IsComputed())
	assert.InDelta(t, 1000.0, got[1].Cost.Value, 1e-9)

	assert.Equal(t, Stats{Input: 3, Output: 3, Passes: 1}, stats)
}

func TestSimplify_ThresholdAboveArea(t *testing.T) {
	t.Parallel()

	got, stats, err := Simplify(testutil.ZigZag(), Config{Threshold: 1000.5})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 20}, frames(got))
	assert.Equal(t, 1, stats.BelowThreshold)
	assert.Equal(t, 2, stats.Passes)
}

func TestSimplify_CollinearReducesToEndpoints(t *testing.T) {
	t.Parallel()

	for _, threshold := range []float64{0, 1, 1e9} {
		for _, n := range []int{3, 10} {
			got, stats, err := Simplify(testutil.Line(n, 1, 3, -7), Config{Threshold: threshold})
			require.NoError(t, err)
			assert.Equal(t, []int{0, n - 1}, frames(got), "threshold %v n %d", threshold, n)
			assert.Equal(t, n-2, stats.ZeroCost)
			assert.Equal(t, 0, stats.BelowThreshold)
		}
	}
}

func TestSimplify_ShortSequencesUnchanged(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		pts  []trace.TrackPoint
	}{
		{name: "empty", pts: nil},
		{name: "single", pts: []trace.TrackPoint{{Frame: 3, X: 1}}},
		{name: "pair", pts: []trace.TrackPoint{{Frame: 3, X: 1}, {Frame: 9, X: 4}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, stats, err := Simplify(tt.pts, Config{Threshold: 5})
			require.NoError(t, err)
			assert.Len(t, got, len(tt.pts))
			assert.Equal(t, 0, stats.Passes)
			for i := range got {
				assert.Equal(t, tt.pts[i].Frame, got[i].Frame)
			}
		})
	}
}

func TestSimplify_EndpointsSurvive(t *testing.T) {
	t.Parallel()

	for seed := uint64(1); seed <= 5; seed++ {
		input := noisyTrace(seed, 200)
		for _, threshold := range []float64{0.001, 1, 10, 100, 1e6} {
			got, _, err := Simplify(input, Config{Threshold: threshold})
			require.NoError(t, err)
			require.GreaterOrEqual(t, len(got), 2)
			assert.Equal(t, input[0].Frame, got[0].Frame)
			assert.Equal(t, input[len(input)-1].Frame, got[len(got)-1].Frame)
			for i := 1; i < len(got); i++ {
				assert.Less(t, got[i-1].Frame, got[i].Frame)
			}
		}
	}
}

func TestSimplify_LargerThresholdNeverLonger(t *testing.T) {
	t.Parallel()

	thresholds := []float64{0, 0.5, 1, 2, 5, 10, 50, 250, 1000}
	for seed := uint64(10); seed < 15; seed++ {
		input := noisyTrace(seed, 300)
		prev := math.MaxInt
		for _, threshold := range thresholds {
			got, _, err := Simplify(input, Config{Threshold: threshold})
			require.NoError(t, err)
			assert.LessOrEqual(t, len(got), prev, "seed %d threshold %v", seed, threshold)
			prev = len(got)
		}
	}
}

func TestSimplify_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	input := noisyTrace(42, 50)
	orig := append([]trace.TrackPoint(nil), input...)

	_, _, err := Simplify(input, Config{Threshold: 10})
	require.NoError(t, err)
	if diff := cmp.Diff(orig, input); diff != "" {
		t.Errorf("input mutated (-want +got):\n%s", diff)
	}
}

func TestSimplify_FixedPoint(t *testing.T) {
	t.Parallel()

	input := noisyTrace(7, 120)
	first, stats, err := Simplify(input, Config{Threshold: 20})
	require.NoError(t, err)
	require.Positive(t, stats.Removed())
	assert.Equal(t, stats.Input-stats.Removed(), stats.Output)

	// Every surviving interior point clears the threshold.
	for _, p := range first[1 : len(first)-1] {
		require.True(t, p.Cost.IsComputed())
		assert.GreaterOrEqual(t, p.Cost.Value, 20.0)
	}

	// Running again on a fixed point removes nothing and costs never shrink.
	second, stats2, err := Simplify(first, Config{Threshold: 20})
	require.NoError(t, err)
	assert.Equal(t, frames(first), frames(second))
	assert.Equal(t, 0, stats2.Removed())
	for i := range second {
		if first[i].Cost.IsComputed() {
			assert.GreaterOrEqual(t, second[i].Cost.Value, first[i].Cost.Value)
		}
	}
}

func TestSimplify_PriorCostPropagates(t *testing.T) {
	t.Parallel()

	// The middle point is collinear with its neighbours, but it carries a
	// large cost from an earlier pass so it must not be dropped.
	pts := testutil.Line(3, 10, 5, 5)
	pts[1].Cost = trace.Computed(50)

	got, stats, err := Simplify(pts, Config{Threshold: 1})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 10, 20}, frames(got))
	assert.Equal(t, trace.Computed(50), got[1].Cost)
	assert.Equal(t, 0, stats.Removed())
}

func TestSimplify_ProtectedInteriorSurvives(t *testing.T) {
	t.Parallel()

	pts := testutil.Line(5, 1, 1, 1)
	pts[2].Cost = trace.Protected()

	got, _, err := Simplify(pts, Config{Threshold: 1})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 4}, frames(got))
}

func TestSimplify_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		pts       []trace.TrackPoint
		threshold float64
		wantErr   error
	}{
		{name: "negative threshold", pts: testutil.ZigZag(), threshold: -1, wantErr: trace.ErrInvalidConfiguration},
		{name: "nan threshold", pts: testutil.ZigZag(), threshold: math.NaN(), wantErr: trace.ErrInvalidConfiguration},
		{name: "inf threshold", pts: testutil.ZigZag(), threshold: math.Inf(1), wantErr: trace.ErrInvalidConfiguration},
		{
			name:      "unsorted frames",
			pts:       []trace.TrackPoint{{Frame: 5}, {Frame: 2}, {Frame: 9}},
			threshold: 1,
			wantErr:   trace.ErrInvalidInput,
		},
		{
			name:      "duplicate frames",
			pts:       []trace.TrackPoint{{Frame: 1}, {Frame: 1}},
			threshold: 1,
			wantErr:   trace.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, _, err := Simplify(tt.pts, Config{Threshold: tt.threshold})
			assert.Nil(t, got)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	assert.Equal(t, DefaultThreshold, cfg.Threshold)
	assert.NoError(t, cfg.Validate())
	assert.NoError(t, Config{Threshold: 0}.Validate())
}
