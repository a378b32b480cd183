package trace

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean_DedupLastWins(t *testing.T) {
	t.Parallel()

	samples := []Sample{
		{Frame: 2, X: 1, Y: 1, W: 10, H: 10},
		{Frame: 0, X: 5, Y: 5, W: 10, H: 10},
		{Frame: 2, X: 7, Y: 8, W: 11, H: 12, R: 30},
		{Frame: 1, X: 3, Y: 3, W: 10, H: 10},
		{Frame: 0, X: 6, Y: 6, W: 10, H: 10, R: 5},
	}

	got, err := Clean(samples, CleanConfig{})
	require.NoError(t, err)

	want := []TrackPoint{
		{Frame: 0, X: 6, Y: 6, W: 10, H: 10, R: 5},
		{Frame: 1, X: 3, Y: 3, W: 10, H: 10},
		{Frame: 2, X: 7, Y: 8, W: 11, H: 12, R: 30},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Clean() mismatch (-want +got):\n%s", diff)
	}
}

func TestClean_FramesStrictlyAscending(t *testing.T) {
	t.Parallel()

	samples := []Sample{
		{Frame: 40}, {Frame: -3}, {Frame: 17}, {Frame: 17}, {Frame: 5}, {Frame: 0}, {Frame: 40},
	}
	got, err := Clean(samples, CleanConfig{SmoothWindow: 3})
	require.NoError(t, err)
	require.Len(t, got, 5)
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1].Frame, got[i].Frame)
	}
}

func TestClean_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	samples := []Sample{{Frame: 1, X: 10}, {Frame: 0, X: 0}, {Frame: 2, X: 20}}
	orig := append([]Sample(nil), samples...)

	_, err := Clean(samples, CleanConfig{SmoothWindow: 2})
	require.NoError(t, err)
	assert.Equal(t, orig, samples)
}

func TestClean_Smoothing(t *testing.T) {
	t.Parallel()

	samples := []Sample{
		{Frame: 0, X: 0, Y: 10, W: 1, H: 2, R: 3},
		{Frame: 1, X: 3, Y: 20, W: 4, H: 5, R: 6},
		{Frame: 2, X: 6, Y: 60, W: 7, H: 8, R: 9},
		{Frame: 3, X: 9, Y: 10, W: 1, H: 1, R: 1},
	}

	tests := []struct {
		name   string
		window int
		wantX  []float64
		wantY  []float64
	}{
		{
			name:   "disabled with zero",
			window: 0,
			wantX:  []float64{0, 3, 6, 9},
			wantY:  []float64{10, 20, 60, 10},
		},
		{
			name:   "disabled with one",
			window: 1,
			wantX:  []float64{0, 3, 6, 9},
			wantY:  []float64{10, 20, 60, 10},
		},
		{
			name:   "window 3 shrinks at edges",
			window: 3,
			wantX:  []float64{1.5, 3, 6, 7.5},
			wantY:  []float64{15, 30, 30, 35},
		},
		{
			name:   "even window leans backwards",
			window: 2,
			wantX:  []float64{0, 1.5, 4.5, 7.5},
			wantY:  []float64{10, 15, 40, 35},
		},
		{
			name:   "window larger than trace",
			window: 120,
			wantX:  []float64{4.5, 4.5, 4.5, 4.5},
			wantY:  []float64{25, 25, 25, 25},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Clean(samples, CleanConfig{SmoothWindow: tt.window})
			require.NoError(t, err)
			require.Len(t, got, len(samples))

			for i, p := range got {
				assert.InDelta(t, tt.wantX[i], p.X, 1e-9, "x[%d]", i)
				assert.InDelta(t, tt.wantY[i], p.Y, 1e-9, "y[%d]", i)
				// Smoothing never touches frame, size or rotation.
				assert.Equal(t, samples[i].Frame, p.Frame)
				assert.Equal(t, samples[i].W, p.W)
				assert.Equal(t, samples[i].H, p.H)
				assert.Equal(t, samples[i].R, p.R)
				assert.Equal(t, CostUnset, p.Cost.State)
			}
		})
	}
}

func TestClean_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		samples []Sample
		window  int
		wantErr error
		field   string
	}{
		{name: "empty", samples: nil, wantErr: ErrInvalidInput, field: "samples"},
		{name: "window negative", samples: []Sample{{Frame: 0}}, window: -1, wantErr: ErrInvalidConfiguration, field: "smoothing_window"},
		{name: "window too large", samples: []Sample{{Frame: 0}}, window: 121, wantErr: ErrInvalidConfiguration, field: "smoothing_window"},
		{name: "nan x", samples: []Sample{{Frame: 0, X: math.NaN()}}, wantErr: ErrInvalidInput, field: "x"},
		{name: "inf rotation", samples: []Sample{{Frame: 0, R: math.Inf(-1)}}, wantErr: ErrInvalidInput, field: "r"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Clean(tt.samples, CleanConfig{SmoothWindow: tt.window})
			require.Error(t, err)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, tt.wantErr)

			var fe *FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestCleanConfig_Validate(t *testing.T) {
	t.Parallel()

	for _, k := range []int{0, 1, 2, 3, 60, 120} {
		assert.NoError(t, CleanConfig{SmoothWindow: k}.Validate(), "window %d", k)
	}
	for _, k := range []int{-5, -1, 121, 1000} {
		assert.ErrorIs(t, CleanConfig{SmoothWindow: k}.Validate(), ErrInvalidConfiguration, "window %d", k)
	}
}

func TestCost_Merge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		prior Cost
		fresh float64
		want  Cost
	}{
		{name: "unset takes fresh", prior: Cost{}, fresh: 2.5, want: Computed(2.5)},
		{name: "keeps larger prior", prior: Computed(4), fresh: 1, want: Computed(4)},
		{name: "grows to fresh", prior: Computed(1), fresh: 3, want: Computed(3)},
		{name: "protected stays", prior: Protected(), fresh: 0, want: Protected()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.prior.Merge(tt.fresh))
		})
	}
}

func TestFieldError_Message(t *testing.T) {
	t.Parallel()

	err := NewFieldError(ErrMissingDimension, "fps", "must be positive")
	assert.EqualError(t, err, "missing dimension: fps: must be positive")
	assert.ErrorIs(t, err, ErrMissingDimension)
	assert.NotErrorIs(t, err, ErrInvalidInput)
}
