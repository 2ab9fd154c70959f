// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCubicInterpolate_Endpoints(t *testing.T) {
	t.Parallel()

	for i := range 100 {
		y0, y1, y2, y3 := float32(i), float32(i+1), float32(i+2), float32(i+3)
		assert.Equal(t, y1, CubicInterpolate(y0, y1, y2, y3, 0), "x=0 at %d", i)
		assert.Equal(t, y2, CubicInterpolate(y0, y1, y2, y3, 1), "x=1 at %d", i)
	}
}

// Catmull-Rom reproduces straight lines and constants, which the resampler
// relies on for DC and ramps.
func TestCubicInterpolate_Polynomials(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		y0, y1, y2, y3 float32
		x, want        float32
	}{
		{"ramp quarter", 1, 2, 3, 4, 0.25, 2.25},
		{"ramp middle", -1, -0.5, 0, 0.5, 0.5, -0.25},
		{"constant", 0.7, 0.7, 0.7, 0.7, 0.33, 0.7},
		{"silence", 0, 0, 0, 0, 0.5, 0},
		{"symmetric step", -1, -1, 1, 1, 0.5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, CubicInterpolate(tt.y0, tt.y1, tt.y2, tt.y3, tt.x), 1e-6)
		})
	}
}

func TestCubicInterpolate_Overshoot(t *testing.T) {
	t.Parallel()

	// a peak between y1 and y2 may overshoot slightly but stays bounded
	for x := float32(0); x <= 1; x += 0.05 {
		got := CubicInterpolate(0.5, 0.9, 0.7, 0.3, x)
		assert.True(t, got > 0.6 && got < 1.0, "x=%v got %v", x, got)
	}
}

func TestCubicInterpolateFrame(t *testing.T) {
	t.Parallel()

	dst := make([]float32, 2)
	CubicInterpolateFrame(dst, []float32{0, 10}, []float32{1, 20}, []float32{2, 30}, []float32{3, 40}, 0.5)

	assert.InDeltaSlice(t, []float32{1.5, 25}, dst, 1e-5)
}

func TestCubicInterpolateFrame_ZeroAllocs(t *testing.T) {
	f0, f1, f2, f3 := []float32{0.1, 0.2}, []float32{0.5, 0.4}, []float32{0.3, 0.1}, []float32{-0.2, 0}
	dst := make([]float32, 2)

	allocs := testing.AllocsPerRun(1000, func() {
		CubicInterpolateFrame(dst, f0, f1, f2, f3, 0.5)
	})
	assert.Zero(t, allocs)
}

func BenchmarkCubicInterpolateFrame(b *testing.B) {
	f0, f1, f2, f3 := []float32{0.1, 0.2}, []float32{0.5, 0.4}, []float32{0.3, 0.1}, []float32{-0.2, 0}
	dst := make([]float32, 2)

	b.ReportAllocs()

	for i := range b.N {
		CubicInterpolateFrame(dst, f0, f1, f2, f3, float32(i%100)/100.0)
	}
}
