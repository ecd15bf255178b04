package decay

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLambdaPositiveForEveryType(t *testing.T) {
	for _, ct := range ContentTypes() {
		if ct.Lambda() <= 0 {
			t.Errorf("%s: lambda = %v, want > 0", ct, ct.Lambda())
		}
	}
}

func TestUnknownContentTypeFallsBack(t *testing.T) {
	assert.Equal(t, DefaultLambda, ContentType("unknown").Lambda())
	assert.InDelta(t, math.Exp(-0.15), Retention(1.0, 1, "unknown"), 1e-12)
	assert.False(t, ContentType("unknown").Known())
}

func TestRetentionZeroStepsIsIdentity(t *testing.T) {
	for _, ct := range append(ContentTypes(), "bogus") {
		for _, i0 := range []float64{0, 0.25, 0.5, 1} {
			assert.Equal(t, i0, Retention(i0, 0, ct), "type=%s i0=%v", ct, i0)
		}
	}
}

func TestRetentionStrictlyDecreasing(t *testing.T) {
	for _, ct := range ContentTypes() {
		prev := Retention(1.0, 0, ct)
		for step := 1; step <= 100; step++ {
			r := Retention(1.0, step, ct)
			if r >= prev {
				t.Fatalf("%s: retention(%d)=%v not below retention(%d)=%v", ct, step, r, step-1, prev)
			}
			if r < 0 || r > 1 {
				t.Fatalf("%s: retention(%d)=%v outside [0,1]", ct, step, r)
			}
			prev = r
		}
	}
}

func TestOptimalStepsRoundTrip(t *testing.T) {
	targets := []float64{1.0, 0.99, 0.9, 0.75, 0.6, 0.5, 0.1, 0.001}
	for _, ct := range ContentTypes() {
		for _, target := range targets {
			steps, err := OptimalSteps(target, ct)
			require.NoError(t, err)
			got := retentionAt(1.0, steps, ct.Lambda())
			assert.InDelta(t, target, got, 1e-9, "type=%s target=%v", ct, target)
		}
	}
}

func TestOptimalStepsTargetOneIsZero(t *testing.T) {
	steps, err := OptimalSteps(1.0, Image)
	require.NoError(t, err)
	assert.Equal(t, 0.0, math.Abs(steps))
}

func TestOptimalStepsRejectsNonPositive(t *testing.T) {
	for _, target := range []float64{0, -0.1, -1, math.NaN()} {
		_, err := OptimalSteps(target, Image)
		if !errors.Is(err, ErrInvalidTargetRetention) {
			t.Errorf("OptimalSteps(%v): err = %v, want ErrInvalidTargetRetention", target, err)
		}
	}
}

func TestCurve(t *testing.T) {
	curve := Curve(Image, DefaultCurveSteps)
	require.Len(t, curve, 21)

	for i, p := range curve {
		assert.Equal(t, i, p.Step)
		assert.InDelta(t, math.Exp(-0.15*float64(i)), p.Retention, 1e-12)
		assert.Equal(t, fmt.Sprintf("%.1f", p.Retention*100), p.RetentionPercent)
	}
	assert.Equal(t, "100.0", curve[0].RetentionPercent)
}

func TestCurveEdges(t *testing.T) {
	assert.Len(t, Curve(Text, 0), 1)
	assert.Empty(t, Curve(Text, -1))

	// Pure function: two calls agree.
	assert.Equal(t, Curve(Audio, 5), Curve(Audio, 5))
}

func TestContentTypesReturnsCopy(t *testing.T) {
	types := ContentTypes()
	types[0] = "mutated"
	assert.Equal(t, Image, ContentTypes()[0])
}
