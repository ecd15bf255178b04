// Package decay implements the exponential retention model.
//
// Retention after t steps is I0 * e^(-λt), where λ is a fixed per-content-type
// decay constant. Every function here is pure; the lookup tables are read-only
// and safe for concurrent use.
package decay

import (
	"errors"
	"fmt"
	"math"
)

// ContentType selects a decay constant.
type ContentType string

const (
	Image        ContentType = "image"
	Text         ContentType = "text"
	Model3D      ContentType = "model3d"
	Pattern      ContentType = "pattern"
	Architecture ContentType = "architecture"
	Audio        ContentType = "audio"
	Data         ContentType = "data"
)

// DefaultLambda is used for content types missing from the table.
const DefaultLambda = 0.15

// DefaultCurveSteps is the curve length used when the caller has no preference.
const DefaultCurveSteps = 20

var (
	// ErrInvalidTargetRetention is returned when an inverse calculation is
	// asked for a target at or below zero, where ln is undefined.
	ErrInvalidTargetRetention = errors.New("target retention must be in (0, 1]")
	ErrUnknownContentType     = errors.New("unknown content type")
)

var lambdas = map[ContentType]float64{
	Image:        0.15,
	Text:         0.08,
	Model3D:      0.20,
	Pattern:      0.10,
	Architecture: 0.12,
	Audio:        0.18,
	Data:         0.05,
}

// contentTypeOrder keeps listings stable.
var contentTypeOrder = []ContentType{Image, Text, Model3D, Pattern, Architecture, Audio, Data}

// ContentTypes returns every known content type in display order.
func ContentTypes() []ContentType {
	out := make([]ContentType, len(contentTypeOrder))
	copy(out, contentTypeOrder)
	return out
}

// Lambda returns the decay constant for ct, or DefaultLambda if ct is unknown.
func (ct ContentType) Lambda() float64 {
	if l, ok := lambdas[ct]; ok {
		return l
	}
	return DefaultLambda
}

// Known reports whether ct has its own entry in the decay table.
func (ct ContentType) Known() bool {
	_, ok := lambdas[ct]
	return ok
}

// Retention returns initial * e^(-λ*steps).
func Retention(initial float64, steps int, ct ContentType) float64 {
	return retentionAt(initial, float64(steps), ct.Lambda())
}

func retentionAt(initial, steps, lambda float64) float64 {
	return initial * math.Exp(-lambda*steps)
}

// OptimalSteps returns the continuous number of steps after which retention
// from 1.0 falls to target. Rounding is left to the caller.
func OptimalSteps(target float64, ct ContentType) (float64, error) {
	if math.IsNaN(target) || target <= 0 {
		return 0, fmt.Errorf("%w: got %v", ErrInvalidTargetRetention, target)
	}
	return stepsTo(target, ct.Lambda()), nil
}

// stepsTo inverts retentionAt for an initial value of 1. target must be > 0.
func stepsTo(target, lambda float64) float64 {
	return -math.Log(target) / lambda
}

// CurvePoint is one sample of a retention curve.
type CurvePoint struct {
	Step             int     `json:"step"`
	Retention        float64 `json:"retention"`
	RetentionPercent string  `json:"retentionPercent"`
}

// RetentionCurve is an ordered run of samples starting at step 0.
type RetentionCurve []CurvePoint

// Curve samples retention from 1.0 at steps 0..maxSteps inclusive.
func Curve(ct ContentType, maxSteps int) RetentionCurve {
	if maxSteps < 0 {
		return RetentionCurve{}
	}
	lambda := ct.Lambda()
	curve := make(RetentionCurve, 0, maxSteps+1)
	for step := 0; step <= maxSteps; step++ {
		r := retentionAt(1.0, float64(step), lambda)
		curve = append(curve, CurvePoint{
			Step:             step,
			Retention:        r,
			RetentionPercent: FormatPercent(r),
		})
	}
	return curve
}

// FormatPercent renders a retention fraction as a percentage with one decimal.
func FormatPercent(retention float64) string {
	return fmt.Sprintf("%.1f", retention*100)
}
