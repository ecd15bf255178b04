package decay

import (
	"errors"
	"math"
)

// Quality is a named retention target.
type Quality string

const (
	High   Quality = "high"
	Medium Quality = "medium"
	Low    Quality = "low"
)

// DefaultQuality is assumed when a caller does not pick one.
const DefaultQuality = Medium

var ErrUnknownQuality = errors.New("unknown quality")

var qualityTargets = map[Quality]float64{
	High:   0.90,
	Medium: 0.75,
	Low:    0.60,
}

var qualityOrder = []Quality{High, Medium, Low}

// Qualities returns every known quality label, best first.
func Qualities() []Quality {
	out := make([]Quality, len(qualityOrder))
	copy(out, qualityOrder)
	return out
}

// Target returns the retention fraction for q. Unknown labels get the
// medium target.
func (q Quality) Target() float64 {
	if t, ok := qualityTargets[q]; ok {
		return t
	}
	return qualityTargets[DefaultQuality]
}

// Known reports whether q has its own entry in the target table.
func (q Quality) Known() bool {
	_, ok := qualityTargets[q]
	return ok
}

// OptimizationResult is the step count recommended for a quality target.
type OptimizationResult struct {
	Steps           int     `json:"steps"`
	TargetRetention float64 `json:"targetRetention"`
	Lambda          float64 `json:"lambda"`
	Quality         Quality `json:"quality"`
}

// OptimizeForQuality solves for the step count that keeps retention at the
// target of q, rounded to the nearest integer.
func OptimizeForQuality(ct ContentType, q Quality) OptimizationResult {
	target := q.Target()
	return OptimizationResult{
		Steps:           int(math.Round(stepsTo(target, ct.Lambda()))),
		TargetRetention: target,
		Lambda:          ct.Lambda(),
		Quality:         q,
	}
}

// PerceptualExponent bends linear retention into perceived quality. Viewers
// notice the first losses less than later ones, so the curve sits above the
// identity line.
const PerceptualExponent = 0.7

// PerceptualQuality maps retention to a 0..100 perceived quality score.
func PerceptualQuality(retention float64) int {
	r := math.Max(0, math.Min(1, retention))
	return int(math.Round(100 * math.Pow(r, PerceptualExponent)))
}

// Validation thresholds and their advisory messages.
const (
	MinimumRetention     = 0.50
	RecommendedRetention = 0.70

	MessageBelowMinimum = "Quality too low: retention is below the 50% minimum. Reduce the number of conversion steps."
	MessageAcceptable   = "Quality acceptable but below the recommended 70% retention."
	MessageRecommended  = "Quality meets the recommended retention level."
)

// QualityCheck is the verdict of ValidateQuality.
type QualityCheck struct {
	Passes      bool    `json:"passes"`
	Recommended bool    `json:"recommended"`
	Retention   float64 `json:"retention"`
	Message     string  `json:"message"`
}

// ValidateQuality checks retention against the minimum and recommended
// thresholds. The content type does not change the thresholds.
func ValidateQuality(retention float64, _ ContentType) QualityCheck {
	check := QualityCheck{
		Passes:      retention >= MinimumRetention,
		Recommended: retention >= RecommendedRetention,
		Retention:   retention,
	}
	switch {
	case !check.Passes:
		check.Message = MessageBelowMinimum
	case !check.Recommended:
		check.Message = MessageAcceptable
	default:
		check.Message = MessageRecommended
	}
	return check
}
