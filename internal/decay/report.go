package decay

import "time"

// Now stamps reports. Tests replace it for stable output.
var Now = time.Now

// ReportParams are the inputs to GenerateReport.
type ReportParams struct {
	ContentType ContentType `json:"contentType"`
	Quality     Quality     `json:"quality"`
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	Depth       int         `json:"depth,omitempty"`
}

// Report bundles the optimization for a content type and quality with the
// retention it achieves, a brick estimate and the full decay curve.
type Report struct {
	ID                string             `json:"id,omitempty"`
	ContentType       ContentType        `json:"contentType"`
	Quality           Quality            `json:"quality"`
	Optimization      OptimizationResult `json:"optimization"`
	Retention         float64            `json:"retention"`
	RetentionPercent  string             `json:"retentionPercent"`
	PerceptualQuality int                `json:"perceptualQuality"`
	Bricks            BrickEstimate      `json:"bricks"`
	Validation        QualityCheck       `json:"validation"`
	Curve             RetentionCurve     `json:"curve"`
	CreatedAt         time.Time          `json:"createdAt"`
}

// GenerateReport runs the optimizer and derives everything else from the
// step count it recommends. CreatedAt is informational only. The only
// error comes from EstimateBricks.
func GenerateReport(p ReportParams) (Report, error) {
	q := p.Quality
	if q == "" {
		q = DefaultQuality
	}
	depth := p.Depth
	if depth == 0 {
		depth = 1
	}

	bricks, err := EstimateBricks(p.Width, p.Height, depth)
	if err != nil {
		return Report{}, err
	}

	opt := OptimizeForQuality(p.ContentType, q)
	retention := Retention(1.0, opt.Steps, p.ContentType)

	return Report{
		ContentType:       p.ContentType,
		Quality:           q,
		Optimization:      opt,
		Retention:         retention,
		RetentionPercent:  FormatPercent(retention),
		PerceptualQuality: PerceptualQuality(retention),
		Bricks:            bricks,
		Validation:        ValidateQuality(retention, p.ContentType),
		Curve:             Curve(p.ContentType, DefaultCurveSteps),
		CreatedAt:         Now().UTC(),
	}, nil
}
