package decay

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
)

// Build types returned by EstimateBricks.
const (
	BuildMosaic    = "mosaic"
	BuildSculpture = "sculpture"
)

// MaxDimension bounds each build dimension accepted from users.
const MaxDimension = 10000

// Packing efficiencies: a flat mosaic wastes little, a volume build leaves
// gaps and uses larger bricks.
const (
	mosaicEfficiency    = 0.95
	sculptureEfficiency = 0.70
)

var (
	ErrInvalidDimensions = errors.New("width and height must be > 0")
	ErrBuildTooLarge     = errors.New("build too large: stud count overflows")
)

// BrickEstimate is a rough part count for a build of the given stud dimensions.
type BrickEstimate struct {
	TotalStuds      int    `json:"totalStuds"`
	EstimatedBricks int    `json:"estimatedBricks"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	Depth           int    `json:"depth"`
	Type            string `json:"type"`
}

// EstimateBricks estimates the brick count for width x height x depth studs.
// A depth below 1 is treated as a flat mosaic.
func EstimateBricks(width, height, depth int) (BrickEstimate, error) {
	if width <= 0 || height <= 0 {
		return BrickEstimate{}, fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, width, height)
	}
	if depth < 1 {
		depth = 1
	}
	studs, ok := mulStuds(width, height, depth)
	if !ok {
		return BrickEstimate{}, fmt.Errorf("%w: %dx%dx%d", ErrBuildTooLarge, width, height, depth)
	}

	kind, eff := BuildSculpture, sculptureEfficiency
	if depth == 1 {
		kind, eff = BuildMosaic, mosaicEfficiency
	}

	return BrickEstimate{
		TotalStuds:      studs,
		EstimatedBricks: int(math.Round(float64(studs) * eff)),
		Width:           width,
		Height:          height,
		Depth:           depth,
		Type:            kind,
	}, nil
}

// mulStuds multiplies positive dimensions, reporting false if the product
// does not fit in an int.
func mulStuds(dims ...int) (int, bool) {
	product := uint64(1)
	for _, d := range dims {
		hi, lo := bits.Mul64(product, uint64(d))
		if hi != 0 || lo > math.MaxInt {
			return 0, false
		}
		product = lo
	}
	return int(product), true
}
