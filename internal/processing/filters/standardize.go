package filters

import (
	"context"
	"fmt"
	"math"

	"edge-tuner/internal/models"
	"edge-tuner/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// flatStdDev is the standard deviation below which an image counts as flat.
const flatStdDev = 1e-9

// Standardizer rescales a single-channel image to zero mean and unit
// population variance, producing float32 output.
type Standardizer struct{}

func NewStandardizer() *Standardizer {
	return &Standardizer{}
}

func (s *Standardizer) Name() string {
	return "standardizer"
}

func (s *Standardizer) Apply(ctx context.Context, input *safe.Mat, params models.ParameterSet) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := safe.ValidateMatForOperation(input, "standardize"); err != nil {
		return nil, err
	}
	if input.Channels() != 1 {
		return nil, fmt.Errorf("standardize requires 1 channel, got %d", input.Channels())
	}

	mean, stdDev := MeanStdDev(input)
	if math.IsNaN(stdDev) || stdDev < flatStdDev {
		return nil, fmt.Errorf("%w (mean %.4f)", models.ErrFlatImage, mean)
	}

	dst := gocv.NewMat()
	srcMat := input.GetMat()
	alpha := 1.0 / stdDev
	srcMat.ConvertToWithParams(&dst, gocv.MatTypeCV32F, float32(alpha), float32(-mean*alpha))

	return safe.Adopt(dst)
}

// MeanStdDev returns the mean and population standard deviation of the first
// channel of m.
func MeanStdDev(m *safe.Mat) (mean, stdDev float64) {
	meanMat := gocv.NewMat()
	defer meanMat.Close()
	stdMat := gocv.NewMat()
	defer stdMat.Close()

	gocv.MeanStdDev(m.GetMat(), &meanMat, &stdMat)
	return meanMat.GetDoubleAt(0, 0), stdMat.GetDoubleAt(0, 0)
}
