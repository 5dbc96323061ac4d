package filters

import (
	"context"
	"image"

	"edge-tuner/internal/models"
	"edge-tuner/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// GaussianFilter smooths with a square kernel of side GaussianBlurSize.
// Sigma is left at 0 so OpenCV derives it from the kernel size.
type GaussianFilter struct{}

func NewGaussianFilter() *GaussianFilter {
	return &GaussianFilter{}
}

func (g *GaussianFilter) Name() string {
	return "gaussian_filter"
}

func (g *GaussianFilter) Apply(ctx context.Context, input *safe.Mat, params models.ParameterSet) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := safe.ValidateMatForOperation(input, "gaussian blur"); err != nil {
		return nil, err
	}

	k := params.GaussianBlurSize
	dst := gocv.NewMat()
	gocv.GaussianBlur(input.GetMat(), &dst, image.Point{X: k, Y: k}, 0, 0, gocv.BorderDefault)

	return safe.Adopt(dst)
}
