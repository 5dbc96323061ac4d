package filters

import (
	"context"

	"edge-tuner/internal/models"
	"edge-tuner/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// LaplacianFilter extracts second-derivative edge strength as float32
type LaplacianFilter struct{}

func NewLaplacianFilter() *LaplacianFilter {
	return &LaplacianFilter{}
}

func (l *LaplacianFilter) Name() string {
	return "laplacian_filter"
}

func (l *LaplacianFilter) Apply(ctx context.Context, input *safe.Mat, params models.ParameterSet) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := safe.ValidateMatForOperation(input, "laplacian"); err != nil {
		return nil, err
	}

	dst := gocv.NewMat()
	gocv.Laplacian(input.GetMat(), &dst, gocv.MatTypeCV32F, params.LaplacianFilterSize, 1, 0, gocv.BorderDefault)

	return safe.Adopt(dst)
}
