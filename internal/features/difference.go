package features

import (
	"fmt"

	"edge-tuner/internal/models"
	"edge-tuner/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// Difference returns mean(|a - b|) over every pixel.
func Difference(a, b *models.FeatureMap) (float64, error) {
	if a == nil || b == nil {
		return 0, fmt.Errorf("difference: feature map is nil")
	}
	if err := safe.ValidateMatForOperation(a.Mat, "difference"); err != nil {
		return 0, err
	}
	if err := safe.ValidateMatForOperation(b.Mat, "difference"); err != nil {
		return 0, err
	}
	if !safe.SameSize(a.Mat, b.Mat) {
		return 0, fmt.Errorf("%w: %dx%d vs %dx%d", models.ErrDimensionMismatch,
			a.Width(), a.Height(), b.Width(), b.Height())
	}

	diff := gocv.NewMat()
	defer diff.Close()

	gocv.AbsDiff(a.Mat.GetMat(), b.Mat.GetMat(), &diff)
	return diff.Mean().Val1, nil
}
