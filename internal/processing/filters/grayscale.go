package filters

import (
	"context"

	"edge-tuner/internal/models"
	"edge-tuner/internal/opencv/conversion"
	"edge-tuner/internal/opencv/safe"
)

// GrayscaleConverter collapses BGR/BGRA input to one luminance channel
type GrayscaleConverter struct{}

func NewGrayscaleConverter() *GrayscaleConverter {
	return &GrayscaleConverter{}
}

func (g *GrayscaleConverter) Name() string {
	return "grayscale_converter"
}

// Apply clones single-channel input unchanged.
func (g *GrayscaleConverter) Apply(ctx context.Context, input *safe.Mat, params models.ParameterSet) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	return conversion.ConvertToGrayscale(input)
}
