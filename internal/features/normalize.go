// Package features turns images into comparable edge maps and scores them.
package features

import (
	"context"
	"fmt"

	"edge-tuner/internal/models"
	"edge-tuner/internal/processing/chain"
	"edge-tuner/internal/processing/filters"
)

// pipeline is stateless and shared; each Execute allocates its own Mats.
var pipeline = chain.NewProcessingChain(
	filters.NewGrayscaleConverter(),
	filters.NewStandardizer(),
	filters.NewGaussianFilter(),
	filters.NewLaplacianFilter(),
)

// StepNames lists the pipeline stages in execution order.
func StepNames() []string {
	return pipeline.GetStepNames()
}

// Normalize reduces img to gray, standardizes it, blurs it and applies a
// Laplacian. The result is owned by the caller.
func Normalize(ctx context.Context, img *models.Image, params models.ParameterSet) (*models.FeatureMap, error) {
	if img == nil {
		return nil, fmt.Errorf("normalize: image is nil")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	out, err := pipeline.Execute(ctx, img.Mat, params)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", img.Name, err)
	}

	return &models.FeatureMap{Mat: out}, nil
}
