// Package sampler draws random normalization parameters.
package sampler

import (
	"fmt"
	"math/rand/v2"

	"edge-tuner/internal/models"
)

// Bounds are inclusive ranges for k, where each kernel size is 2k+1.
type Bounds struct {
	BlurKMin      int `yaml:"blur_k_min"`
	BlurKMax      int `yaml:"blur_k_max"`
	LaplacianKMin int `yaml:"laplacian_k_min"`
	LaplacianKMax int `yaml:"laplacian_k_max"`
}

// DefaultBounds give blur sizes 3..21 and Laplacian apertures 3..11.
func DefaultBounds() Bounds {
	return Bounds{BlurKMin: 1, BlurKMax: 10, LaplacianKMin: 1, LaplacianKMax: 5}
}

func (b Bounds) Validate() error {
	if b.BlurKMin < 1 || b.BlurKMax < b.BlurKMin {
		return models.NewValidationError("blur_k", fmt.Sprintf("[%d,%d]", b.BlurKMin, b.BlurKMax),
			"range must be non-empty with min >= 1")
	}
	if b.LaplacianKMin < 1 || b.LaplacianKMax < b.LaplacianKMin {
		return models.NewValidationError("laplacian_k", fmt.Sprintf("[%d,%d]", b.LaplacianKMin, b.LaplacianKMax),
			"range must be non-empty with min >= 1")
	}
	if 2*b.LaplacianKMax+1 > models.MaxLaplacianFilterSize {
		return models.NewValidationError("laplacian_k_max", b.LaplacianKMax,
			fmt.Sprintf("aperture 2k+1 must be <= %d", models.MaxLaplacianFilterSize))
	}
	return nil
}

// Sampler owns its random source and must not be shared between goroutines.
type Sampler struct {
	bounds Bounds
	rng    *rand.Rand
}

// New returns a sampler whose sequence is fully determined by seed.
func New(seed uint64, bounds Bounds) (*Sampler, error) {
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	return &Sampler{
		bounds: bounds,
		rng:    rand.New(rand.NewPCG(seed, seed^0xda3e39cb94b95bdb)),
	}, nil
}

// Sample draws both kernel sizes independently and uniformly over their k ranges.
func (s *Sampler) Sample() models.ParameterSet {
	return models.ParameterSet{
		GaussianBlurSize:    2*s.between(s.bounds.BlurKMin, s.bounds.BlurKMax) + 1,
		LaplacianFilterSize: 2*s.between(s.bounds.LaplacianKMin, s.bounds.LaplacianKMax) + 1,
	}
}

func (s *Sampler) Bounds() Bounds {
	return s.bounds
}

func (s *Sampler) between(lo, hi int) int {
	return lo + s.rng.IntN(hi-lo+1)
}
