package models

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidParameters  = errors.New("invalid parameters")
	ErrDegenerateGroupSet = errors.New("degenerate group set")
	ErrDimensionMismatch  = errors.New("dimension mismatch")
	ErrFlatImage          = errors.New("flat image has zero standard deviation")
	ErrNoSuccessfulTrials = errors.New("no trial completed successfully")
)

// MaxLaplacianFilterSize is the largest aperture OpenCV's Laplacian accepts.
const MaxLaplacianFilterSize = 31

// ParameterSet holds the kernel sizes of the normalization pipeline.
type ParameterSet struct {
	GaussianBlurSize    int `json:"gaussian_blur_size" yaml:"gaussian_blur_size"`
	LaplacianFilterSize int `json:"laplacian_filter_size" yaml:"laplacian_filter_size"`
}

func (p ParameterSet) Validate() error {
	if p.GaussianBlurSize < 1 || p.GaussianBlurSize%2 == 0 {
		return NewValidationError("gaussian_blur_size", p.GaussianBlurSize, "must be odd and >= 1")
	}
	if p.LaplacianFilterSize < 1 || p.LaplacianFilterSize%2 == 0 {
		return NewValidationError("laplacian_filter_size", p.LaplacianFilterSize, "must be odd and >= 1")
	}
	if p.LaplacianFilterSize > MaxLaplacianFilterSize {
		return NewValidationError("laplacian_filter_size", p.LaplacianFilterSize,
			fmt.Sprintf("must be <= %d", MaxLaplacianFilterSize))
	}
	return nil
}

func (p ParameterSet) String() string {
	return fmt.Sprintf("blur=%d laplacian=%d", p.GaussianBlurSize, p.LaplacianFilterSize)
}

// CostReport is the outcome of evaluating one ParameterSet against a GroupSet.
type CostReport struct {
	Parameters ParameterSet  `json:"parameters"`
	IntraAvg   float64       `json:"intra_avg"`
	InterAvg   float64       `json:"inter_avg"`
	Cost       float64       `json:"cost"`
	IntraPairs int           `json:"intra_pairs"`
	InterPairs int           `json:"inter_pairs"`
	Duration   time.Duration `json:"duration"`
}

// Cost combines the two averages as intra² - inter. Lower is better.
func Cost(intraAvg, interAvg float64) float64 {
	return intraAvg*intraAvg - interAvg
}

// ValidationError represents a parameter validation error
type ValidationError struct {
	Parameter string
	Value     interface{}
	Message   string
}

func NewValidationError(parameter string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Parameter: parameter,
		Value:     value,
		Message:   message,
	}
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for parameter '%s' with value '%v': %s",
		ve.Parameter, ve.Value, ve.Message)
}

func (ve *ValidationError) Unwrap() error {
	return ErrInvalidParameters
}
