package features

import (
	"fmt"

	"edge-tuner/internal/models"
	"edge-tuner/internal/opencv/conversion"
	"edge-tuner/internal/opencv/safe"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Distribution summarizes the pixel values of an image or feature map.
type Distribution struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

func (d Distribution) String() string {
	return fmt.Sprintf("Mean: %g; Std: %g; Min: %g; Max: %g", d.Mean, d.StdDev, d.Min, d.Max)
}

// Describe reports the population statistics of a feature map.
func Describe(m *models.FeatureMap) (Distribution, error) {
	v, err := values(m)
	if err != nil {
		return Distribution{}, err
	}
	return describeValues(v), nil
}

// DescribeImage reports the statistics of img's grayscale reduction.
func DescribeImage(img *models.Image) (Distribution, error) {
	gray, err := conversion.ConvertToGrayscale(img.Mat)
	if err != nil {
		return Distribution{}, err
	}
	defer gray.Close()

	f := gocv.NewMat()
	defer f.Close()
	src := gray.GetMat()
	src.ConvertTo(&f, gocv.MatTypeCV32F)

	raw, err := f.DataPtrFloat32()
	if err != nil {
		return Distribution{}, err
	}
	v := make([]float64, len(raw))
	for i, p := range raw {
		v[i] = float64(p)
	}
	return describeValues(v), nil
}

func describeValues(v []float64) Distribution {
	mean, std := stat.PopMeanStdDev(v, nil)
	return Distribution{
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(v),
		Max:    floats.Max(v),
	}
}

// values copies the map's pixels into a float64 slice.
func values(m *models.FeatureMap) ([]float64, error) {
	if m == nil {
		return nil, fmt.Errorf("feature map is nil")
	}
	if err := safe.ValidateMatForOperation(m.Mat, "read values"); err != nil {
		return nil, err
	}

	src := m.Mat.GetMat()
	if !src.IsContinuous() {
		return nil, fmt.Errorf("feature map is not continuous")
	}
	raw, err := src.DataPtrFloat32()
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = float64(v)
	}
	return out, nil
}
