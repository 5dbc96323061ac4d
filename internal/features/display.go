package features

import (
	"fmt"
	"math"

	"edge-tuner/internal/models"
	"edge-tuner/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// ForDisplay linearly rescales a batch of feature maps to 8-bit using the
// joint min/max of the whole batch, so maps stay visually comparable.
// A batch with no spread maps to all zeros.
func ForDisplay(maps []*models.FeatureMap) ([]*safe.Mat, error) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, m := range maps {
		if m == nil {
			return nil, fmt.Errorf("display map #%d: feature map is nil", i)
		}
		if err := safe.ValidateMatForOperation(m.Mat, "display"); err != nil {
			return nil, fmt.Errorf("display map #%d: %w", i, err)
		}
		if m.Mat.Channels() != 1 {
			return nil, fmt.Errorf("display map #%d: expected 1 channel, got %d", i, m.Mat.Channels())
		}
		minVal, maxVal, _, _ := gocv.MinMaxLoc(m.Mat.GetMat())
		lo = math.Min(lo, float64(minVal))
		hi = math.Max(hi, float64(maxVal))
	}

	alpha, beta := 0.0, 0.0
	if hi > lo {
		alpha = 255 / (hi - lo)
		beta = -lo * alpha
	}

	out := make([]*safe.Mat, 0, len(maps))
	for _, m := range maps {
		dst := gocv.NewMat()
		src := m.Mat.GetMat()
		src.ConvertToWithParams(&dst, gocv.MatTypeCV8U, float32(alpha), float32(beta))

		sm, err := safe.Adopt(dst)
		if err != nil {
			for _, done := range out {
				done.Close()
			}
			return nil, err
		}
		out = append(out, sm)
	}
	return out, nil
}
