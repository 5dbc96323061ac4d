package report

import (
	"errors"
	"path/filepath"
	"testing"

	"edge-tuner/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_OrdersByTrial(t *testing.T) {
	h := NewHistory()
	p := models.ParameterSet{GaussianBlurSize: 3, LaplacianFilterSize: 3}

	h.TrialCompleted(2, p, models.CostReport{Cost: -1})
	h.TrialCompleted(0, p, models.CostReport{Cost: -3})
	h.TrialFailed(1, p, errors.New("flat"))
	h.TrialCompleted(3, p, models.CostReport{Cost: -5})

	points := h.Points()
	require.Len(t, points, 3)
	assert.Equal(t, []int{0, 2, 3}, []int{points[0].Trial, points[1].Trial, points[2].Trial})
	assert.Equal(t, []float64{-3, -3, -5}, h.BestSoFar())
}

func TestHistory_Plot(t *testing.T) {
	h := NewHistory()
	p := models.ParameterSet{GaussianBlurSize: 5, LaplacianFilterSize: 3}
	for i, c := range []float64{-2, -4, -1, -6} {
		h.TrialCompleted(i, p, models.CostReport{Cost: c})
	}

	path := filepath.Join(t.TempDir(), "cost.png")
	require.NoError(t, h.Plot("search", path))
	assert.FileExists(t, path)

	assert.Error(t, NewHistory().Plot("empty", path))
}
