package filters

import (
	"context"
	"testing"

	"edge-tuner/internal/models"
	"edge-tuner/internal/opencv/safe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

// stripes builds a rows x cols gray image whose left half is lo and right half hi.
func stripes(t *testing.T, rows, cols int, lo, hi uint8) *safe.Mat {
	t.Helper()
	m := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8UC1)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := lo
			if x >= cols/2 {
				v = hi
			}
			m.SetUCharAt(y, x, v)
		}
	}
	sm, err := safe.Adopt(m)
	require.NoError(t, err)
	t.Cleanup(sm.Close)
	return sm
}

func constantFloat(t *testing.T, rows, cols int, v float32) *safe.Mat {
	t.Helper()
	m := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV32FC1)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			m.SetFloatAt(y, x, v)
		}
	}
	sm, err := safe.Adopt(m)
	require.NoError(t, err)
	t.Cleanup(sm.Close)
	return sm
}

var params = models.ParameterSet{GaussianBlurSize: 5, LaplacianFilterSize: 3}

func TestGrayscaleConverter_ReducesColor(t *testing.T) {
	bgr := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV8UC3)
	src, err := safe.Adopt(bgr)
	require.NoError(t, err)
	defer src.Close()

	out, err := NewGrayscaleConverter().Apply(context.Background(), src, params)
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, 1, out.Channels())
	assert.Equal(t, 3, out.Rows())
}

func TestStandardizer_ZeroMeanUnitVariance(t *testing.T) {
	src := stripes(t, 8, 8, 10, 250)

	out, err := NewStandardizer().Apply(context.Background(), src, params)
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, gocv.MatTypeCV32FC1, out.Type())
	mean, std := MeanStdDev(out)
	assert.InDelta(t, 0.0, mean, 1e-5)
	assert.InDelta(t, 1.0, std, 1e-5)

	lo, err := out.GetFloatAt(0, 0)
	require.NoError(t, err)
	hi, err := out.GetFloatAt(0, 7)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, lo, 1e-5)
	assert.InDelta(t, 1.0, hi, 1e-5)
}

func TestStandardizer_FlatImageFails(t *testing.T) {
	src := stripes(t, 6, 6, 128, 128)

	_, err := NewStandardizer().Apply(context.Background(), src, params)
	assert.ErrorIs(t, err, models.ErrFlatImage)
}

func TestStandardizer_RequiresSingleChannel(t *testing.T) {
	src, err := safe.NewMat(4, 4, gocv.MatTypeCV8UC3)
	require.NoError(t, err)
	defer src.Close()

	_, err = NewStandardizer().Apply(context.Background(), src, params)
	assert.Error(t, err)
}

func TestGaussianFilter_PreservesConstantImage(t *testing.T) {
	src := constantFloat(t, 10, 12, 0.5)

	out, err := NewGaussianFilter().Apply(context.Background(), src,
		models.ParameterSet{GaussianBlurSize: 21, LaplacianFilterSize: 3})
	require.NoError(t, err)
	defer out.Close()

	assert.True(t, safe.SameSize(src, out))
	v, err := out.GetFloatAt(5, 6)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, v, 1e-5)
}

func TestLaplacianFilter_ConstantImageHasNoEdges(t *testing.T) {
	src := constantFloat(t, 10, 10, 3)

	for _, k := range []int{1, 3, 5, 7, 9, 11} {
		out, err := NewLaplacianFilter().Apply(context.Background(), src,
			models.ParameterSet{GaussianBlurSize: 3, LaplacianFilterSize: k})
		require.NoError(t, err)

		assert.Equal(t, gocv.MatTypeCV32FC1, out.Type())
		v, err := out.GetFloatAt(5, 5)
		require.NoError(t, err)
		assert.InDelta(t, 0.0, v, 1e-3, "aperture %d", k)
		out.Close()
	}
}

func TestLaplacianFilter_RespondsToStep(t *testing.T) {
	src := stripes(t, 8, 8, 0, 100)
	f, err := NewStandardizer().Apply(context.Background(), src, params)
	require.NoError(t, err)
	defer f.Close()

	out, err := NewLaplacianFilter().Apply(context.Background(), f, params)
	require.NoError(t, err)
	defer out.Close()

	edge, err := out.GetFloatAt(4, 4)
	require.NoError(t, err)
	flat, err := out.GetFloatAt(4, 1)
	require.NoError(t, err)
	assert.NotZero(t, edge)
	assert.InDelta(t, 0.0, flat, 1e-5)
}

func TestSteps_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := constantFloat(t, 4, 4, 1)

	for _, step := range []interface {
		Apply(context.Context, *safe.Mat, models.ParameterSet) (*safe.Mat, error)
	}{NewGrayscaleConverter(), NewStandardizer(), NewGaussianFilter(), NewLaplacianFilter()} {
		_, err := step.Apply(ctx, src, params)
		assert.ErrorIs(t, err, context.Canceled)
	}
}
