package conversion

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageToMat_RGBABecomesBGR(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 5, 3))
	img.SetRGBA(1, 2, color.RGBA{R: 200, G: 100, B: 50, A: 255})

	m, err := ImageToMat(img)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, 3, m.Rows())
	assert.Equal(t, 5, m.Cols())
	assert.Equal(t, 3, m.Channels())

	raw := m.GetMat()
	assert.Equal(t, uint8(50), raw.GetUCharAt3(2, 1, 0))
	assert.Equal(t, uint8(100), raw.GetUCharAt3(2, 1, 1))
	assert.Equal(t, uint8(200), raw.GetUCharAt3(2, 1, 2))
}

func TestImageToMat_GrayStaysSingleChannel(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	img.SetGray(3, 0, color.Gray{Y: 77})

	m, err := ImageToMat(img)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, 1, m.Channels())
	v, err := m.GetUCharAt(0, 3)
	require.NoError(t, err)
	assert.Equal(t, uint8(77), v)
}

func TestImageToMat_Nil(t *testing.T) {
	_, err := ImageToMat(nil)
	assert.Error(t, err)
}

func TestConvertToGrayscale(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 90, G: 90, B: 90, A: 255})
		}
	}
	m, err := ImageToMat(img)
	require.NoError(t, err)
	defer m.Close()

	gray, err := ConvertToGrayscale(m)
	require.NoError(t, err)
	defer gray.Close()

	assert.Equal(t, 1, gray.Channels())
	v, err := gray.GetUCharAt(1, 1)
	require.NoError(t, err)
	assert.Equal(t, uint8(90), v)

	again, err := ConvertToGrayscale(gray)
	require.NoError(t, err)
	defer again.Close()
	assert.Equal(t, 1, again.Channels())
}

func TestMatToImage_RoundTripsGray(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 2))
	img.SetGray(2, 1, color.Gray{Y: 250})

	m, err := ImageToMat(img)
	require.NoError(t, err)
	defer m.Close()

	out, err := MatToImage(m)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), out.Bounds())
	r, _, _, _ := out.At(2, 1).RGBA()
	assert.Equal(t, uint32(250), r>>8)
}
