// Package imagetest builds deterministic synthetic images for tests.
package imagetest

import (
	"image"
	"image/color"
	"math"
	"math/rand/v2"
	"testing"

	"edge-tuner/internal/models"
	"edge-tuner/internal/opencv/conversion"

	"github.com/stretchr/testify/require"
)

// Width and Height are the default test image dimensions.
const (
	Width  = 48
	Height = 40
)

// FromImage converts img into a models.Image that is closed at test cleanup.
func FromImage(t testing.TB, name string, img image.Image) *models.Image {
	t.Helper()
	mat, err := conversion.ImageToMat(img)
	require.NoError(t, err)
	out, err := models.NewImage(name, mat)
	require.NoError(t, err)
	t.Cleanup(out.Close)
	return out
}

// Checkerboard draws cell-sized blue/yellow squares.
func Checkerboard(t testing.TB, name string, cell int) *models.Image {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			c := color.RGBA{R: 20, G: 40, B: 200, A: 255}
			if (x/cell+y/cell)%2 == 0 {
				c = color.RGBA{R: 230, G: 220, B: 30, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return FromImage(t, name, img)
}

// Disc draws a bright disc of the given radius on a dark background.
func Disc(t testing.TB, name string, radius float64) *models.Image {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	cx, cy := float64(Width)/2, float64(Height)/2
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			c := color.RGBA{R: 15, G: 15, B: 15, A: 255}
			if math.Hypot(float64(x)-cx, float64(y)-cy) <= radius {
				c = color.RGBA{R: 240, G: 200, B: 180, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return FromImage(t, name, img)
}

// Noise fills a gray image with seeded uniform noise.
func Noise(t testing.TB, name string, seed uint64) *models.Image {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	img := image.NewGray(image.Rect(0, 0, Width, Height))
	for i := range img.Pix {
		img.Pix[i] = uint8(r.IntN(256))
	}
	return FromImage(t, name, img)
}

// Flat fills an image with a single gray value.
func Flat(t testing.TB, name string, v uint8) *models.Image {
	img := image.NewGray(image.Rect(0, 0, Width, Height))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return FromImage(t, name, img)
}

// Sized returns a horizontal gradient of arbitrary size.
func Sized(t testing.TB, name string, w, h int) *models.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x * 255 / max(1, w-1))})
		}
	}
	return FromImage(t, name, img)
}

// DistinctPairs returns two groups, each holding an image and its exact copy.
func DistinctPairs(t testing.TB) models.GroupSet {
	return models.GroupSet{
		{Name: "checker", Images: []*models.Image{Checkerboard(t, "checker-1", 6), Checkerboard(t, "checker-2", 6)}},
		{Name: "disc", Images: []*models.Image{Disc(t, "disc-1", 12), Disc(t, "disc-2", 12)}},
	}
}
