package pipeline

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"edge-tuner/internal/opencv/conversion"
	"edge-tuner/internal/opencv/safe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grayRamp(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x*7 + y*13) % 256)})
		}
	}
	return img
}

func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func assertGrayEqual(t *testing.T, want *image.Gray, got *safe.Mat) {
	t.Helper()
	gray, err := conversion.ConvertToGrayscale(got)
	require.NoError(t, err)
	defer gray.Close()

	b := want.Bounds()
	require.Equal(t, b.Dx(), gray.Cols())
	require.Equal(t, b.Dy(), gray.Rows())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			v, err := gray.GetUCharAt(y, x)
			require.NoError(t, err)
			require.Equal(t, want.GrayAt(x, y).Y, v, "pixel %d,%d", x, y)
		}
	}
}

func TestLoader_Load(t *testing.T) {
	src := grayRamp(24, 16)
	path := writePNG(t, t.TempDir(), "ramp.png", src)

	img, err := NewLoader(nil).Load(path)
	require.NoError(t, err)
	defer img.Close()

	assert.Equal(t, path, img.Name)
	assert.Equal(t, 24, img.Width)
	assert.Equal(t, 16, img.Height)
	assert.Equal(t, 3, img.Channels)
	assertGrayEqual(t, src, img.Mat)
}

func TestLoader_Errors(t *testing.T) {
	l := NewLoader(nil)

	_, err := l.Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)

	_, err = l.LoadBytes("garbage", []byte("definitely not an image"))
	assert.Error(t, err)
}

func TestLoader_LoadGroups(t *testing.T) {
	dir := t.TempDir()
	a := writePNG(t, dir, "a.png", grayRamp(8, 8))
	b := writePNG(t, dir, "b.png", grayRamp(8, 8))

	groups, err := NewLoader(nil).LoadGroups([]GroupSpec{
		{Name: "one", Paths: []string{a, b}},
		{Name: "two", Paths: []string{b, a}},
	})
	require.NoError(t, err)
	defer groups.Close()

	require.Len(t, groups, 2)
	assert.Equal(t, "two", groups[1].Name)
	assert.Equal(t, 4, groups.ImageCount())
	assert.NoError(t, groups.Validate())

	_, err = NewLoader(nil).LoadGroups([]GroupSpec{
		{Name: "one", Paths: []string{a, b}},
		{Name: "broken", Paths: []string{a, filepath.Join(dir, "nope.png")}},
	})
	assert.ErrorContains(t, err, `group "broken"`)
}

func TestSaver_RoundTrip(t *testing.T) {
	src := grayRamp(20, 12)
	mat, err := conversion.ImageToMat(src)
	require.NoError(t, err)
	defer mat.Close()

	dir := t.TempDir()
	paths, err := NewSaver(nil).SaveAll(filepath.Join(dir, "out"),
		[]string{"edges.png", "edges.bmp", "edges.tiff", "edges.unknown"},
		[]*safe.Mat{mat, mat, mat, mat})
	require.NoError(t, err)
	require.Len(t, paths, 4)

	loader := NewLoader(nil)
	for _, p := range paths {
		img, err := loader.Load(p)
		require.NoError(t, err, p)
		assertGrayEqual(t, src, img.Mat)
		img.Close()
	}
}

func TestSaver_Errors(t *testing.T) {
	s := NewSaver(nil)

	_, err := s.SaveAll(t.TempDir(), []string{"a.png"}, nil)
	assert.Error(t, err)

	err = s.Save(filepath.Join(t.TempDir(), "nil.png"), nil)
	assert.Error(t, err)
}

func TestFormatFor(t *testing.T) {
	tests := map[string]string{
		"a.JPG":  "jpeg",
		"a.jpeg": "jpeg",
		"a.bmp":  "bmp",
		"a.tif":  "tiff",
		"a.png":  "png",
		"a":      "png",
	}
	for in, want := range tests {
		assert.Equal(t, want, formatFor(in), in)
	}
}
