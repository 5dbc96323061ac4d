package pipeline

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"edge-tuner/internal/logger"
	"edge-tuner/internal/opencv/conversion"
	"edge-tuner/internal/opencv/safe"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

type Saver struct {
	logger logger.Logger
}

func NewSaver(log logger.Logger) *Saver {
	if log == nil {
		log = logger.NoOpLogger{}
	}
	return &Saver{logger: log}
}

// Save encodes an 8-bit Mat to path, choosing the format from the extension.
// Unknown extensions are written as PNG.
func (s *Saver) Save(path string, mat *safe.Mat) error {
	img, err := conversion.MatToImage(mat)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	format := formatFor(path)
	s.logger.Debug("ImageSaver", "saving image", map[string]interface{}{
		"path":   path,
		"format": format,
		"width":  mat.Cols(),
		"height": mat.Rows(),
	})

	if err := encode(f, img, format); err != nil {
		f.Close()
		s.logger.Error("ImageSaver", err, map[string]interface{}{
			"format": format,
		})
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	s.logger.Info("ImageSaver", "image saved", map[string]interface{}{
		"path":   path,
		"format": format,
	})
	return nil
}

// SaveAll writes mats[i] to dir/names[i] and returns the written paths.
func (s *Saver) SaveAll(dir string, names []string, mats []*safe.Mat) ([]string, error) {
	if len(names) != len(mats) {
		return nil, fmt.Errorf("got %d names for %d images", len(names), len(mats))
	}
	paths := make([]string, 0, len(mats))
	for i, m := range mats {
		p := filepath.Join(dir, names[i])
		if err := s.Save(p, m); err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func formatFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".bmp":
		return "bmp"
	case ".tif", ".tiff":
		return "tiff"
	default:
		return "png"
	}
}

func encode(f *os.File, img image.Image, format string) error {
	switch format {
	case "jpeg":
		return jpeg.Encode(f, img, &jpeg.Options{Quality: 95})
	case "bmp":
		return bmp.Encode(f, img)
	case "tiff":
		return tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return png.Encode(f, img)
	}
}
