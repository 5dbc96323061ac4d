// Package pipeline reads input images and writes rendered edge maps.
package pipeline

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"edge-tuner/internal/logger"
	"edge-tuner/internal/models"
	"edge-tuner/internal/opencv/conversion"
	"edge-tuner/internal/opencv/safe"

	"gocv.io/x/gocv"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// GroupSpec names a group and the image files that belong to it.
type GroupSpec struct {
	Name  string
	Paths []string
}

type Loader struct {
	logger logger.Logger
}

func NewLoader(log logger.Logger) *Loader {
	if log == nil {
		log = logger.NoOpLogger{}
	}
	return &Loader{logger: log}
}

// Load reads path as an 8-bit BGR image. It never returns a partial image.
func (l *Loader) Load(path string) (*models.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	l.logger.Debug("ImageLoader", "loading image", map[string]interface{}{
		"path":       path,
		"extension":  strings.ToLower(filepath.Ext(path)),
		"size_bytes": len(data),
	})

	return l.LoadBytes(path, data)
}

// LoadBytes decodes data with OpenCV and falls back to the Go decoders for
// formats the OpenCV build lacks.
func (l *Loader) LoadBytes(name string, data []byte) (*models.Image, error) {
	mat, format, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}

	img, err := models.NewImage(name, mat)
	if err != nil {
		mat.Close()
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}

	l.logger.Info("ImageLoader", "image loaded successfully", map[string]interface{}{
		"path":     name,
		"width":    img.Width,
		"height":   img.Height,
		"channels": img.Channels,
		"decoder":  format,
	})

	return img, nil
}

// LoadGroups loads every group in order. On error all images loaded so far
// are released.
func (l *Loader) LoadGroups(specs []GroupSpec) (models.GroupSet, error) {
	groups := make(models.GroupSet, 0, len(specs))
	for _, spec := range specs {
		g := models.Group{Name: spec.Name}
		for _, p := range spec.Paths {
			img, err := l.Load(p)
			if err != nil {
				groups = append(groups, g)
				groups.Close()
				return nil, fmt.Errorf("group %q: %w", spec.Name, err)
			}
			g.Images = append(g.Images, img)
		}
		groups = append(groups, g)
	}
	return groups, nil
}

func decode(data []byte) (*safe.Mat, string, error) {
	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err == nil && !mat.Empty() {
		sm, err := safe.Adopt(mat)
		return sm, "opencv", err
	}
	if err == nil {
		mat.Close()
	}

	img, format, stdErr := image.Decode(bytes.NewReader(data))
	if stdErr != nil {
		if err != nil {
			return nil, "", fmt.Errorf("opencv: %v, stdlib: %w", err, stdErr)
		}
		return nil, "", fmt.Errorf("unsupported image format: %w", stdErr)
	}

	sm, err := conversion.ImageToMat(img)
	return sm, format, err
}
