package models

import (
	"fmt"

	"edge-tuner/internal/opencv/safe"
)

// Image is an 8-bit pixel grid (1, 3 or 4 channels in BGR/BGRA order)
// handed to the core by a loader. The core never mutates it.
type Image struct {
	Name     string
	Mat      *safe.Mat
	Width    int
	Height   int
	Channels int
}

// NewImage takes ownership of mat.
func NewImage(name string, mat *safe.Mat) (*Image, error) {
	if err := safe.ValidateMatForOperation(mat, "image"); err != nil {
		return nil, err
	}
	if err := safe.ValidateSourceType(mat.Type(), "image"); err != nil {
		return nil, err
	}
	if err := safe.ValidateDimensions(mat.Cols(), mat.Rows(), "image"); err != nil {
		return nil, err
	}

	return &Image{
		Name:     name,
		Mat:      mat,
		Width:    mat.Cols(),
		Height:   mat.Rows(),
		Channels: mat.Channels(),
	}, nil
}

func (i *Image) String() string {
	return fmt.Sprintf("%s (%dx%dx%d)", i.Name, i.Width, i.Height, i.Channels)
}

func (i *Image) Close() {
	if i != nil && i.Mat != nil {
		i.Mat.Close()
	}
}

// FeatureMap is the single-channel float32 edge map derived from an Image.
type FeatureMap struct {
	Mat *safe.Mat
}

func (f *FeatureMap) Width() int {
	return f.Mat.Cols()
}

func (f *FeatureMap) Height() int {
	return f.Mat.Rows()
}

func (f *FeatureMap) Close() {
	if f != nil && f.Mat != nil {
		f.Mat.Close()
	}
}

// CloseAll releases every map, skipping nils.
func CloseAll(maps []*FeatureMap) {
	for _, m := range maps {
		m.Close()
	}
}
