package conversion

import (
	"fmt"
	"image"

	"edge-tuner/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// ConvertToGrayscale converts multi-channel images to single-channel grayscale
func ConvertToGrayscale(src *safe.Mat) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "grayscale conversion"); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if src.Channels() == 1 {
		return src.Clone()
	}

	dst := gocv.NewMat()
	srcMat := src.GetMat()

	switch src.Channels() {
	case 3:
		gocv.CvtColor(srcMat, &dst, gocv.ColorBGRToGray)
	case 4:
		gocv.CvtColor(srcMat, &dst, gocv.ColorBGRAToGray)
	default:
		dst.Close()
		return nil, fmt.Errorf("unsupported channel count: %d", src.Channels())
	}

	return safe.Adopt(dst)
}

// ImageToMat converts a decoded Go image into an 8-bit Mat. Gray images stay
// single-channel, everything else becomes BGR.
func ImageToMat(img image.Image) (*safe.Mat, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}

	bounds := img.Bounds()
	if err := safe.ValidateDimensions(bounds.Dx(), bounds.Dy(), "image to Mat conversion"); err != nil {
		return nil, err
	}

	var (
		mat gocv.Mat
		err error
	)
	switch typedImg := img.(type) {
	case *image.Gray:
		mat, err = gocv.ImageGrayToMatGray(typedImg)
	default:
		mat, err = gocv.ImageToMatRGB(img)
	}
	if err != nil {
		return nil, fmt.Errorf("image to Mat conversion failed: %w", err)
	}

	return safe.Adopt(mat)
}

// MatToImage converts an 8-bit Mat back to a Go image
func MatToImage(src *safe.Mat) (image.Image, error) {
	if err := safe.ValidateMatForOperation(src, "Mat to image conversion"); err != nil {
		return nil, err
	}
	if err := safe.ValidateSourceType(src.Type(), "Mat to image conversion"); err != nil {
		return nil, err
	}

	return src.GetMat().ToImage()
}
