package browser

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/nfnt/resize"
)

// Screenshot captures the current viewport and writes it as a PNG no wider
// than maxWidth. It returns the size of the written file.
func (s *RodSession) Screenshot(outputPath string, maxWidth uint) (int64, error) {
	data, err := s.page.Screenshot(false, nil)
	if err != nil {
		return 0, fmt.Errorf("capture screenshot: %w", err)
	}
	return WritePNG(data, outputPath, maxWidth)
}

// WritePNG decodes an encoded screenshot, downscales it and writes it to outputPath
func WritePNG(data []byte, outputPath string, maxWidth uint) (int64, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("decode screenshot: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if err := png.Encode(f, Downscale(img, maxWidth)); err != nil {
		return 0, err
	}

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Downscale shrinks img to maxWidth keeping the aspect ratio. Images that are
// already narrow enough, or a zero maxWidth, leave img untouched.
func Downscale(img image.Image, maxWidth uint) image.Image {
	bounds := img.Bounds()
	if maxWidth == 0 || uint(bounds.Dx()) <= maxWidth {
		return img
	}

	aspectRatio := float64(bounds.Dy()) / float64(bounds.Dx())
	height := uint(float64(maxWidth) * aspectRatio)
	return resize.Resize(maxWidth, height, img, resize.Lanczos3)
}
