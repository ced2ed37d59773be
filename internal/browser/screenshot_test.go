package browser

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	return img
}

func TestDownscale(t *testing.T) {
	t.Run("wide image keeps aspect ratio", func(t *testing.T) {
		out := Downscale(solidImage(1600, 900), 800)
		assert.Equal(t, 800, out.Bounds().Dx())
		assert.Equal(t, 450, out.Bounds().Dy())
	})

	t.Run("narrow image is untouched", func(t *testing.T) {
		img := solidImage(640, 480)
		assert.Same(t, img, Downscale(img, 800))
	})

	t.Run("zero width disables scaling", func(t *testing.T) {
		img := solidImage(1600, 900)
		assert.Same(t, img, Downscale(img, 0))
	})
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solidImage(1280, 720)))

	out := filepath.Join(t.TempDir(), "filled.png")
	size, err := WritePNG(buf.Bytes(), out, 640)
	require.NoError(t, err)
	assert.Positive(t, size)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()

	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 640, cfg.Width)
	assert.Equal(t, 360, cfg.Height)
}

func TestWritePNGRejectsGarbage(t *testing.T) {
	_, err := WritePNG([]byte("not an image"), filepath.Join(t.TempDir(), "x.png"), 800)
	assert.Error(t, err)
}
