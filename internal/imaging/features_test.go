package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformImage(w, h int, v uint8) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func TestAnalyzeImage(t *testing.T) {
	t.Run("uniform bright image", func(t *testing.T) {
		f := AnalyzeImage(uniformImage(64, 64, 220))
		assert.InDelta(t, 220, f.Brightness, 2)
		assert.InDelta(t, 0, f.Contrast, 1)
		assert.InDelta(t, 0, f.EdgeDensity, 1e-9)
		assert.InDelta(t, 0, f.Asymmetry, 1e-9)
	})

	t.Run("half dark half bright is asymmetric and edgy", func(t *testing.T) {
		img := image.NewGray(image.Rect(0, 0, 64, 64))
		for y := 0; y < 64; y++ {
			for x := 0; x < 64; x++ {
				if x < 32 {
					img.SetGray(x, y, color.Gray{Y: 20})
				} else {
					img.SetGray(x, y, color.Gray{Y: 230})
				}
			}
		}
		f := AnalyzeImage(img)
		assert.Greater(t, f.Asymmetry, 30.0)
		assert.Greater(t, f.Contrast, 50.0)
	})
}

func TestQuery(t *testing.T) {
	t.Run("always opens with chest X-ray", func(t *testing.T) {
		q := Features{Brightness: 120, Contrast: 30, EdgeDensity: 0.05}.Query()
		assert.True(t, strings.HasPrefix(q, "chest X-ray"))
	})

	t.Run("bright smooth image reads as hyperlucent", func(t *testing.T) {
		q := Features{Brightness: 200, Contrast: 10, EdgeDensity: 0.01}.Query()
		assert.Contains(t, q, "hyperlucent")
		assert.Contains(t, q, "possible pneumothorax or emphysema")
	})

	t.Run("dark unilateral image suggests pneumonia", func(t *testing.T) {
		q := Features{Brightness: 60, Contrast: 30, EdgeDensity: 0.05, Asymmetry: 40}.Query()
		assert.Contains(t, q, "dark opacity")
		assert.Contains(t, q, "unilateral opacity")
		assert.Contains(t, q, "possible pneumonia or atelectasis")
	})

	t.Run("calm clear image reads as normal", func(t *testing.T) {
		q := Features{Brightness: 120, Contrast: 10, EdgeDensity: 0.01}.Query()
		assert.Contains(t, q, "clear lung fields")
		assert.Contains(t, q, "smooth lung fields")
		assert.Contains(t, q, "normal findings")
	})

	t.Run("busy image suggests nodule or mass", func(t *testing.T) {
		q := Features{Brightness: 120, Contrast: 30, EdgeDensity: 0.2}.Query()
		assert.Contains(t, q, "structural abnormality")
		assert.Contains(t, q, "possible nodule or mass")
	})
}

func TestAnalyze(t *testing.T) {
	t.Run("decodes png files", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, uniformImage(32, 32, 128)))
		path := filepath.Join(t.TempDir(), "xray.png")
		require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

		f, err := Analyze(path)
		require.NoError(t, err)
		assert.InDelta(t, 128, f.Brightness, 2)
	})

	t.Run("missing file errors", func(t *testing.T) {
		_, err := Analyze(filepath.Join(t.TempDir(), "absent.png"))
		assert.Error(t, err)
	})

	t.Run("non-image file errors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notes.txt")
		require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))
		_, err := Analyze(path)
		assert.Error(t, err)
	})
}
