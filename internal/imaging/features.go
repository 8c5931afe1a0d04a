// Package imaging derives coarse pixel statistics from a chest X-ray image
// and turns them into a retrieval query string. No trained model is
// involved; the statistics only steer text retrieval.
package imaging

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"strings"
)

// analysisSize is the square edge length images are resampled to before
// statistics are computed.
const analysisSize = 224

// Features are grayscale statistics over the resampled image. Brightness and
// Asymmetry are in [0, 255]; EdgeDensity is the fraction of strong-gradient
// pixels in [0, 1].
type Features struct {
	Brightness  float64
	Contrast    float64
	EdgeDensity float64
	Asymmetry   float64
}

// Analyze decodes the image file at path and computes its features.
func Analyze(path string) (Features, error) {
	f, err := os.Open(path)
	if err != nil {
		return Features{}, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return Features{}, fmt.Errorf("decoding image %s: %w", path, err)
	}
	return AnalyzeImage(img), nil
}

// AnalyzeImage computes features over an already-decoded image.
func AnalyzeImage(img image.Image) Features {
	px := resampleGray(img)

	var sum float64
	for _, v := range px {
		sum += float64(v)
	}
	n := float64(len(px))
	mean := sum / n

	var variance float64
	for _, v := range px {
		d := float64(v) - mean
		variance += d * d
	}
	contrast := math.Sqrt(variance / n)

	return Features{
		Brightness:  mean,
		Contrast:    contrast,
		EdgeDensity: edgeDensity(px),
		Asymmetry:   lungFieldAsymmetry(px),
	}
}

// Query renders the features as a retrieval query string. It always opens
// with "chest X-ray"; the remaining phrases come from a fixed threshold
// table over the computed statistics.
func (f Features) Query() string {
	parts := []string{"chest X-ray"}

	if f.Brightness < 80 {
		parts = append(parts, "dark opacity")
	} else if f.Brightness > 150 {
		parts = append(parts, "hyperlucent")
	}

	if f.Contrast < 20 {
		parts = append(parts, "clear lung fields")
	} else if f.Contrast > 50 {
		parts = append(parts, "high contrast abnormality")
	}

	if f.EdgeDensity > 0.1 {
		parts = append(parts, "structural abnormality")
	} else if f.EdgeDensity < 0.02 {
		parts = append(parts, "smooth lung fields")
	}

	if f.Asymmetry > 30 {
		parts = append(parts, "unilateral opacity")
	}

	switch {
	case has(parts, "dark opacity") && has(parts, "unilateral opacity"):
		parts = append(parts, "possible pneumonia or atelectasis")
	case has(parts, "hyperlucent"):
		parts = append(parts, "possible pneumothorax or emphysema")
	case has(parts, "structural abnormality"):
		parts = append(parts, "possible nodule or mass")
	case has(parts, "clear lung fields") && has(parts, "smooth lung fields"):
		parts = append(parts, "normal findings")
	}

	return strings.Join(parts, " ")
}

func has(parts []string, s string) bool {
	for _, p := range parts {
		if p == s {
			return true
		}
	}
	return false
}

// resampleGray nearest-neighbor resamples the image to analysisSize² and
// converts it to 8-bit luma, row-major.
func resampleGray(img image.Image) []uint8 {
	b := img.Bounds()
	out := make([]uint8, analysisSize*analysisSize)
	for y := 0; y < analysisSize; y++ {
		sy := b.Min.Y + y*b.Dy()/analysisSize
		for x := 0; x < analysisSize; x++ {
			sx := b.Min.X + x*b.Dx()/analysisSize
			r, g, bl, _ := img.At(sx, sy).RGBA()
			// ITU-R BT.601 luma over 16-bit channels.
			luma := (299*r + 587*g + 114*bl) / 1000
			out[y*analysisSize+x] = uint8(luma >> 8)
		}
	}
	return out
}

// edgeDensity is the fraction of pixels whose Sobel gradient magnitude
// exceeds a fixed threshold.
func edgeDensity(px []uint8) float64 {
	const threshold = 128.0
	edges := 0
	at := func(x, y int) float64 { return float64(px[y*analysisSize+x]) }
	for y := 1; y < analysisSize-1; y++ {
		for x := 1; x < analysisSize-1; x++ {
			gx := at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1)
			gy := at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1)
			if math.Hypot(gx, gy) > threshold {
				edges++
			}
		}
	}
	return float64(edges) / float64(analysisSize*analysisSize)
}

// lungFieldAsymmetry compares mean intensity of the left and right halves,
// each averaged over its upper and lower quadrants.
func lungFieldAsymmetry(px []uint8) float64 {
	mid := analysisSize / 2
	quadrant := func(x0, y0 int) float64 {
		var sum float64
		for y := y0; y < y0+mid; y++ {
			for x := x0; x < x0+mid; x++ {
				sum += float64(px[y*analysisSize+x])
			}
		}
		return sum / float64(mid*mid)
	}
	left := (quadrant(0, 0) + quadrant(0, mid)) / 2
	right := (quadrant(mid, 0) + quadrant(mid, mid)) / 2
	return math.Abs(left - right)
}
