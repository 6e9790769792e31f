package feature

import (
	"fmt"
	"image"
	"math"

	"github.com/xmodal/xmodal/dsp"
)

// maxSampleGrid bounds the per-axis pixel samples so large images stay cheap
const maxSampleGrid = 256

// ExtractImage reduces a decoded image to a feature vector: dominant hue,
// mean saturation and brightness, brightness contrast, and edge density over
// a subsampled luminance grid.
func ExtractImage(img image.Image) (Vector, error) {
	if img == nil {
		return Vector{}, fmt.Errorf("nil image")
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return Vector{}, fmt.Errorf("empty image bounds %v", bounds)
	}

	stepX := bounds.Dx() / maxSampleGrid
	if stepX < 1 {
		stepX = 1
	}
	stepY := bounds.Dy() / maxSampleGrid
	if stepY < 1 {
		stepY = 1
	}

	var (
		// Hue is circular, so average it as a unit vector
		hueSin, hueCos float64
		satSum         float64
		brights        []float64
		luma           [][]float64
	)

	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		row := make([]float64, 0, bounds.Dx()/stepX+1)
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			r, g, b, _ := img.At(x, y).RGBA()
			rf := float64(r) / 65535.0
			gf := float64(g) / 65535.0
			bf := float64(b) / 65535.0

			h, s, v := rgbToHSV(rf, gf, bf)
			rad := h * math.Pi / 180.0
			hueSin += math.Sin(rad)
			hueCos += math.Cos(rad)
			satSum += s
			brights = append(brights, v)

			row = append(row, 0.299*rf+0.587*gf+0.114*bf)
		}
		luma = append(luma, row)
	}

	n := float64(len(brights))
	hue := math.Atan2(hueSin/n, hueCos/n) * 180.0 / math.Pi
	if hue < 0 {
		hue += 360.0
	}
	// The degree/radian round trip leaves exact hues a few ULPs shy of the
	// true angle, which would land wheel lookups one step low
	hue = math.Round(hue*1e9) / 1e9
	// Guard the half-open [0, 360) domain against rounding
	if hue >= 360.0 {
		hue = 0.0
	}

	values := map[Metric]float64{
		MetricHue:         hue,
		MetricSaturation:  dsp.Clamp(satSum/n, 0, 1),
		MetricBrightness:  dsp.Clamp(dsp.Mean(brights), 0, 1),
		MetricContrast:    dsp.Clamp(2.0*dsp.StdDev(brights), 0, 1),
		MetricEdgeDensity: edgeDensity(luma),
	}
	return NewVector(ModalityImage, values)
}

// rgbToHSV converts normalized RGB to HSV with hue in degrees
func rgbToHSV(r, g, b float64) (h, s, v float64) {
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	delta := max - min

	v = max
	if max > 0 {
		s = delta / max
	}

	if delta == 0 {
		return 0, s, v
	}
	switch max {
	case r:
		h = 60.0 * math.Mod((g-b)/delta, 6.0)
	case g:
		h = 60.0 * ((b-r)/delta + 2.0)
	default:
		h = 60.0 * ((r-g)/delta + 4.0)
	}
	if h < 0 {
		h += 360.0
	}
	return h, s, v
}

// edgeDensity is the mean gradient magnitude of the luminance grid, clamped
// to [0, 1]. A flat image scores 0, dense texture approaches 1.
func edgeDensity(luma [][]float64) float64 {
	if len(luma) < 2 {
		return 0.0
	}

	sum := 0.0
	count := 0
	for y := 1; y < len(luma); y++ {
		row, prev := luma[y], luma[y-1]
		for x := 1; x < len(row) && x < len(prev); x++ {
			dx := row[x] - row[x-1]
			dy := row[x] - prev[x]
			sum += math.Sqrt(dx*dx + dy*dy)
			count++
		}
	}
	if count == 0 {
		return 0.0
	}
	// Gradients rarely exceed 0.25 per sampled step; scale before clamping
	return dsp.Clamp(4.0*sum/float64(count), 0, 1)
}
