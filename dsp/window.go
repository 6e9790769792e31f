package dsp

import (
	"fmt"
	"math"
)

// HannWindow is a Hann (raised cosine) tapering window of a fixed size.
type HannWindow struct {
	size         int
	symmetric    bool
	coefficients []float64
}

// NewHannWindow creates a new Hann window. Periodic (symmetric=false) is the
// usual choice for STFT analysis.
func NewHannWindow(size int, symmetric bool) *HannWindow {
	h := &HannWindow{
		size:      size,
		symmetric: symmetric,
	}
	h.generate()
	return h
}

func (h *HannWindow) generate() {
	h.coefficients = make([]float64, h.size)

	denominator := float64(h.size)
	if h.symmetric {
		denominator = float64(h.size - 1)
	}

	for i := range h.size {
		h.coefficients[i] = 0.5 * (1.0 - math.Cos(2*math.Pi*float64(i)/denominator))
	}
}

// Apply applies the window to a signal (creates a new array)
func (h *HannWindow) Apply(signal []float64) []float64 {
	if len(signal) != h.size {
		return nil
	}

	windowed := make([]float64, h.size)
	for i := range h.size {
		windowed[i] = signal[i] * h.coefficients[i]
	}
	return windowed
}

// ApplyInPlace applies the window to a signal in-place
func (h *HannWindow) ApplyInPlace(signal []float64) error {
	if len(signal) != h.size {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), h.size)
	}

	for i := range h.size {
		signal[i] *= h.coefficients[i]
	}
	return nil
}

// Coefficients returns a copy of the window coefficients
func (h *HannWindow) Coefficients() []float64 {
	coeffs := make([]float64, len(h.coefficients))
	copy(coeffs, h.coefficients)
	return coeffs
}

// Size returns the window size
func (h *HannWindow) Size() int {
	return h.size
}
