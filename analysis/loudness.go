package analysis

import (
	"github.com/xmodal/xmodal/dsp"
)

// computeLoudness measures RMS and peak over the whole buffer. Crest factor
// is peak/RMS with a 0 fallback for silence, so a degenerate buffer never
// produces NaN.
func computeLoudness(samples []float64) LoudnessFeatures {
	rms := dsp.RMS(samples)
	peak := dsp.PeakAbs(samples)

	crest := 0.0
	if rms > 0 {
		crest = peak / rms
	}

	return LoudnessFeatures{
		RMS:   rms,
		Peak:  peak,
		Crest: crest,
	}
}
