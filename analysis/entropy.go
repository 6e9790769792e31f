package analysis

import (
	"math"

	"github.com/xmodal/xmodal/dsp"
)

// computeEntropy measures two disorder statistics, both normalized to [0, 1]:
// amplitude entropy over a histogram of sample magnitudes, and spectral
// entropy from the per-frame normalized magnitude distribution, averaged
// across frames.
func computeEntropy(samples []float64, stft *dsp.STFTResult) EntropyFeatures {
	return EntropyFeatures{
		Amplitude: amplitudeEntropy(samples),
		Spectral:  spectralEntropy(stft),
	}
}

// amplitudeEntropy builds a fixed-bin histogram of |sample| and computes the
// normalized Shannon entropy of that distribution. Silence yields 0 because
// all mass lands in one bin.
func amplitudeEntropy(samples []float64) float64 {
	if len(samples) == 0 {
		return 0.0
	}

	histogram := make([]float64, amplitudeHistogramBins)
	for _, s := range samples {
		mag := math.Abs(s)
		if mag > 1.0 {
			mag = 1.0
		}
		bin := int(mag * float64(amplitudeHistogramBins-1))
		histogram[bin]++
	}

	return normalizedShannon(histogram)
}

// spectralEntropy treats each frame's magnitude spectrum as a probability
// distribution and averages the normalized entropies across frames. Empty or
// all-silent spectrograms score 0.
func spectralEntropy(stft *dsp.STFTResult) float64 {
	if stft == nil || len(stft.Magnitude) == 0 {
		return 0.0
	}

	sum := 0.0
	counted := 0
	for _, spectrum := range stft.Magnitude {
		e := normalizedShannon(spectrum)
		if e > 0 {
			sum += e
			counted++
		}
	}
	if counted == 0 {
		return 0.0
	}
	return sum / float64(counted)
}

// normalizedShannon computes Shannon entropy of a non-negative weight vector,
// normalized by log2(len) so the result lands in [0, 1]
func normalizedShannon(weights []float64) float64 {
	if len(weights) < 2 {
		return 0.0
	}

	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return 0.0
	}

	entropy := 0.0
	for _, w := range weights {
		if w <= 0 {
			continue
		}
		p := w / total
		entropy -= p * math.Log2(p)
	}

	return entropy / math.Log2(float64(len(weights)))
}
