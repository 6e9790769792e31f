package analysis

import (
	"math"

	"github.com/xmodal/xmodal/dsp"
)

// Per-frame spectral shape statistics over a magnitude spectrogram.

// spectralShape computes centroid, rolloff, flatness and bandwidth for the
// frames of an STFT result. Frequency bins are pre-calculated once.
type spectralShape struct {
	freqBins []float64
}

func newSpectralShape(freqBins, sampleRate int) *spectralShape {
	bins := make([]float64, freqBins)
	for i := range freqBins {
		bins[i] = float64(i) * float64(sampleRate) / float64((freqBins-1)*2)
	}
	return &spectralShape{freqBins: bins}
}

// Centroid is the energy-weighted mean frequency of one magnitude spectrum.
// A zero-energy spectrum yields 0, never NaN.
func (ss *spectralShape) Centroid(spectrum []float64) float64 {
	numerator := 0.0
	denominator := 0.0
	for i, mag := range spectrum {
		numerator += ss.freqBins[i] * mag
		denominator += mag
	}
	if denominator == 0 {
		return 0.0
	}
	return numerator / denominator
}

// Rolloff is the frequency below which threshold (e.g. 0.85) of the total
// spectral energy is contained
func (ss *spectralShape) Rolloff(spectrum []float64, threshold float64) float64 {
	totalEnergy := 0.0
	for _, mag := range spectrum {
		totalEnergy += mag * mag
	}
	if totalEnergy == 0 {
		return 0.0
	}

	targetEnergy := threshold * totalEnergy
	cumulativeEnergy := 0.0
	for i, mag := range spectrum {
		cumulativeEnergy += mag * mag
		if cumulativeEnergy >= targetEnergy {
			return ss.freqBins[i]
		}
	}
	return ss.freqBins[len(ss.freqBins)-1]
}

// Flatness is the geometric/arithmetic mean ratio of the magnitudes in (0, 1].
// Tonal content scores low, noise-like content scores high. A silent frame
// scores 0.
func (ss *spectralShape) Flatness(spectrum []float64) float64 {
	const minThreshold = 1e-10 // avoid log(0)

	logSum := 0.0
	validCount := 0
	for _, magnitude := range spectrum {
		if magnitude > minThreshold {
			logSum += math.Log(magnitude)
			validCount++
		}
	}
	if validCount == 0 {
		return 0.0
	}
	geometricMean := math.Exp(logSum / float64(validCount))

	arithmeticMean := 0.0
	for _, magnitude := range spectrum {
		arithmeticMean += magnitude
	}
	arithmeticMean /= float64(len(spectrum))
	if arithmeticMean <= minThreshold {
		return 0.0
	}

	flatness := geometricMean / arithmeticMean
	if flatness > 1.0 {
		flatness = 1.0
	}
	return flatness
}

// Bandwidth is the energy-weighted spread around the given centroid
func (ss *spectralShape) Bandwidth(spectrum []float64, centroid float64) float64 {
	numerator := 0.0
	denominator := 0.0
	for i, mag := range spectrum {
		diff := ss.freqBins[i] - centroid
		numerator += diff * diff * mag
		denominator += mag
	}
	if denominator == 0 {
		return 0.0
	}
	return math.Sqrt(numerator / denominator)
}

// computeSpectrum aggregates per-frame shape statistics into the spectrum
// feature group
func computeSpectrum(stft *dsp.STFTResult) SpectrumFeatures {
	shape := newSpectralShape(stft.FreqBins, stft.SampleRate)

	frames := len(stft.Magnitude)
	centroids := make([]float64, frames)
	rolloffs := make([]float64, frames)
	flatnesses := make([]float64, frames)
	bandwidths := make([]float64, frames)

	for t, spectrum := range stft.Magnitude {
		centroids[t] = shape.Centroid(spectrum)
		rolloffs[t] = shape.Rolloff(spectrum, rolloffThreshold)
		flatnesses[t] = shape.Flatness(spectrum)
		bandwidths[t] = shape.Bandwidth(spectrum, centroids[t])
	}

	return SpectrumFeatures{
		Centroid:    dsp.Mean(centroids),
		CentroidStd: dsp.StdDev(centroids),
		Rolloff:     dsp.Mean(rolloffs),
		Flatness:    dsp.Mean(flatnesses),
		Bandwidth:   dsp.Mean(bandwidths),
	}
}
