package analysis

import (
	"math"

	"github.com/xmodal/xmodal/dsp"
)

// computeRhythm detects onsets via spectral flux with an adaptive threshold
// and estimates tempo from the inter-onset-interval distribution. With fewer
// than two onsets the tempo falls back to 0 ("no rhythm detected").
func computeRhythm(stft *dsp.STFTResult, duration float64) RhythmFeatures {
	flux := spectralFlux(stft)
	onsetTimes := pickOnsets(flux, stft)

	onsetRate := 0.0
	if duration > 0 {
		onsetRate = float64(len(onsetTimes)) / duration
	}

	return RhythmFeatures{
		OnsetRate: onsetRate,
		TempoBPM:  tempoFromOnsets(onsetTimes),
	}
}

// spectralFlux is the frame-to-frame positive spectral energy increase,
// normalized to a [0, 1] peak. A stationary signal still jitters at the
// FFT's numeric floor, and peak normalization would blow that jitter up to
// full scale; the raw flux peak is therefore gated against the median frame
// magnitude before normalizing, so steady tones report no onsets at all.
func spectralFlux(stft *dsp.STFTResult) []float64 {
	if stft == nil || len(stft.Magnitude) < 2 {
		return []float64{}
	}

	frameMags := make([]float64, len(stft.Magnitude))
	for t, spectrum := range stft.Magnitude {
		sum := 0.0
		for _, mag := range spectrum {
			sum += mag
		}
		frameMags[t] = sum
	}

	flux := make([]float64, len(stft.Magnitude)-1)
	maxFlux := 0.0
	for t := 1; t < len(stft.Magnitude); t++ {
		sum := 0.0
		prev := stft.Magnitude[t-1]
		for f, mag := range stft.Magnitude[t] {
			if diff := mag - prev[f]; diff > 0 {
				sum += diff
			}
		}
		flux[t-1] = sum
		if sum > maxFlux {
			maxFlux = sum
		}
	}

	if maxFlux <= fluxMagnitudeFloor*dsp.Quantile(frameMags, 0.5) {
		return []float64{}
	}

	for i := range flux {
		flux[i] /= maxFlux
	}
	return flux
}

// pickOnsets finds local flux maxima above an adaptive threshold
// (mean + bias*std), enforcing a minimum inter-onset gap. Returns onset times
// in seconds.
func pickOnsets(flux []float64, stft *dsp.STFTResult) []float64 {
	if len(flux) < 3 {
		return []float64{}
	}

	threshold := dsp.Mean(flux) + fluxThresholdBias*dsp.StdDev(flux)

	minGapFrames := int(minOnsetGapSec * float64(stft.SampleRate) / float64(stft.HopSize))
	if minGapFrames < 1 {
		minGapFrames = 1
	}

	var times []float64
	lastPeak := -minGapFrames
	for i := 1; i < len(flux)-1; i++ {
		if flux[i] > flux[i-1] && flux[i] > flux[i+1] &&
			flux[i] >= threshold &&
			i-lastPeak >= minGapFrames {
			// flux[i] compares frame i+1 against frame i of the spectrogram
			times = append(times, stft.FrameTime(i+1))
			lastPeak = i
		}
	}
	return times
}

// tempoFromOnsets estimates BPM as the dominant peak of the inter-onset
// interval histogram, refined by averaging the winning bin's members and
// clamped to the plausible range
func tempoFromOnsets(onsetTimes []float64) float64 {
	if len(onsetTimes) < 2 {
		return 0.0
	}

	const binWidth = 4.0 // BPM per histogram bin

	type bin struct {
		count int
		sum   float64
	}
	bins := make(map[int]*bin)

	for i := 1; i < len(onsetTimes); i++ {
		interval := onsetTimes[i] - onsetTimes[i-1]
		if interval <= 0 {
			continue
		}
		bpm := 60.0 / interval
		// Fold implausible intervals into the valid octave
		for bpm < tempoMin {
			bpm *= 2
		}
		for bpm > tempoMax {
			bpm /= 2
		}
		idx := int(math.Floor(bpm / binWidth))
		if bins[idx] == nil {
			bins[idx] = &bin{}
		}
		bins[idx].count++
		bins[idx].sum += bpm
	}

	bestIdx, bestCount := -1, 0
	for idx, b := range bins {
		if b.count > bestCount || (b.count == bestCount && idx < bestIdx) {
			bestIdx, bestCount = idx, b.count
		}
	}
	if bestIdx < 0 {
		return 0.0
	}

	tempo := bins[bestIdx].sum / float64(bins[bestIdx].count)
	return dsp.Clamp(tempo, tempoMin, tempoMax)
}
