package analysis

import (
	"github.com/xmodal/xmodal/dsp"
)

// Frame-wise fundamental frequency estimation using the YIN method:
// difference function, cumulative mean normalized difference (CMND), first
// minimum below threshold, parabolic refinement.

// computePitch aggregates YIN estimates over the buffer. Frames whose CMND
// never drops below the threshold count as unvoiced.
func computePitch(samples []float64, sampleRate int) PitchFeatures {
	if len(samples) < windowSize {
		return PitchFeatures{}
	}

	window := dsp.NewHannWindow(windowSize, false)
	fft := dsp.NewFFT()
	frame := make([]float64, windowSize)

	var voiced []float64
	totalFrames := 0

	for start := 0; start+windowSize <= len(samples); start += pitchHop {
		copy(frame, samples[start:start+windowSize])
		if err := window.ApplyInPlace(frame); err != nil {
			break
		}
		totalFrames++

		if f0, ok := yinFrame(fft, frame, sampleRate); ok {
			voiced = append(voiced, f0)
		}
	}

	if totalFrames == 0 || len(voiced) == 0 {
		return PitchFeatures{}
	}

	return PitchFeatures{
		F0Mean:      dsp.Mean(voiced),
		F0Std:       dsp.StdDev(voiced),
		VoicedRatio: float64(len(voiced)) / float64(totalFrames),
	}
}

// yinFrame estimates the fundamental of one windowed frame. Returns false for
// unvoiced frames.
func yinFrame(fft *dsp.FFT, frame []float64, sampleRate int) (float64, bool) {
	tauMin := int(float64(sampleRate) / pitchMaxFreq)
	tauMax := int(float64(sampleRate) / pitchMinFreq)
	if tauMin < 1 {
		tauMin = 1
	}
	if tauMax+1 >= len(frame) {
		return 0, false
	}

	diff := yinDifference(fft, frame, tauMax)
	cmnd := yinCMND(diff)

	for tau := tauMin; tau <= tauMax; tau++ {
		if cmnd[tau] >= yinThreshold {
			continue
		}

		// Parabolic interpolation around the minimum refines the lag
		t0 := tau - 1
		if t0 < 1 {
			t0 = 1
		}
		t2 := tau + 1
		if t2 > tauMax {
			t2 = tauMax
		}
		a, b, c := cmnd[t0], cmnd[tau], cmnd[t2]

		refined := float64(tau)
		if denom := a - 2*b + c; denom > 1e-12 || denom < -1e-12 {
			refined = float64(tau) + 0.5*(a-c)/denom
		}
		if refined < 1.0 {
			refined = 1.0
		}
		return float64(sampleRate) / refined, true
	}
	return 0, false
}

// yinDifference is the YIN difference function d(tau), computed through the
// autocorrelation identity d(tau) = E[0,n-tau) + E[tau,n) - 2*r(tau). The
// zero-padded FFT gives linear autocorrelation for the whole lag range in
// O(n log n) instead of O(n*tauMax).
func yinDifference(fft *dsp.FFT, frame []float64, tauMax int) []float64 {
	n := len(frame)

	size := 1
	for size < 2*n {
		size <<= 1
	}
	padded := make([]float64, size)
	copy(padded, frame)

	spectrum := fft.Compute(padded)
	for i, c := range spectrum {
		re, im := real(c), imag(c)
		spectrum[i] = complex(re*re+im*im, 0)
	}
	acf := fft.ComputeInverseReal(spectrum)

	prefix := make([]float64, n+1)
	for i, v := range frame {
		prefix[i+1] = prefix[i] + v*v
	}

	d := make([]float64, tauMax+1)
	for tau := 1; tau <= tauMax; tau++ {
		d[tau] = prefix[n-tau] + (prefix[n] - prefix[tau]) - 2.0*acf[tau]
		if d[tau] < 0 {
			// Cancellation can leave a tiny negative residue
			d[tau] = 0
		}
	}
	return d
}

// yinCMND is the cumulative mean normalized difference of d(tau)
func yinCMND(d []float64) []float64 {
	cmnd := make([]float64, len(d))
	cmnd[0] = 1.0
	runningSum := 0.0
	for tau := 1; tau < len(d); tau++ {
		runningSum += d[tau]
		if runningSum > 0 {
			cmnd[tau] = d[tau] * float64(tau) / runningSum
		} else {
			cmnd[tau] = 1.0
		}
	}
	return cmnd
}
