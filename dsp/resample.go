package dsp

// Resample converts a signal from one sample rate to another using linear
// interpolation. Good enough for feature extraction; synthesis always renders
// at the target rate directly.
func Resample(signal []float64, fromRate, toRate int) []float64 {
	if len(signal) == 0 || fromRate <= 0 || toRate <= 0 {
		return []float64{}
	}
	if fromRate == toRate {
		out := make([]float64, len(signal))
		copy(out, signal)
		return out
	}

	ratio := float64(fromRate) / float64(toRate)
	outLen := int(float64(len(signal)) / ratio)
	if outLen < 1 {
		outLen = 1
	}

	out := make([]float64, outLen)
	for i := range outLen {
		pos := float64(i) * ratio
		idx := int(pos)
		frac := pos - float64(idx)

		if idx+1 < len(signal) {
			out[i] = signal[idx]*(1.0-frac) + signal[idx+1]*frac
		} else {
			out[i] = signal[len(signal)-1]
		}
	}
	return out
}

// MixToMono averages interleaved multichannel samples down to one channel
func MixToMono(interleaved []float64, channels int) []float64 {
	if channels <= 1 || len(interleaved) == 0 {
		out := make([]float64, len(interleaved))
		copy(out, interleaved)
		return out
	}

	frames := len(interleaved) / channels
	mono := make([]float64, frames)
	for i := range frames {
		sum := 0.0
		for ch := range channels {
			sum += interleaved[i*channels+ch]
		}
		mono[i] = sum / float64(channels)
	}
	return mono
}
