package audio

import (
	"fmt"

	"github.com/xmodal/xmodal/dsp"
)

// Buffer is an immutable PCM sample buffer. Samples are interleaved float64
// values in [-1, 1].
type Buffer struct {
	samples    []float64
	sampleRate int
	channels   int
}

// NewBuffer creates a buffer from interleaved samples. The slice is copied so
// the caller cannot mutate the buffer afterwards.
func NewBuffer(samples []float64, sampleRate, channels int) (Buffer, error) {
	if sampleRate <= 0 {
		return Buffer{}, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	if channels <= 0 {
		return Buffer{}, fmt.Errorf("channel count must be positive, got %d", channels)
	}
	if len(samples)%channels != 0 {
		return Buffer{}, fmt.Errorf("%d samples do not align to %d channels", len(samples), channels)
	}

	copied := make([]float64, len(samples))
	copy(copied, samples)

	return Buffer{
		samples:    copied,
		sampleRate: sampleRate,
		channels:   channels,
	}, nil
}

// Samples returns a copy of the interleaved samples
func (b Buffer) Samples() []float64 {
	out := make([]float64, len(b.samples))
	copy(out, b.samples)
	return out
}

// SampleRate returns the sample rate in Hz
func (b Buffer) SampleRate() int {
	return b.sampleRate
}

// Channels returns the channel count
func (b Buffer) Channels() int {
	return b.channels
}

// Len returns the total interleaved sample count
func (b Buffer) Len() int {
	return len(b.samples)
}

// Frames returns the per-channel frame count
func (b Buffer) Frames() int {
	if b.channels == 0 {
		return 0
	}
	return len(b.samples) / b.channels
}

// Duration returns the buffer duration in seconds
func (b Buffer) Duration() float64 {
	if b.sampleRate == 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.sampleRate)
}

// Mono returns a single-channel view of the buffer, averaging channels
func (b Buffer) Mono() Buffer {
	if b.channels <= 1 {
		return b
	}
	return Buffer{
		samples:    dsp.MixToMono(b.samples, b.channels),
		sampleRate: b.sampleRate,
		channels:   1,
	}
}
