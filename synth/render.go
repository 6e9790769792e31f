package synth

import (
	"fmt"
	"math"

	"github.com/xmodal/xmodal/audio"
	"github.com/xmodal/xmodal/dsp"
	"github.com/xmodal/xmodal/mapping"
	"github.com/xmodal/xmodal/melody"
)

// Peak-normalization target: -1 dBFS of headroom against clipping from
// additive overlap
const normalizeTarget = 0.89125

// Renderer turns a timeline into a sample buffer. Stateless across calls;
// "state" during a render is only the preallocated accumulation buffer.
type Renderer struct {
	envelope ADSR
}

// NewRenderer creates a renderer with the default note envelope
func NewRenderer() *Renderer {
	return &Renderer{envelope: DefaultADSR()}
}

// Render synthesizes the timeline into a mono buffer at the given rate.
// Every event is accumulated additively at its sample offset; overlap sums.
// One peak-normalization pass runs after accumulation - never during, since
// per-event normalization would change relative loudness.
func (r *Renderer) Render(tl melody.Timeline, timbre mapping.Timbre, sampleRate int) (audio.Buffer, error) {
	if sampleRate <= 0 {
		return audio.Buffer{}, fmt.Errorf("sample rate %d must be positive", sampleRate)
	}
	if _, err := mapping.ParseTimbre(string(timbre)); err != nil {
		return audio.Buffer{}, err
	}
	if err := tl.Validate(); err != nil {
		return audio.Buffer{}, fmt.Errorf("invalid timeline: %w", err)
	}

	totalSamples := int(math.Ceil(tl.Duration() * float64(sampleRate)))
	if totalSamples < 1 {
		totalSamples = 1
	}

	// Arena-style output: sized up front, index-addressed, never grown
	out := make([]float64, totalSamples)
	osc := NewOscillator(timbre)

	for _, event := range tl.Events() {
		startSample := int(math.Round(event.Start * float64(sampleRate)))
		n := int(math.Round(event.Duration * float64(sampleRate)))
		if n < 1 {
			n = 1
		}
		if startSample+n > totalSamples {
			n = totalSamples - startSample
		}
		if n <= 0 {
			continue
		}

		voice := make([]float64, n)
		if event.Kind == melody.KindPercussion {
			renderPercussion(voice, event.Pitch, startSample, sampleRate)
		} else {
			osc.Render(voice, dsp.MIDIToHz(float64(event.Pitch)), sampleRate)
			for i := range voice {
				voice[i] *= r.envelope.Amplitude(i, n)
			}
		}

		gain := float64(event.Velocity) / float64(melody.VelocityMax)
		for i := range voice {
			out[startSample+i] += voice[i] * gain
		}
	}

	normalizePeak(out, normalizeTarget)

	return audio.NewBuffer(out, sampleRate, 1)
}

// normalizePeak scales the buffer so its peak sits at target. Buffers already
// inside the target, and silent buffers, are left untouched.
func normalizePeak(samples []float64, target float64) {
	peak := dsp.PeakAbs(samples)
	if peak <= target || peak == 0 {
		return
	}
	scale := target / peak
	for i := range samples {
		samples[i] *= scale
	}
}
