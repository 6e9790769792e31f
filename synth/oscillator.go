package synth

import (
	"math"

	"github.com/xmodal/xmodal/mapping"
)

// Oscillator generates one waveform sample at a time from a running phase.
// Phase is in cycles (0..1 per period), so frequency handling stays outside.
type Oscillator struct {
	timbre mapping.Timbre
}

// NewOscillator creates an oscillator for a timbre
func NewOscillator(timbre mapping.Timbre) *Oscillator {
	return &Oscillator{timbre: timbre}
}

// Sample evaluates the waveform at the given phase (cycles)
func (o *Oscillator) Sample(phase float64) float64 {
	switch o.timbre {
	case mapping.TimbreSaw:
		// Rising ramp, one sweep per cycle
		return 2.0 * (phase - math.Floor(phase+0.5))
	case mapping.TimbreSquare:
		if math.Sin(2.0*math.Pi*phase) >= 0 {
			return 1.0
		}
		return -1.0
	default: // sine
		return math.Sin(2.0 * math.Pi * phase)
	}
}

// Render fills out with the waveform for a constant frequency
func (o *Oscillator) Render(out []float64, freq float64, sampleRate int) {
	phaseInc := freq / float64(sampleRate)
	phase := 0.0
	for i := range out {
		out[i] = o.Sample(phase)
		phase += phaseInc
	}
}
