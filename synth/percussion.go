package synth

import (
	"math"
	"math/rand"
)

// Percussion hits are short noise bursts with a fast exponential decay. The
// noise source is seeded from the event's own position so rendering stays
// deterministic without any engine-level state.

const percussionDecayRate = 40.0 // per second

func renderPercussion(out []float64, pitch int, startSample int, sampleRate int) {
	seed := int64(startSample)*131 + int64(pitch)
	rng := rand.New(rand.NewSource(seed))

	// Lower drum pitches get a little extra body
	decay := percussionDecayRate * (1.0 + float64(pitch-36)/48.0)

	for i := range out {
		t := float64(i) / float64(sampleRate)
		out[i] = (2.0*rng.Float64() - 1.0) * math.Exp(-decay*t)
	}
}
