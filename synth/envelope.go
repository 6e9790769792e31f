package synth

// ADSR is an attack-decay-sustain-release amplitude envelope. Segment times
// are fractions of the note duration so short notes still articulate.
type ADSR struct {
	Attack  float64 // fraction of duration
	Decay   float64 // fraction of duration
	Sustain float64 // level, 0..1
	Release float64 // fraction of duration
}

// DefaultADSR is the stock pluck-ish note shape
func DefaultADSR() ADSR {
	return ADSR{
		Attack:  0.05,
		Decay:   0.10,
		Sustain: 0.8,
		Release: 0.15,
	}
}

// Amplitude returns the envelope gain for sample i of n
func (e ADSR) Amplitude(i, n int) float64 {
	if n <= 0 || i < 0 || i >= n {
		return 0.0
	}

	attackEnd := int(e.Attack * float64(n))
	if attackEnd < 1 {
		attackEnd = 1
	}
	decayEnd := attackEnd + int(e.Decay*float64(n))
	releaseStart := n - int(e.Release*float64(n))
	if releaseStart <= decayEnd {
		releaseStart = decayEnd + 1
	}

	switch {
	case i < attackEnd:
		return float64(i) / float64(attackEnd)
	case i < decayEnd:
		pos := float64(i-attackEnd) / float64(decayEnd-attackEnd)
		return 1.0 - pos*(1.0-e.Sustain)
	case i < releaseStart:
		return e.Sustain
	default:
		remaining := n - releaseStart
		if remaining <= 0 {
			return 0.0
		}
		pos := float64(i-releaseStart) / float64(remaining)
		return e.Sustain * (1.0 - pos)
	}
}
