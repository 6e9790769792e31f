package melody

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/xmodal/xmodal/feature"
	"github.com/xmodal/xmodal/mapping"
)

// BuildOptions tune the timeline builder. The random source is always the
// explicitly seeded one passed here; the builder never touches the global
// generator, so a fixed seed reproduces the piece exactly.
type BuildOptions struct {
	Jumpiness  float64 // [0, 1], caps the contour interval size
	Seed       int64
	Percussion bool
}

// DefaultBuildOptions returns moderate contour movement with no percussion
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{Jumpiness: 0.2}
}

// Builder constants
const (
	percussionChannel = 9
	melodyChannel     = 0

	// Empty input falls back to a single root note of this length
	minimalNoteDuration = 0.4

	releaseTail = 0.25 // seconds appended after the last event

	maxNotes = 128
)

// BuildTimeline turns musical parameters plus structural hints into an
// ordered event timeline. One note per word (at least one note always);
// clause punctuation leaves a rest; the pitch contour walks the scale of the
// tonal center, with interval size capped by jumpiness.
func BuildTimeline(params mapping.Parameters, hints feature.StructuralHints, opts BuildOptions) (Timeline, error) {
	if opts.Jumpiness < 0 || opts.Jumpiness > 1 {
		return Timeline{}, fmt.Errorf("jumpiness %g outside [0, 1]", opts.Jumpiness)
	}
	if params.TempoBPM <= 0 {
		return Timeline{}, fmt.Errorf("tempo %g must be positive", params.TempoBPM)
	}

	noteCount := hints.Words
	if noteCount < 1 {
		noteCount = 1
	}
	if noteCount > maxNotes {
		noteCount = maxNotes
	}

	rng := rand.New(rand.NewSource(opts.Seed))

	beat := 60.0 / params.TempoBPM
	// Denser parameters pack notes tighter; density 0.5 sits at half a beat
	step := beat * (1.5 - params.NoteDensity) / 2.0
	noteDuration := step * 0.9

	pauseAfter := make(map[int]bool, len(hints.Pauses))
	for _, idx := range hints.Pauses {
		pauseAfter[idx] = true
	}

	events := make([]Event, 0, noteCount)
	degree := 0
	cursor := 0.0
	for i := range noteCount {
		dur := noteDuration
		if noteCount == 1 && hints.Words == 0 {
			dur = minimalNoteDuration
		}

		events = append(events, Event{
			Start:    cursor,
			Duration: dur,
			Pitch:    clampPitch(DegreeToMIDI(params.TonalCenter, degree, params.Mode)),
			Velocity: velocity(params, rng),
			Channel:  melodyChannel,
			Kind:     KindNote,
		})

		degree += contourStep(rng, opts.Jumpiness)

		cursor += step
		if pauseAfter[i] {
			// Rest: skip one slot after clause punctuation
			cursor += step
		}
	}

	total := events[len(events)-1].End() + releaseTail

	if opts.Percussion {
		events = append(events, percussionLayer(params, rng, total)...)
	}

	return NewTimeline(events, total)
}

// contourStep draws the next scale-degree interval. Jumpiness is the
// probability of a leap; leaps grow with jumpiness up to a sixth.
func contourStep(rng *rand.Rand, jumpiness float64) int {
	r := rng.Float64()

	size := 1
	if r < jumpiness {
		maxLeap := 2 + int(math.Round(jumpiness*3)) // 2..5 degrees
		size = 2 + rng.Intn(maxLeap-1)
	}
	if rng.Float64() < 0.45 {
		return -size
	}
	return size
}

// velocity derives a note velocity from the dynamics range, jittered by the
// rhythm-variability weight
func velocity(params mapping.Parameters, rng *rand.Rand) int {
	base := 60.0 + 40.0*params.DynamicsRange
	jitter := params.RhythmVariability * 24.0 * (rng.Float64() - 0.5)

	v := int(math.Round(base + jitter))
	if v < VelocityMin {
		v = VelocityMin
	}
	if v > VelocityMax {
		v = VelocityMax
	}
	return v
}

// percussionLayer lays a pulse on every half beat, with probabilistic ghost
// notes between pulses and a heavier accent opening each bar
func percussionLayer(params mapping.Parameters, rng *rand.Rand, total float64) []Event {
	beat := 60.0 / params.TempoBPM
	pulse := beat / 2.0
	hitDuration := math.Min(0.08, pulse*0.5)

	var events []Event
	i := 0
	for t := 0.0; t+hitDuration <= total; t += pulse {
		onBeat := i%2 == 0
		barStart := i%8 == 0

		switch {
		case barStart:
			events = append(events, percussionHit(t, hitDuration, 48, 96))
		case onBeat:
			events = append(events, percussionHit(t, hitDuration, 45, 72))
		case rng.Float64() < 0.2+0.4*params.RhythmVariability:
			// Ghost note / fill
			events = append(events, percussionHit(t, hitDuration, 42, 28+rng.Intn(20)))
		}
		i++
	}
	return events
}

func percussionHit(start, duration float64, pitch, vel int) Event {
	return Event{
		Start:    start,
		Duration: duration,
		Pitch:    pitch,
		Velocity: vel,
		Channel:  percussionChannel,
		Kind:     KindPercussion,
	}
}
