package melody

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// EventKind distinguishes tonal notes from percussion hits
type EventKind string

const (
	KindNote       EventKind = "note"
	KindPercussion EventKind = "percussion"
)

// Playable pitch and velocity bounds
const (
	PitchMin = 36 // C2
	PitchMax = 96 // C7

	VelocityMin = 1
	VelocityMax = 127
)

// Event is one timed musical event. Times are seconds from piece start.
type Event struct {
	Start    float64
	Duration float64
	Pitch    int
	Velocity int
	Channel  int
	Kind     EventKind
}

// End returns the event's end time
func (e Event) End() float64 {
	return e.Start + e.Duration
}

// Timeline is an immutable ordered sequence of events plus the declared piece
// length. Events are sorted by start time, ties keeping insertion order.
type Timeline struct {
	events   []Event
	duration float64
}

// NewTimeline builds a validated timeline. Events are stable-sorted by start
// time; the declared duration must cover every event.
func NewTimeline(events []Event, duration float64) (Timeline, error) {
	copied := make([]Event, len(events))
	copy(copied, events)
	sort.SliceStable(copied, func(i, j int) bool {
		return copied[i].Start < copied[j].Start
	})

	tl := Timeline{events: copied, duration: duration}
	if err := tl.Validate(); err != nil {
		return Timeline{}, err
	}
	return tl, nil
}

// Events returns a copy of the ordered events
func (t Timeline) Events() []Event {
	out := make([]Event, len(t.events))
	copy(out, t.events)
	return out
}

// Duration returns the declared piece length in seconds
func (t Timeline) Duration() float64 {
	return t.duration
}

// Len returns the event count
func (t Timeline) Len() int {
	return len(t.events)
}

// CountKind returns how many events have the given kind
func (t Timeline) CountKind(kind EventKind) int {
	n := 0
	for _, e := range t.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Validate checks the ordering, duration and range invariants. A violation
// here indicates a bug in the producer, not bad user input.
func (t Timeline) Validate() error {
	if t.duration < 0 {
		return fmt.Errorf("negative timeline duration %g", t.duration)
	}
	for i, e := range t.events {
		if e.Duration <= 0 {
			return fmt.Errorf("event %d has non-positive duration %g", i, e.Duration)
		}
		if e.Start < 0 {
			return fmt.Errorf("event %d has negative start %g", i, e.Start)
		}
		if e.Pitch < PitchMin || e.Pitch > PitchMax {
			return fmt.Errorf("event %d pitch %d outside [%d, %d]", i, e.Pitch, PitchMin, PitchMax)
		}
		if e.Velocity < VelocityMin || e.Velocity > VelocityMax {
			return fmt.Errorf("event %d velocity %d outside [%d, %d]", i, e.Velocity, VelocityMin, VelocityMax)
		}
		if i > 0 && e.Start < t.events[i-1].Start {
			return fmt.Errorf("event %d starts before event %d", i, i-1)
		}
		if e.End() > t.duration+1e-9 {
			return fmt.Errorf("event %d ends at %g past declared duration %g", i, e.End(), t.duration)
		}
	}
	return nil
}

// eventJSON is the wire form of one event
type eventJSON struct {
	StartMS    int64  `json:"start_ms"`
	DurationMS int64  `json:"duration_ms"`
	Pitch      int    `json:"pitch"`
	Velocity   int    `json:"velocity"`
	Channel    int    `json:"channel"`
	Type       string `json:"type"`
}

// MarshalJSON encodes the timeline as an ordered event array; array order is
// the canonical event order
func (t Timeline) MarshalJSON() ([]byte, error) {
	out := make([]eventJSON, len(t.events))
	for i, e := range t.events {
		out[i] = eventJSON{
			StartMS:    int64(math.Round(e.Start * 1000)),
			DurationMS: int64(math.Round(e.Duration * 1000)),
			Pitch:      e.Pitch,
			Velocity:   e.Velocity,
			Channel:    e.Channel,
			Type:       string(e.Kind),
		}
	}
	return json.Marshal(out)
}
