package pipeline

import (
	"fmt"

	"github.com/xmodal/xmodal/mapping"
)

// Mood optionally forces the scale family
type Mood string

const (
	MoodAuto  Mood = "auto"
	MoodMajor Mood = "major"
	MoodMinor Mood = "minor"
)

// Options is the recognized configuration bundle for a conversion run
type Options struct {
	// Instrument overrides the mapped timbre; empty keeps the mapping
	Instrument string `json:"instrument,omitempty"`

	// Mood forces major/minor; auto keeps the mapped mode
	Mood Mood `json:"mood"`

	// TempoBPM overrides the mapped tempo when positive
	TempoBPM float64 `json:"tempo_bpm,omitempty"`

	// Jumpiness caps contour interval size, [0, 1]
	Jumpiness float64 `json:"jumpiness"`

	// Seed drives the timeline builder's random source
	Seed int64 `json:"seed"`

	// Percussion toggles the pulse/fill layer
	Percussion bool `json:"percussion"`

	// SampleRate of the rendered audio
	SampleRate int `json:"sample_rate"`
}

// DefaultOptions returns the stock configuration
func DefaultOptions() Options {
	return Options{
		Mood:       MoodAuto,
		Jumpiness:  0.2,
		SampleRate: 44100,
	}
}

// Validate rejects out-of-range or unrecognized option values
func (o Options) Validate() error {
	if o.Instrument != "" {
		if _, err := mapping.ParseTimbre(o.Instrument); err != nil {
			return newError(StageMapping, ErrUnsupportedConfiguration,
				fmt.Sprintf("instrument=%q", o.Instrument), err)
		}
	}
	switch o.Mood {
	case MoodAuto, MoodMajor, MoodMinor:
	default:
		return newError(StageMapping, ErrUnsupportedConfiguration,
			fmt.Sprintf("mood=%q", o.Mood), nil)
	}
	if o.TempoBPM < 0 {
		return newError(StageMapping, ErrInvalidInput,
			fmt.Sprintf("tempo=%g", o.TempoBPM), nil)
	}
	if o.Jumpiness < 0 || o.Jumpiness > 1 {
		return newError(StageTimeline, ErrInvalidInput,
			fmt.Sprintf("jumpiness=%g", o.Jumpiness), nil)
	}
	if o.SampleRate <= 0 {
		return newError(StageSynthesis, ErrInvalidInput,
			fmt.Sprintf("sample_rate=%d", o.SampleRate), nil)
	}
	return nil
}

// apply folds the option overrides into mapped parameters
func (o Options) apply(params mapping.Parameters) mapping.Parameters {
	switch o.Mood {
	case MoodMajor:
		params.Mode = mapping.ModeMajor
	case MoodMinor:
		params.Mode = mapping.ModeMinor
	}
	if o.TempoBPM > 0 {
		params.TempoBPM = clampTempo(o.TempoBPM)
	}
	if o.Instrument != "" {
		// Validate() already vetted the name
		params.Timbre = mapping.Timbre(o.Instrument)
	}
	return params
}

func clampTempo(bpm float64) float64 {
	if bpm < mapping.TempoMin {
		return mapping.TempoMin
	}
	if bpm > mapping.TempoMax {
		return mapping.TempoMax
	}
	return bpm
}
