package mapping

import "fmt"

// Mode is the scale family of a piece
type Mode int

const (
	ModeMajor Mode = iota
	ModeMinor
)

func (m Mode) String() string {
	if m == ModeMinor {
		return "minor"
	}
	return "major"
}

// Timbre selects the synthesis oscillator
type Timbre string

const (
	TimbreSine   Timbre = "sine"
	TimbreSaw    Timbre = "saw"
	TimbreSquare Timbre = "square"
)

// ParseTimbre validates an instrument name
func ParseTimbre(s string) (Timbre, error) {
	switch Timbre(s) {
	case TimbreSine, TimbreSaw, TimbreSquare:
		return Timbre(s), nil
	}
	return "", fmt.Errorf("unknown instrument %q (want sine, saw or square)", s)
}

// Tempo plausibility bounds in BPM
const (
	TempoMin = 40.0
	TempoMax = 220.0
)

// Parameters are the musical parameters every modality maps onto. All fields
// are total-ordered or enumerated; there is no unset state - the mapper
// always starts from documented defaults.
type Parameters struct {
	TonalCenter       int     `json:"tonal_center"`       // MIDI root note
	Mode              Mode    `json:"mode"`               // major/minor
	TempoBPM          float64 `json:"tempo_bpm"`          // clamped to [40, 220]
	NoteDensity       float64 `json:"note_density"`       // [0, 1]
	DynamicsRange     float64 `json:"dynamics_range"`     // [0, 1]
	RhythmVariability float64 `json:"rhythm_variability"` // [0, 1]
	Timbre            Timbre  `json:"timbre"`
}

// defaultParameters is the rule-table starting point: a moderate major piece
func defaultParameters() Parameters {
	return Parameters{
		TonalCenter:       64, // E4
		Mode:              ModeMajor,
		TempoBPM:          110,
		NoteDensity:       0.5,
		DynamicsRange:     0.5,
		RhythmVariability: 0.3,
		Timbre:            TimbreSine,
	}
}
