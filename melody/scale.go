package melody

import (
	"github.com/xmodal/xmodal/mapping"
)

// Diatonic scale machinery. A contour walk works in scale degrees; this file
// resolves degrees to MIDI pitches.

var (
	majorSteps = [7]int{0, 2, 4, 5, 7, 9, 11}
	minorSteps = [7]int{0, 2, 3, 5, 7, 8, 10} // natural minor
)

// ScaleSteps returns the semitone offsets of the seven diatonic degrees
func ScaleSteps(mode mapping.Mode) [7]int {
	if mode == mapping.ModeMinor {
		return minorSteps
	}
	return majorSteps
}

// DegreeToMIDI resolves (root, diatonic degree) to an absolute MIDI pitch.
// Degrees outside 0..6 wrap across octaves, so a walk can roam freely.
func DegreeToMIDI(root, degree int, mode mapping.Mode) int {
	steps := ScaleSteps(mode)

	octave := floorDiv(degree, 7)
	idx := degree - octave*7

	return root + steps[idx] + 12*octave
}

// floorDiv is integer division rounding toward negative infinity
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// clampPitch keeps a pitch inside the playable range
func clampPitch(pitch int) int {
	if pitch < PitchMin {
		return PitchMin
	}
	if pitch > PitchMax {
		return PitchMax
	}
	return pitch
}
