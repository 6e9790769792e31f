package dsp

import "math"

// MIDI <-> frequency helpers (A4 = MIDI 69 = 440 Hz)

// HzToMIDI converts a frequency to a fractional MIDI note number
func HzToMIDI(hz float64) float64 {
	if hz <= 0 {
		return 0
	}
	return 69.0 + 12.0*math.Log2(hz/440.0)
}

// MIDIToHz converts a MIDI note number to a frequency
func MIDIToHz(midi float64) float64 {
	return 440.0 * math.Pow(2.0, (midi-69.0)/12.0)
}
