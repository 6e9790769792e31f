package melody

import (
	"fmt"
	"math"
	"sort"

	"gitlab.com/gomidi/midi/smf"
	"gitlab.com/gomidi/midi/writer"
)

// smfTicksPerQuarter matches the default metric resolution of the SMF writer
const smfTicksPerQuarter = 960.0

// WriteSMF exports the timeline as a single-track standard MIDI file. Note
// and percussion events keep their channels, so drum hits land on the
// conventional channel 10 (index 9).
func (t Timeline) WriteSMF(path string, tempoBPM float64) error {
	if tempoBPM <= 0 {
		return fmt.Errorf("tempo %g must be positive", tempoBPM)
	}

	type midiEvent struct {
		tick    uint32
		noteOn  bool
		channel uint8
		key     uint8
		vel     uint8
	}

	secToTick := func(sec float64) uint32 {
		return uint32(math.Round(sec * tempoBPM / 60.0 * smfTicksPerQuarter))
	}

	evs := make([]midiEvent, 0, t.Len()*2)
	for _, e := range t.events {
		key := uint8(e.Pitch)
		evs = append(evs,
			midiEvent{tick: secToTick(e.Start), noteOn: true, channel: uint8(e.Channel), key: key, vel: uint8(e.Velocity)},
			midiEvent{tick: secToTick(e.End()), channel: uint8(e.Channel), key: key},
		)
	}
	sort.SliceStable(evs, func(i, j int) bool {
		if evs[i].tick != evs[j].tick {
			return evs[i].tick < evs[j].tick
		}
		// NoteOff before NoteOn at the same tick avoids stuck repeats
		return !evs[i].noteOn && evs[j].noteOn
	})

	return writer.WriteSMF(path, 1, func(wr *writer.SMF) error {
		if err := writer.TempoBPM(wr, tempoBPM); err != nil {
			return err
		}

		lastTick := uint32(0)
		for _, ev := range evs {
			wr.SetDelta(ev.tick - lastTick)
			lastTick = ev.tick
			wr.SetChannel(ev.channel)

			var err error
			if ev.noteOn {
				err = writer.NoteOn(wr, ev.key, ev.vel)
			} else {
				err = writer.NoteOff(wr, ev.key)
			}
			if err != nil {
				return err
			}
		}
		// Closing the last track reports smf.ErrFinished, which is the
		// library's success sentinel, not a failure
		if err := writer.EndOfTrack(wr); err != nil && err != smf.ErrFinished {
			return err
		}
		return nil
	})
}
