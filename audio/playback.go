package audio

import (
	"fmt"
	"math"

	"github.com/hajimehoshi/oto"
)

const playbackBufferSize = 4096

// Play renders the buffer to the default audio device and blocks until done
func Play(buf Buffer) error {
	if buf.Len() == 0 {
		return fmt.Errorf("cannot play an empty buffer")
	}

	const bitDepthInBytes = 2
	ctx, err := oto.NewContext(buf.SampleRate(), buf.Channels(), bitDepthInBytes, playbackBufferSize)
	if err != nil {
		return fmt.Errorf("opening audio device: %w", err)
	}
	defer ctx.Close()

	player := ctx.NewPlayer()
	defer player.Close()

	samples := buf.Samples()
	pcm := make([]byte, len(samples)*bitDepthInBytes)
	for i, s := range samples {
		v := int16(math.Max(-1.0, math.Min(1.0, s)) * 32767.0)
		pcm[i*2] = byte(v)
		pcm[i*2+1] = byte(v >> 8)
	}

	if _, err := player.Write(pcm); err != nil {
		return fmt.Errorf("writing to audio device: %w", err)
	}
	return nil
}
