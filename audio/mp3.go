package audio

import (
	"fmt"
	"io"

	mp3 "github.com/hajimehoshi/go-mp3"
)

// DecodeMP3 decodes an MP3 stream into a Buffer. go-mp3 always emits
// 16-bit little-endian stereo PCM at the source sample rate.
func DecodeMP3(r io.Reader) (Buffer, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return Buffer{}, fmt.Errorf("mp3 decode failed: %w", err)
	}

	var samples []float64
	buf := make([]byte, 8192)
	for {
		n, err := decoder.Read(buf)
		if n > 0 {
			for i := 0; i+1 < n; i += 2 {
				v := int16(buf[i]) | int16(buf[i+1])<<8
				samples = append(samples, float64(v)/32768.0)
			}
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return Buffer{}, fmt.Errorf("mp3 read failed: %w", err)
		}
	}

	if len(samples) == 0 {
		return Buffer{}, fmt.Errorf("mp3 stream contains no samples")
	}

	return NewBuffer(samples, decoder.SampleRate(), 2)
}
