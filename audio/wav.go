package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// WAV container framing. 16-bit PCM on the write side; 16/24/32-bit integer
// and 32-bit float PCM on the read side.

const (
	wavFormatPCM   = 1
	wavFormatFloat = 3
)

type wavFormat struct {
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

// EncodeWAV writes the buffer as a 16-bit PCM WAV stream
func EncodeWAV(w io.Writer, buf Buffer) error {
	samples := buf.Samples()
	numChannels := uint16(buf.Channels())
	sampleRate := uint32(buf.SampleRate())
	bitsPerSample := uint16(16)

	dataSize := uint32(len(samples) * 2)
	blockAlign := numChannels * bitsPerSample / 8

	// RIFF header
	if _, err := w.Write([]byte("RIFF")); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(36+dataSize)); err != nil {
		return err
	}
	if _, err := w.Write([]byte("WAVE")); err != nil {
		return err
	}

	// fmt chunk
	if _, err := w.Write([]byte("fmt ")); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(16)); err != nil {
		return err
	}
	format := wavFormat{
		AudioFormat:   wavFormatPCM,
		NumChannels:   numChannels,
		SampleRate:    sampleRate,
		ByteRate:      sampleRate * uint32(blockAlign),
		BlockAlign:    blockAlign,
		BitsPerSample: bitsPerSample,
	}
	if err := binary.Write(w, binary.LittleEndian, format); err != nil {
		return err
	}

	// data chunk
	if _, err := w.Write([]byte("data")); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, dataSize); err != nil {
		return err
	}

	pcm := make([]int16, len(samples))
	for i, s := range samples {
		clamped := math.Max(-1.0, math.Min(1.0, s))
		pcm[i] = int16(clamped * 32767.0)
	}
	return binary.Write(w, binary.LittleEndian, pcm)
}

// DecodeWAV parses a WAV stream into a Buffer
func DecodeWAV(r io.Reader) (Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Buffer{}, fmt.Errorf("reading wav stream: %w", err)
	}
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return Buffer{}, fmt.Errorf("not a valid WAV file (missing RIFF/WAVE header)")
	}

	var format wavFormat
	var pcmData []byte
	haveFormat := false

	// Walk the chunk list; only fmt and data matter here
	pos := 12
	for pos+8 <= len(data) {
		chunkID := string(data[pos : pos+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		if body+chunkSize > len(data) {
			chunkSize = len(data) - body
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return Buffer{}, fmt.Errorf("malformed fmt chunk (size %d)", chunkSize)
			}
			if err := binary.Read(bytes.NewReader(data[body:body+16]), binary.LittleEndian, &format); err != nil {
				return Buffer{}, err
			}
			haveFormat = true
		case "data":
			pcmData = data[body : body+chunkSize]
		}

		// Chunks are word-aligned
		pos = body + chunkSize
		if chunkSize%2 == 1 {
			pos++
		}
	}

	if !haveFormat {
		return Buffer{}, fmt.Errorf("WAV file has no fmt chunk")
	}
	if pcmData == nil {
		return Buffer{}, fmt.Errorf("WAV file has no data chunk")
	}

	samples, err := decodePCM(pcmData, format)
	if err != nil {
		return Buffer{}, err
	}

	return NewBuffer(samples, int(format.SampleRate), int(format.NumChannels))
}

func decodePCM(data []byte, format wavFormat) ([]float64, error) {
	switch {
	case format.AudioFormat == wavFormatPCM && format.BitsPerSample == 16:
		n := len(data) / 2
		samples := make([]float64, n)
		for i := range n {
			v := int16(binary.LittleEndian.Uint16(data[i*2:]))
			samples[i] = float64(v) / 32768.0
		}
		return samples, nil

	case format.AudioFormat == wavFormatPCM && format.BitsPerSample == 24:
		n := len(data) / 3
		samples := make([]float64, n)
		for i := range n {
			b := data[i*3 : i*3+3]
			v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
			if v&0x800000 != 0 {
				v |= ^int32(0xffffff) // sign extend
			}
			samples[i] = float64(v) / 8388608.0
		}
		return samples, nil

	case format.AudioFormat == wavFormatPCM && format.BitsPerSample == 32:
		n := len(data) / 4
		samples := make([]float64, n)
		for i := range n {
			v := int32(binary.LittleEndian.Uint32(data[i*4:]))
			samples[i] = float64(v) / 2147483648.0
		}
		return samples, nil

	case format.AudioFormat == wavFormatFloat && format.BitsPerSample == 32:
		n := len(data) / 4
		samples := make([]float64, n)
		for i := range n {
			bits := binary.LittleEndian.Uint32(data[i*4:])
			samples[i] = float64(math.Float32frombits(bits))
		}
		return samples, nil
	}

	return nil, fmt.Errorf("unsupported WAV encoding: format %d, %d bits per sample",
		format.AudioFormat, format.BitsPerSample)
}
