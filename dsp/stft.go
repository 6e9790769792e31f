package dsp

import (
	"fmt"
	"math/cmplx"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// STFT provides Short-Time Fourier Transform functionality
type STFT struct {
	fft *FFT
}

// STFTResult holds the magnitude spectrogram of an STFT analysis
type STFTResult struct {
	Magnitude      [][]float64 `json:"magnitude"`       // Time x Frequency magnitude matrix
	TimeFrames     int         `json:"time_frames"`     // Number of time frames
	FreqBins       int         `json:"freq_bins"`       // Number of frequency bins
	SampleRate     int         `json:"sample_rate"`     // Sample rate
	WindowSize     int         `json:"window_size"`     // FFT window size
	HopSize        int         `json:"hop_size"`        // Hop size between frames
	FreqResolution float64     `json:"freq_resolution"` // Frequency resolution (Hz/bin)
	TimeResolution float64     `json:"time_resolution"` // Time resolution (seconds/frame)
}

// NewSTFT creates a new STFT calculator
func NewSTFT() *STFT {
	return &STFT{
		fft: NewFFT(),
	}
}

// Compute computes the magnitude spectrogram of signal with a Hann taper.
// Frames are independent, so they are processed by a bounded worker group;
// each frame writes only its own row of the result matrix.
func (s *STFT) Compute(signal []float64, windowSize, hopSize, sampleRate int) (*STFTResult, error) {
	if len(signal) == 0 {
		return nil, fmt.Errorf("empty signal")
	}
	if windowSize <= 0 {
		return nil, fmt.Errorf("window size must be positive")
	}
	if hopSize <= 0 {
		return nil, fmt.Errorf("hop size must be positive")
	}

	numFrames := (len(signal)-windowSize)/hopSize + 1
	if numFrames <= 0 {
		return nil, fmt.Errorf("signal too short for window size %d", windowSize)
	}

	// Positive frequencies only
	freqBins := windowSize/2 + 1

	magnitude := make([][]float64, numFrames)
	for i := range numFrames {
		magnitude[i] = make([]float64, freqBins)
	}

	window := NewHannWindow(windowSize, false)

	var g errgroup.Group
	g.SetLimit(optimalWorkerCount(numFrames))

	for frameIdx := range numFrames {
		start := frameIdx * hopSize
		row := magnitude[frameIdx]
		g.Go(func() error {
			frame := make([]float64, windowSize)
			copy(frame, signal[start:start+windowSize])
			if err := window.ApplyInPlace(frame); err != nil {
				return err
			}

			spectrum := s.fft.Compute(frame)
			for i := range freqBins {
				row[i] = cmplx.Abs(spectrum[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &STFTResult{
		Magnitude:      magnitude,
		TimeFrames:     numFrames,
		FreqBins:       freqBins,
		SampleRate:     sampleRate,
		WindowSize:     windowSize,
		HopSize:        hopSize,
		FreqResolution: float64(sampleRate) / float64(windowSize),
		TimeResolution: float64(hopSize) / float64(sampleRate),
	}, nil
}

// FrameTime returns the center time (seconds) of the given frame index
func (r *STFTResult) FrameTime(frameIdx int) float64 {
	center := frameIdx*r.HopSize + r.WindowSize/2
	return float64(center) / float64(r.SampleRate)
}

func optimalWorkerCount(numFrames int) int {
	workers := runtime.NumCPU()
	if numFrames < workers {
		workers = numFrames
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}
