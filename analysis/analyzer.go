package analysis

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/xmodal/xmodal/audio"
	"github.com/xmodal/xmodal/dsp"
	"github.com/xmodal/xmodal/logging"
)

// Analyzer extracts the full feature-metric report from an audio buffer.
// Stateless across calls; safe for reuse.
type Analyzer struct {
	stft   *dsp.STFT
	logger logging.Logger
}

// NewAnalyzer creates an analyzer logging through the given logger.
// A nil logger falls back to the global one.
func NewAnalyzer(logger logging.Logger) *Analyzer {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Analyzer{
		stft:   dsp.NewSTFT(),
		logger: logger,
	}
}

// Analyze computes loudness, spectral, entropy, rhythm and pitch statistics
// for the buffer. A zero-length buffer is structurally invalid; an all-zero
// (silent) buffer is valid and resolves to the documented fallback values.
//
// The feature groups read only the immutable input, so they are computed
// concurrently. Aggregation is per-group, so ordering cannot change results.
func (a *Analyzer) Analyze(buf audio.Buffer) (Features, error) {
	if buf.Len() == 0 {
		return Features{}, fmt.Errorf("zero-length audio buffer")
	}

	mono := buf.Mono()
	samples := mono.Samples()
	sampleRate := mono.SampleRate()

	a.logger.Debug("analysis started", logging.Fields{
		"frames":      mono.Frames(),
		"sample_rate": sampleRate,
		"duration":    mono.Duration(),
	})

	features := Features{sampleRate: sampleRate}

	// Short buffers have no spectral frames; loudness and entropy still apply
	var stft *dsp.STFTResult
	if len(samples) >= windowSize {
		var err error
		stft, err = a.stft.Compute(samples, windowSize, hopSize, sampleRate)
		if err != nil {
			return Features{}, fmt.Errorf("stft: %w", err)
		}
	}

	var g errgroup.Group
	g.Go(func() error {
		features.Loudness = computeLoudness(samples)
		return nil
	})
	g.Go(func() error {
		features.Entropy = computeEntropy(samples, stft)
		return nil
	})
	g.Go(func() error {
		if stft != nil {
			features.Spectrum = computeSpectrum(stft)
		}
		return nil
	})
	g.Go(func() error {
		if stft != nil {
			features.Rhythm = computeRhythm(stft, mono.Duration())
		}
		return nil
	})
	g.Go(func() error {
		features.Pitch = computePitch(samples, sampleRate)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Features{}, err
	}

	a.logger.Debug("analysis finished", logging.Fields{
		"rms":          features.Loudness.RMS,
		"tempo_bpm":    features.Rhythm.TempoBPM,
		"f0_mean":      features.Pitch.F0Mean,
		"voiced_ratio": features.Pitch.VoicedRatio,
	})

	return features, nil
}
