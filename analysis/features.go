package analysis

import (
	"github.com/xmodal/xmodal/dsp"
	"github.com/xmodal/xmodal/feature"
)

// Analysis constants. Window/hop sizes are in samples; the pitch tracker uses
// a denser hop so short voiced segments still produce enough frames.
const (
	windowSize = 2048
	hopSize    = 512
	pitchHop   = 256

	rolloffThreshold = 0.85 // energy fraction for spectral rolloff

	amplitudeHistogramBins = 64

	// YIN pitch tracking
	pitchMinFreq      = 80.0
	pitchMaxFreq      = 1000.0
	yinThreshold      = 0.1
	minOnsetGapSec    = 0.05
	fluxThresholdBias = 0.5 // multiplier on flux std added to the mean

	// Onsets only count when the raw flux peak clears this fraction of the
	// median frame magnitude; below it the "flux" is numeric jitter
	fluxMagnitudeFloor = 0.01

	// Tempo plausibility range in BPM
	tempoMin = 40.0
	tempoMax = 220.0
)

// LoudnessFeatures summarize signal level over the whole buffer
type LoudnessFeatures struct {
	RMS   float64 `json:"rms"`
	Peak  float64 `json:"peak"`
	Crest float64 `json:"crest"` // peak/RMS, 0 for silence
}

// SpectrumFeatures aggregate per-frame spectral shape as means across frames
type SpectrumFeatures struct {
	Centroid    float64 `json:"centroid"`
	CentroidStd float64 `json:"centroid_std"`
	Rolloff     float64 `json:"rolloff"`
	Flatness    float64 `json:"flatness"`
	Bandwidth   float64 `json:"bandwidth"`
}

// EntropyFeatures measure disorder in the signal, both in the amplitude
// distribution and in the average frame spectrum. Normalized to [0, 1].
type EntropyFeatures struct {
	Spectral  float64 `json:"spectral"`
	Amplitude float64 `json:"amplitude"`
}

// RhythmFeatures summarize onset structure. TempoBPM is 0 when fewer than two
// onsets were detected ("no rhythm" fallback).
type RhythmFeatures struct {
	OnsetRate float64 `json:"onset_rate"` // onsets per second
	TempoBPM  float64 `json:"tempo_bpm"`
}

// PitchFeatures aggregate the frame-wise fundamental estimates of voiced
// frames. All zero when nothing is voiced.
type PitchFeatures struct {
	F0Mean      float64 `json:"f0_mean"`
	F0Std       float64 `json:"f0_std"`
	VoicedRatio float64 `json:"voiced_ratio"`
}

// Features is the full feature-metric report of one analysis run
type Features struct {
	Loudness LoudnessFeatures `json:"loudness"`
	Spectrum SpectrumFeatures `json:"spectrum"`
	Entropy  EntropyFeatures  `json:"entropy"`
	Rhythm   RhythmFeatures   `json:"rhythm"`
	Pitch    PitchFeatures    `json:"pitch"`

	sampleRate int
}

// Vector projects the report onto a normalized feature vector so analysis
// output can feed the mapping layer
func (f Features) Vector() (feature.Vector, error) {
	nyquist := float64(f.sampleRate) / 2.0
	brightness := 0.0
	if nyquist > 0 {
		brightness = dsp.Clamp(f.Spectrum.Centroid/nyquist, 0, 1)
	}

	pitchHeight := 0.0
	if f.Pitch.F0Mean > 0 {
		pitchHeight = dsp.Clamp((dsp.HzToMIDI(f.Pitch.F0Mean)-36.0)/60.0, 0, 1)
	}

	pulseRate := 0.0
	if f.Rhythm.TempoBPM > 0 {
		pulseRate = dsp.Clamp((f.Rhythm.TempoBPM-tempoMin)/(tempoMax-tempoMin), 0, 1)
	}

	return feature.NewVector(feature.ModalityAudio, map[feature.Metric]float64{
		feature.MetricLoudness:    dsp.Clamp(f.Loudness.RMS, 0, 1),
		feature.MetricBrightness:  brightness,
		feature.MetricFlatness:    dsp.Clamp(f.Spectrum.Flatness, 0, 1),
		feature.MetricEntropy:     dsp.Clamp(f.Entropy.Spectral, 0, 1),
		feature.MetricPitchHeight: pitchHeight,
		feature.MetricPulseRate:   pulseRate,
	})
}
