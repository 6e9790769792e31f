package analysis

import (
	"math"
	"math/rand"
	"testing"

	"github.com/xmodal/xmodal/audio"
	"github.com/xmodal/xmodal/feature"
	"github.com/xmodal/xmodal/logging"
)

const testSampleRate = 44100

func sineBuffer(t *testing.T, freq, durationSec, amplitude float64) audio.Buffer {
	t.Helper()
	n := int(durationSec * testSampleRate)
	samples := make([]float64, n)
	for i := range n {
		samples[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/testSampleRate)
	}
	buf, err := audio.NewBuffer(samples, testSampleRate, 1)
	if err != nil {
		t.Fatalf("NewBuffer failed: %v", err)
	}
	return buf
}

func silenceBuffer(t *testing.T, durationSec float64) audio.Buffer {
	t.Helper()
	buf, err := audio.NewBuffer(make([]float64, int(durationSec*testSampleRate)), testSampleRate, 1)
	if err != nil {
		t.Fatalf("NewBuffer failed: %v", err)
	}
	return buf
}

// clickBuffer places short noise bursts at a fixed period, giving a clean
// onset train for tempo estimation
func clickBuffer(t *testing.T, periodSec, durationSec float64) audio.Buffer {
	t.Helper()
	rng := rand.New(rand.NewSource(1))
	n := int(durationSec * testSampleRate)
	samples := make([]float64, n)

	burstLen := testSampleRate / 100 // 10 ms
	for start := 0; start+burstLen < n; start += int(periodSec * testSampleRate) {
		for i := 0; i < burstLen; i++ {
			decay := 1.0 - float64(i)/float64(burstLen)
			samples[start+i] = 0.9 * decay * (2*rng.Float64() - 1)
		}
	}
	buf, err := audio.NewBuffer(samples, testSampleRate, 1)
	if err != nil {
		t.Fatalf("NewBuffer failed: %v", err)
	}
	return buf
}

func TestAnalyzeRejectsEmptyBuffer(t *testing.T) {
	a := NewAnalyzer(logging.NewNoOpLogger())
	if _, err := a.Analyze(audio.Buffer{}); err == nil {
		t.Error("expected error for zero-length buffer")
	}
}

func TestAnalyzeSilenceFallbacks(t *testing.T) {
	a := NewAnalyzer(logging.NewNoOpLogger())
	f, err := a.Analyze(silenceBuffer(t, 2.0))
	if err != nil {
		t.Fatalf("silence is valid input, got error: %v", err)
	}

	checks := []struct {
		name string
		got  float64
	}{
		{"rms", f.Loudness.RMS},
		{"peak", f.Loudness.Peak},
		{"crest", f.Loudness.Crest},
		{"centroid", f.Spectrum.Centroid},
		{"flatness", f.Spectrum.Flatness},
		{"amplitude entropy", f.Entropy.Amplitude},
		{"spectral entropy", f.Entropy.Spectral},
		{"onset rate", f.Rhythm.OnsetRate},
		{"tempo", f.Rhythm.TempoBPM},
		{"f0 mean", f.Pitch.F0Mean},
		{"voiced ratio", f.Pitch.VoicedRatio},
	}
	for _, c := range checks {
		if math.IsNaN(c.got) || math.IsInf(c.got, 0) {
			t.Errorf("%s is not finite: %g", c.name, c.got)
		}
		if c.got != 0 {
			t.Errorf("%s = %g, want 0 for silence", c.name, c.got)
		}
	}
}

func TestAnalyzePureSine(t *testing.T) {
	a := NewAnalyzer(logging.NewNoOpLogger())
	f, err := a.Analyze(sineBuffer(t, 440, 2.0, 1.0))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if math.Abs(f.Pitch.F0Mean-440) > 5 {
		t.Errorf("f0_mean = %g, want 440 +/- 5", f.Pitch.F0Mean)
	}
	if f.Pitch.VoicedRatio < 0.9 {
		t.Errorf("voiced_ratio = %g, want > 0.9 for a sustained tone", f.Pitch.VoicedRatio)
	}
	if f.Pitch.F0Std > 10 {
		t.Errorf("f0_std = %g, want a stable pitch track", f.Pitch.F0Std)
	}

	// Full-scale sine: RMS 1/sqrt2, crest factor sqrt2
	if math.Abs(f.Loudness.RMS-1/math.Sqrt2) > 0.01 {
		t.Errorf("rms = %g, want %g", f.Loudness.RMS, 1/math.Sqrt2)
	}
	if math.Abs(f.Loudness.Crest-math.Sqrt2) > 0.02 {
		t.Errorf("crest = %g, want %g", f.Loudness.Crest, math.Sqrt2)
	}

	// Energy concentrates around the fundamental
	if f.Spectrum.Centroid < 300 || f.Spectrum.Centroid > 700 {
		t.Errorf("centroid = %g, want near 440", f.Spectrum.Centroid)
	}
	if f.Spectrum.Rolloff < 400 || f.Spectrum.Rolloff > 600 {
		t.Errorf("rolloff = %g, want near 440", f.Spectrum.Rolloff)
	}
	if f.Spectrum.Flatness > 0.2 {
		t.Errorf("flatness = %g, want low for a pure tone", f.Spectrum.Flatness)
	}

	// A steady tone has no onsets to build a tempo from; spectral jitter
	// between frames must not read as rhythm
	if f.Rhythm.OnsetRate != 0 {
		t.Errorf("onset rate = %g, want 0 for a steady tone", f.Rhythm.OnsetRate)
	}
	if f.Rhythm.TempoBPM != 0 {
		t.Errorf("tempo = %g, want 0 for a steady tone", f.Rhythm.TempoBPM)
	}
}

func TestAnalyzeClickTrainTempo(t *testing.T) {
	a := NewAnalyzer(logging.NewNoOpLogger())
	f, err := a.Analyze(clickBuffer(t, 0.5, 4.0)) // 120 BPM pulse
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if f.Rhythm.TempoBPM < 105 || f.Rhythm.TempoBPM > 135 {
		t.Errorf("tempo = %g, want near 120", f.Rhythm.TempoBPM)
	}
	// Eight bursts over four seconds
	if f.Rhythm.OnsetRate < 1.5 || f.Rhythm.OnsetRate > 2.5 {
		t.Errorf("onset rate = %g, want near 2", f.Rhythm.OnsetRate)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	a := NewAnalyzer(logging.NewNoOpLogger())
	buf := clickBuffer(t, 0.4, 3.0)

	first, err := a.Analyze(buf)
	if err != nil {
		t.Fatalf("first analysis failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		f, err := a.Analyze(buf)
		if err != nil {
			t.Fatalf("analysis %d failed: %v", i, err)
		}
		if f != first {
			t.Fatalf("analysis %d differs:\n%+v\n%+v", i, f, first)
		}
	}
}

func TestAnalyzeShortBuffer(t *testing.T) {
	a := NewAnalyzer(logging.NewNoOpLogger())

	// Shorter than one analysis window: spectral features stay zero but
	// loudness still works
	buf, err := audio.NewBuffer([]float64{0.5, -0.5, 0.5, -0.5}, testSampleRate, 1)
	if err != nil {
		t.Fatalf("NewBuffer failed: %v", err)
	}
	f, err := a.Analyze(buf)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if f.Loudness.RMS != 0.5 {
		t.Errorf("rms = %g, want 0.5", f.Loudness.RMS)
	}
	if f.Spectrum.Centroid != 0 || f.Rhythm.TempoBPM != 0 {
		t.Error("expected zero spectral features for a sub-window buffer")
	}
}

func TestFeaturesVector(t *testing.T) {
	a := NewAnalyzer(logging.NewNoOpLogger())
	f, err := a.Analyze(sineBuffer(t, 440, 2.0, 1.0))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	vec, err := f.Vector()
	if err != nil {
		t.Fatalf("Vector projection failed: %v", err)
	}

	if vec.Modality() != feature.ModalityAudio {
		t.Errorf("modality = %v, want audio", vec.Modality())
	}

	loudness, ok := vec.Get(feature.MetricLoudness)
	if !ok || math.Abs(loudness-1/math.Sqrt2) > 0.01 {
		t.Errorf("loudness = %g, want %g", loudness, 1/math.Sqrt2)
	}

	// A4 sits at MIDI 69, i.e. (69-36)/60 on the normalized axis
	pitchHeight, ok := vec.Get(feature.MetricPitchHeight)
	if !ok || math.Abs(pitchHeight-0.55) > 0.01 {
		t.Errorf("pitch_height = %g, want 0.55", pitchHeight)
	}

	// No detected pulse projects to zero, not an error
	pulse, ok := vec.Get(feature.MetricPulseRate)
	if !ok || pulse != 0 {
		t.Errorf("pulse_rate = %g, want 0", pulse)
	}
}

func TestFeaturesVectorSilence(t *testing.T) {
	a := NewAnalyzer(logging.NewNoOpLogger())
	f, err := a.Analyze(silenceBuffer(t, 1.0))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	vec, err := f.Vector()
	if err != nil {
		t.Fatalf("silence must project to a valid vector: %v", err)
	}
	for _, m := range vec.Metrics() {
		v, _ := vec.Get(m)
		if v != 0 {
			t.Errorf("metric %s = %g, want 0 for silence", m, v)
		}
	}
}
