package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/xmodal/xmodal/audio"
	"github.com/xmodal/xmodal/logging"
	"github.com/xmodal/xmodal/mapping"
	"github.com/xmodal/xmodal/melody"
)

func testPipeline() *Pipeline {
	return New(logging.NewNoOpLogger())
}

func TestTextToAudioRegression(t *testing.T) {
	// A mildly melancholic phrase: net-negative lexicon hits select the
	// minor mode at the slow tempo, one note per word
	const text = "un apus rece peste blocuri, noapte caldă dar un pic tristă"

	res, err := testPipeline().TextToAudio(text, DefaultOptions())
	if err != nil {
		t.Fatalf("TextToAudio failed: %v", err)
	}

	if res.Params.Mode != mapping.ModeMinor {
		t.Errorf("mode = %v, want minor", res.Params.Mode)
	}
	if math.Abs(res.Params.TempoBPM-85) > 1e-9 {
		t.Errorf("tempo = %g, want 85", res.Params.TempoBPM)
	}
	if res.Params.TonalCenter != 62 {
		t.Errorf("tonal center = %d, want 62", res.Params.TonalCenter)
	}
	if got := res.Timeline.CountKind(melody.KindNote); got != 11 {
		t.Errorf("note count = %d, want 11 (one per word)", got)
	}
	if res.Audio.Len() == 0 {
		t.Error("no audio rendered")
	}
	if res.RunID == "" {
		t.Error("run ID missing")
	}
}

func TestTextToAudioDeterministic(t *testing.T) {
	const text = "storm over the harbor, calm by dawn"
	opts := DefaultOptions()
	opts.Seed = 99
	opts.Percussion = true

	p := testPipeline()
	a, err := p.TextToAudio(text, opts)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	b, err := p.TextToAudio(text, opts)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	ja, err := MarshalTimeline(a.Timeline)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	jb, err := MarshalTimeline(b.Timeline)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !bytes.Equal(ja, jb) {
		t.Error("identical input and seed produced different timeline JSON")
	}

	sa, sb := a.Audio.Samples(), b.Audio.Samples()
	if len(sa) != len(sb) {
		t.Fatalf("audio lengths differ: %d != %d", len(sa), len(sb))
	}
	for i := range sa {
		if math.Abs(sa[i]-sb[i]) > 1e-9 {
			t.Fatalf("audio differs at sample %d", i)
		}
	}
}

func TestTextToAudioEmptyText(t *testing.T) {
	res, err := testPipeline().TextToAudio("", DefaultOptions())
	if err != nil {
		t.Fatalf("empty text should degrade to a minimal piece: %v", err)
	}
	if got := res.Timeline.CountKind(melody.KindNote); got != 1 {
		t.Errorf("note count = %d, want 1", got)
	}
	if res.Audio.Len() == 0 {
		t.Error("no audio rendered")
	}
}

func TestImageToAudio(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{B: 255, A: 255})
		}
	}

	res, err := testPipeline().ImageToAudio(img, DefaultOptions())
	if err != nil {
		t.Fatalf("ImageToAudio failed: %v", err)
	}

	// Pure blue: cool band selects minor, the hue wheel puts the root at 56
	if res.Params.Mode != mapping.ModeMinor {
		t.Errorf("mode = %v, want minor", res.Params.Mode)
	}
	if res.Params.TonalCenter != 56 {
		t.Errorf("tonal center = %d, want 56", res.Params.TonalCenter)
	}
	if res.Timeline.Len() == 0 || res.Audio.Len() == 0 {
		t.Error("empty timeline or audio")
	}
}

func TestOptionOverrides(t *testing.T) {
	const text = "un apus rece peste blocuri, noapte caldă dar un pic tristă"

	opts := DefaultOptions()
	opts.Mood = MoodMajor
	opts.TempoBPM = 140
	opts.Instrument = "square"

	res, err := testPipeline().TextToAudio(text, opts)
	if err != nil {
		t.Fatalf("TextToAudio failed: %v", err)
	}

	if res.Params.Mode != mapping.ModeMajor {
		t.Errorf("mood override ignored: mode = %v", res.Params.Mode)
	}
	if res.Params.TempoBPM != 140 {
		t.Errorf("tempo override ignored: %g", res.Params.TempoBPM)
	}
	if res.Params.Timbre != mapping.TimbreSquare {
		t.Errorf("instrument override ignored: %v", res.Params.Timbre)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
		kind   error
		stage  Stage
	}{
		{"unknown instrument", func(o *Options) { o.Instrument = "theremin" }, ErrUnsupportedConfiguration, StageMapping},
		{"unknown mood", func(o *Options) { o.Mood = "wistful" }, ErrUnsupportedConfiguration, StageMapping},
		{"negative tempo", func(o *Options) { o.TempoBPM = -10 }, ErrInvalidInput, StageMapping},
		{"jumpiness out of range", func(o *Options) { o.Jumpiness = 2 }, ErrInvalidInput, StageTimeline},
		{"zero sample rate", func(o *Options) { o.SampleRate = 0 }, ErrInvalidInput, StageSynthesis},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)

			err := opts.Validate()
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !errors.Is(err, tt.kind) {
				t.Errorf("error kind = %v, want %v", err, tt.kind)
			}
			var perr *Error
			if !errors.As(err, &perr) {
				t.Fatalf("error %T does not carry a stage", err)
			}
			if perr.Stage != tt.stage {
				t.Errorf("stage = %s, want %s", perr.Stage, tt.stage)
			}
		})
	}

	if err := DefaultOptions().Validate(); err != nil {
		t.Errorf("default options should validate: %v", err)
	}
}

func TestTempoOverrideClamped(t *testing.T) {
	opts := DefaultOptions()
	opts.TempoBPM = 1000

	res, err := testPipeline().TextToAudio("hello", opts)
	if err != nil {
		t.Fatalf("TextToAudio failed: %v", err)
	}
	if res.Params.TempoBPM != mapping.TempoMax {
		t.Errorf("tempo = %g, want clamped to %g", res.Params.TempoBPM, mapping.TempoMax)
	}
}

func TestAudioFeaturesRejectsEmpty(t *testing.T) {
	_, err := testPipeline().AudioFeatures(audio.Buffer{})
	if err == nil {
		t.Fatal("expected error for empty buffer")
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("error kind = %v, want ErrInvalidInput", err)
	}
	var perr *Error
	if !errors.As(err, &perr) || perr.Stage != StageAnalysis {
		t.Errorf("expected analysis-stage error, got %v", err)
	}
}

func TestAudioFeaturesSine(t *testing.T) {
	const rate = 44100
	samples := make([]float64, 2*rate)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * 440 * float64(i) / rate)
	}
	buf, err := audio.NewBuffer(samples, rate, 1)
	if err != nil {
		t.Fatalf("NewBuffer failed: %v", err)
	}

	f, err := testPipeline().AudioFeatures(buf)
	if err != nil {
		t.Fatalf("AudioFeatures failed: %v", err)
	}

	if math.Abs(f.Pitch.F0Mean-440) > 5 {
		t.Errorf("f0_mean = %g, want 440 +/- 5", f.Pitch.F0Mean)
	}
	if f.Pitch.VoicedRatio < 0.9 {
		t.Errorf("voiced_ratio = %g, want near 1", f.Pitch.VoicedRatio)
	}

	// The metrics report must round-trip through JSON deterministically
	a, err := MarshalMetrics(f)
	if err != nil {
		t.Fatalf("MarshalMetrics failed: %v", err)
	}
	b, _ := MarshalMetrics(f)
	if !bytes.Equal(a, b) {
		t.Error("metric JSON not deterministic")
	}

	// The wire shape is part of the report contract: each group carries
	// exactly its documented fields
	var report map[string]map[string]float64
	if err := json.Unmarshal(a, &report); err != nil {
		t.Fatalf("metrics JSON did not decode: %v", err)
	}
	spectrumKeys := []string{"centroid", "centroid_std", "rolloff", "flatness", "bandwidth"}
	if len(report["spectrum"]) != len(spectrumKeys) {
		t.Errorf("spectrum group has %d fields, want %d", len(report["spectrum"]), len(spectrumKeys))
	}
	for _, key := range spectrumKeys {
		if _, ok := report["spectrum"][key]; !ok {
			t.Errorf("spectrum group missing %q", key)
		}
	}
}

func TestAudioToAudioRoundTrip(t *testing.T) {
	// Render a known tone, reinterpret it, and check the tonal center the
	// mapper recovers from the analyzed pitch
	const rate = 44100
	samples := make([]float64, 2*rate)
	for i := range samples {
		samples[i] = 0.8 * math.Sin(2*math.Pi*440*float64(i)/rate)
	}
	buf, err := audio.NewBuffer(samples, rate, 1)
	if err != nil {
		t.Fatalf("NewBuffer failed: %v", err)
	}

	res, err := testPipeline().AudioToAudio(buf, DefaultOptions())
	if err != nil {
		t.Fatalf("AudioToAudio failed: %v", err)
	}

	// A4 maps straight back onto MIDI 69
	if res.Params.TonalCenter < 68 || res.Params.TonalCenter > 70 {
		t.Errorf("tonal center = %d, want 69 +/- 1", res.Params.TonalCenter)
	}
	if res.Audio.Len() == 0 {
		t.Error("no audio rendered")
	}
}

func TestErrorMessageShape(t *testing.T) {
	err := newError(StageSynthesis, ErrUnsupportedConfiguration, `instrument="theremin"`, nil)

	msg := err.Error()
	for _, want := range []string{"synthesis", "unsupported configuration", "theremin"} {
		if !bytes.Contains([]byte(msg), []byte(want)) {
			t.Errorf("error message %q missing %q", msg, want)
		}
	}
	if errors.Is(err, ErrInvalidInput) {
		t.Error("error matches the wrong kind")
	}
}
