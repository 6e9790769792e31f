package mapping

import (
	"math"
	"testing"

	"github.com/xmodal/xmodal/feature"
)

func mustVector(t *testing.T, modality feature.Modality, values map[feature.Metric]float64) feature.Vector {
	t.Helper()
	v, err := feature.NewVector(modality, values)
	if err != nil {
		t.Fatalf("NewVector failed: %v", err)
	}
	return v
}

func TestTransformEval(t *testing.T) {
	tests := []struct {
		name      string
		transform Transform
		x         float64
		want      float64
	}{
		{"linear midpoint", Transform{Kind: TransformLinear, InLo: 0, InHi: 1, OutLo: 60, OutHi: 180}, 0.5, 120},
		{"linear clamps low", Transform{Kind: TransformLinear, InLo: 0, InHi: 1, OutLo: 60, OutHi: 180}, -2, 60},
		{"linear clamps high", Transform{Kind: TransformLinear, InLo: 0, InHi: 1, OutLo: 60, OutHi: 180}, 5, 180},
		{"linear degenerate domain", Transform{Kind: TransformLinear, InLo: 1, InHi: 1, OutLo: 7, OutHi: 9}, 1, 7},
		{"step below", Transform{Kind: TransformStep, Cut: 0, Below: 85, Above: 110}, -0.3, 85},
		{"step at cut", Transform{Kind: TransformStep, Cut: 0, Below: 85, Above: 110}, 0, 110},
		{"band inside", Transform{Kind: TransformBand, BandLo: 160, BandHi: 260, Inside: 1, Outside: 0}, 200, 1},
		{"band at edge", Transform{Kind: TransformBand, BandLo: 160, BandHi: 260, Inside: 1, Outside: 0}, 160, 1},
		{"band outside", Transform{Kind: TransformBand, BandLo: 160, BandHi: 260, Inside: 1, Outside: 0}, 300, 0},
		{"wheel zero", Transform{Kind: TransformWheel, Base: 48, StepDeg: 30, Steps: 12}, 0, 48},
		{"wheel blue", Transform{Kind: TransformWheel, Base: 48, StepDeg: 30, Steps: 12}, 240, 56},
		{"wheel wraps", Transform{Kind: TransformWheel, Base: 48, StepDeg: 30, Steps: 12}, 390, 49},
		{"tiers low", Transform{Kind: TransformTiers, Cut: 0.35, Cut2: 0.7}, 0.1, 0},
		{"tiers mid", Transform{Kind: TransformTiers, Cut: 0.35, Cut2: 0.7}, 0.5, 1},
		{"tiers high", Transform{Kind: TransformTiers, Cut: 0.35, Cut2: 0.7}, 0.9, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.transform.Eval(tt.x); got != tt.want {
				t.Errorf("Eval(%g) = %g, want %g", tt.x, got, tt.want)
			}
		})
	}
}

func TestMapSentiment(t *testing.T) {
	tests := []struct {
		name      string
		sentiment float64
		wantMode  Mode
		wantTempo float64
		wantRoot  int
	}{
		{"negative", -0.76, ModeMinor, 85, 62},
		{"positive", 0.76, ModeMajor, 110, 64},
		{"zero counts as non-negative", 0, ModeMajor, 110, 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := mustVector(t, feature.ModalityText, map[feature.Metric]float64{
				feature.MetricSentiment: tt.sentiment,
			})
			params := Map(v)

			if params.Mode != tt.wantMode {
				t.Errorf("mode = %v, want %v", params.Mode, tt.wantMode)
			}
			if params.TempoBPM != tt.wantTempo {
				t.Errorf("tempo = %g, want %g", params.TempoBPM, tt.wantTempo)
			}
			if params.TonalCenter != tt.wantRoot {
				t.Errorf("tonal center = %d, want %d", params.TonalCenter, tt.wantRoot)
			}
		})
	}
}

func TestMapHueWheel(t *testing.T) {
	v := mustVector(t, feature.ModalityImage, map[feature.Metric]float64{
		feature.MetricHue: 240, // pure blue
	})
	params := Map(v)

	if params.TonalCenter != 56 {
		t.Errorf("tonal center = %d, want 56", params.TonalCenter)
	}
	// Blue sits inside the cool band
	if params.Mode != ModeMinor {
		t.Errorf("mode = %v, want minor", params.Mode)
	}

	warm := Map(mustVector(t, feature.ModalityImage, map[feature.Metric]float64{
		feature.MetricHue: 20,
	}))
	if warm.Mode != ModeMajor {
		t.Errorf("warm hue mode = %v, want major", warm.Mode)
	}
}

func TestMapBrightnessTempoMonotone(t *testing.T) {
	prev := math.Inf(-1)
	for b := 0.0; b <= 1.0; b += 0.05 {
		v := mustVector(t, feature.ModalityImage, map[feature.Metric]float64{
			feature.MetricBrightness: b,
		})
		tempo := Map(v).TempoBPM
		if tempo < prev {
			t.Fatalf("tempo not monotone: brightness %g gave %g after %g", b, tempo, prev)
		}
		prev = tempo
	}
}

func TestMapContrastDynamicsMonotone(t *testing.T) {
	prev := math.Inf(-1)
	for c := 0.0; c <= 1.0; c += 0.05 {
		v := mustVector(t, feature.ModalityImage, map[feature.Metric]float64{
			feature.MetricContrast: c,
		})
		dyn := Map(v).DynamicsRange
		if dyn < prev {
			t.Fatalf("dynamics not monotone: contrast %g gave %g after %g", c, dyn, prev)
		}
		prev = dyn
	}
}

func TestMapFlatnessTimbre(t *testing.T) {
	tests := []struct {
		flatness float64
		want     Timbre
	}{
		{0.1, TimbreSine},
		{0.5, TimbreSaw},
		{0.9, TimbreSquare},
	}

	for _, tt := range tests {
		v := mustVector(t, feature.ModalityAudio, map[feature.Metric]float64{
			feature.MetricFlatness: tt.flatness,
		})
		if got := Map(v).Timbre; got != tt.want {
			t.Errorf("flatness %g: timbre = %v, want %v", tt.flatness, got, tt.want)
		}
	}
}

func TestMapIdempotent(t *testing.T) {
	v := mustVector(t, feature.ModalityImage, map[feature.Metric]float64{
		feature.MetricHue:        200,
		feature.MetricSaturation: 0.7,
		feature.MetricBrightness: 0.4,
		feature.MetricContrast:   0.6,
	})

	first := Map(v)
	for i := 0; i < 10; i++ {
		if got := Map(v); got != first {
			t.Fatalf("run %d differs: %+v != %+v", i, got, first)
		}
	}
}

func TestMapDefaultsWhenMetricsAbsent(t *testing.T) {
	v := mustVector(t, feature.ModalityAudio, map[feature.Metric]float64{
		feature.MetricLoudness: 0.5,
	})
	params := Map(v)

	want := defaultParameters()
	if params.TonalCenter != want.TonalCenter {
		t.Errorf("tonal center = %d, want default %d", params.TonalCenter, want.TonalCenter)
	}
	if params.Mode != want.Mode {
		t.Errorf("mode = %v, want default %v", params.Mode, want.Mode)
	}
	if params.TempoBPM != want.TempoBPM {
		t.Errorf("tempo = %g, want default %g", params.TempoBPM, want.TempoBPM)
	}
}

func TestMapClampsOutputs(t *testing.T) {
	v := mustVector(t, feature.ModalityAudio, map[feature.Metric]float64{
		feature.MetricPulseRate:   1,
		feature.MetricPitchHeight: 1,
		feature.MetricLoudness:    1,
	})
	params := Map(v)

	if params.TempoBPM < TempoMin || params.TempoBPM > TempoMax {
		t.Errorf("tempo %g outside [%g, %g]", params.TempoBPM, TempoMin, TempoMax)
	}
	if params.TonalCenter < 36 || params.TonalCenter > 96 {
		t.Errorf("tonal center %d outside [36, 96]", params.TonalCenter)
	}
	if params.DynamicsRange < 0 || params.DynamicsRange > 1 {
		t.Errorf("dynamics %g outside [0, 1]", params.DynamicsRange)
	}
}

func TestParseTimbre(t *testing.T) {
	for _, name := range []string{"sine", "saw", "square"} {
		if _, err := ParseTimbre(name); err != nil {
			t.Errorf("ParseTimbre(%q) failed: %v", name, err)
		}
	}
	if _, err := ParseTimbre("theremin"); err == nil {
		t.Error("expected error for unknown instrument")
	}
}
