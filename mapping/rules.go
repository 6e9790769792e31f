package mapping

import (
	"math"

	"github.com/xmodal/xmodal/dsp"
	"github.com/xmodal/xmodal/feature"
)

// The mapping layer is a fixed rule table, not scattered conditionals: each
// rule names a source metric, a transformation and a target parameter, so
// every cross-modal relation is inspectable and testable on its own.

// Target identifies the parameter a rule writes
type Target int

const (
	TargetMode Target = iota
	TargetTonalCenter
	TargetTempo
	TargetNoteDensity
	TargetDynamics
	TargetRhythmVariability
	TargetTimbre
)

func (t Target) String() string {
	switch t {
	case TargetMode:
		return "mode"
	case TargetTonalCenter:
		return "tonal_center"
	case TargetTempo:
		return "tempo"
	case TargetNoteDensity:
		return "note_density"
	case TargetDynamics:
		return "dynamics"
	case TargetRhythmVariability:
		return "rhythm_variability"
	case TargetTimbre:
		return "timbre"
	}
	return "unknown"
}

// TransformKind enumerates the supported metric transformations
type TransformKind int

const (
	// TransformLinear scales [InLo, InHi] onto [OutLo, OutHi], clamped.
	// Monotonic non-decreasing whenever OutHi >= OutLo.
	TransformLinear TransformKind = iota

	// TransformStep emits Below when x < Cut, Above otherwise
	TransformStep

	// TransformBand emits Inside when BandLo <= x <= BandHi, Outside otherwise
	TransformBand

	// TransformWheel is a circular lookup: Base + floor(x/StepDeg) mod Steps
	TransformWheel

	// TransformTiers emits 0 when x < Cut, 1 when x < Cut2, 2 otherwise
	TransformTiers
)

// Transform is one documented metric transformation; only the fields of its
// Kind are meaningful
type Transform struct {
	Kind TransformKind

	InLo, InHi   float64 // linear input domain
	OutLo, OutHi float64 // linear output range

	Cut, Cut2    float64 // step/tier cut points
	Below, Above float64 // step outputs

	BandLo, BandHi  float64 // band limits
	Inside, Outside float64 // band outputs

	Base    float64 // wheel base value
	StepDeg float64 // wheel step width
	Steps   int     // wheel positions
}

// Eval applies the transform to a metric value
func (t Transform) Eval(x float64) float64 {
	switch t.Kind {
	case TransformLinear:
		if t.InHi == t.InLo {
			return t.OutLo
		}
		pos := dsp.Clamp((x-t.InLo)/(t.InHi-t.InLo), 0, 1)
		return t.OutLo + pos*(t.OutHi-t.OutLo)
	case TransformStep:
		if x < t.Cut {
			return t.Below
		}
		return t.Above
	case TransformBand:
		if x >= t.BandLo && x <= t.BandHi {
			return t.Inside
		}
		return t.Outside
	case TransformWheel:
		if t.StepDeg <= 0 || t.Steps <= 0 {
			return t.Base
		}
		idx := int(math.Floor(x/t.StepDeg)) % t.Steps
		if idx < 0 {
			idx += t.Steps
		}
		return t.Base + float64(idx)
	case TransformTiers:
		if x < t.Cut {
			return 0
		}
		if x < t.Cut2 {
			return 1
		}
		return 2
	}
	return 0
}

// Rule binds a source metric to a target parameter through one transform
type Rule struct {
	Metric    feature.Metric
	Transform Transform
	Target    Target
}

// RuleTable is the full documented mapping. Rules apply in order; when two
// rules write the same target the later one wins, so modality-specific rules
// live lower in the table for the metrics their modality actually emits.
var RuleTable = []Rule{
	// Text: non-negative sentiment reads major (E root, brisk), negative
	// reads minor (D root, slower)
	{feature.MetricSentiment, Transform{Kind: TransformStep, Cut: 0, Below: 1, Above: 0}, TargetMode},
	{feature.MetricSentiment, Transform{Kind: TransformStep, Cut: 0, Below: 85, Above: 110}, TargetTempo},
	{feature.MetricSentiment, Transform{Kind: TransformStep, Cut: 0, Below: 62, Above: 64}, TargetTonalCenter},

	// Disorder drives rhythmic looseness for every modality that measures it
	{feature.MetricEntropy, Transform{Kind: TransformLinear, InLo: 0, InHi: 1, OutLo: 0, OutHi: 1}, TargetRhythmVariability},

	// Image: the hue wheel picks the tonal center chromatically (30 degrees
	// per semitone above C3); cool hues read minor
	{feature.MetricHue, Transform{Kind: TransformWheel, Base: 48, StepDeg: 30, Steps: 12}, TargetTonalCenter},
	{feature.MetricHue, Transform{Kind: TransformBand, BandLo: 160, BandHi: 260, Inside: 1, Outside: 0}, TargetMode},
	{feature.MetricBrightness, Transform{Kind: TransformLinear, InLo: 0, InHi: 1, OutLo: 60, OutHi: 180}, TargetTempo},
	{feature.MetricContrast, Transform{Kind: TransformLinear, InLo: 0, InHi: 1, OutLo: 0.2, OutHi: 1.0}, TargetDynamics},
	{feature.MetricSaturation, Transform{Kind: TransformLinear, InLo: 0, InHi: 1, OutLo: 0.3, OutHi: 0.9}, TargetNoteDensity},
	{feature.MetricEdgeDensity, Transform{Kind: TransformLinear, InLo: 0, InHi: 1, OutLo: 0, OutHi: 1}, TargetRhythmVariability},

	// Audio: measured loudness, pitch and pulse carry through; flatness
	// selects the timbre from tonal to noisy
	{feature.MetricLoudness, Transform{Kind: TransformLinear, InLo: 0, InHi: 1, OutLo: 0.2, OutHi: 1.0}, TargetDynamics},
	{feature.MetricPitchHeight, Transform{Kind: TransformLinear, InLo: 0, InHi: 1, OutLo: 36, OutHi: 96}, TargetTonalCenter},
	{feature.MetricPulseRate, Transform{Kind: TransformLinear, InLo: 0, InHi: 1, OutLo: TempoMin, OutHi: TempoMax}, TargetTempo},
	{feature.MetricFlatness, Transform{Kind: TransformTiers, Cut: 0.35, Cut2: 0.7}, TargetTimbre},
}

// Map translates a feature vector into musical parameters. Pure, total and
// deterministic: identical vectors always yield identical parameters, and
// metrics absent from the vector leave their targets at the defaults.
func Map(v feature.Vector) Parameters {
	params := defaultParameters()

	for _, rule := range RuleTable {
		x, ok := v.Get(rule.Metric)
		if !ok {
			continue
		}
		apply(&params, rule.Target, rule.Transform.Eval(x))
	}

	params.TempoBPM = dsp.Clamp(params.TempoBPM, TempoMin, TempoMax)
	params.NoteDensity = dsp.Clamp(params.NoteDensity, 0, 1)
	params.DynamicsRange = dsp.Clamp(params.DynamicsRange, 0, 1)
	params.RhythmVariability = dsp.Clamp(params.RhythmVariability, 0, 1)
	params.TonalCenter = int(dsp.Clamp(float64(params.TonalCenter), 36, 96))
	return params
}

func apply(p *Parameters, target Target, value float64) {
	switch target {
	case TargetMode:
		if value >= 0.5 {
			p.Mode = ModeMinor
		} else {
			p.Mode = ModeMajor
		}
	case TargetTonalCenter:
		p.TonalCenter = int(math.Round(value))
	case TargetTempo:
		p.TempoBPM = value
	case TargetNoteDensity:
		p.NoteDensity = value
	case TargetDynamics:
		p.DynamicsRange = value
	case TargetRhythmVariability:
		p.RhythmVariability = value
	case TargetTimbre:
		switch int(math.Round(value)) {
		case 1:
			p.Timbre = TimbreSaw
		case 2:
			p.Timbre = TimbreSquare
		default:
			p.Timbre = TimbreSine
		}
	}
}
