package feature

import (
	"fmt"
	"sort"
)

// Modality identifies which extractor produced a vector
type Modality string

const (
	ModalityText  Modality = "text"
	ModalityImage Modality = "image"
	ModalityAudio Modality = "audio"
)

// Metric is a named feature dimension with a registered value domain
type Metric string

const (
	// Sentiment polarity, tanh-squashed keyword score
	MetricSentiment Metric = "sentiment" // [-1, 1]

	// Visual metrics
	MetricHue         Metric = "hue"          // [0, 360)
	MetricSaturation  Metric = "saturation"   // [0, 1]
	MetricBrightness  Metric = "brightness"   // [0, 1]
	MetricContrast    Metric = "contrast"     // [0, 1]
	MetricEdgeDensity Metric = "edge_density" // [0, 1]

	// Audio metrics
	MetricLoudness    Metric = "loudness"     // [0, 1]
	MetricFlatness    Metric = "flatness"     // [0, 1]
	MetricPitchHeight Metric = "pitch_height" // [0, 1], normalized MIDI position
	MetricPulseRate   Metric = "pulse_rate"   // [0, 1], normalized tempo

	// Cross-modal disorder measure (text entropy, spectral entropy, ...)
	MetricEntropy Metric = "entropy" // [0, 1]
)

// domain is the closed interval a metric value must fall in
type domain struct {
	lo, hi float64
}

var metricDomains = map[Metric]domain{
	MetricSentiment:   {-1, 1},
	MetricHue:         {0, 360},
	MetricSaturation:  {0, 1},
	MetricBrightness:  {0, 1},
	MetricContrast:    {0, 1},
	MetricEdgeDensity: {0, 1},
	MetricLoudness:    {0, 1},
	MetricFlatness:    {0, 1},
	MetricPitchHeight: {0, 1},
	MetricPulseRate:   {0, 1},
	MetricEntropy:     {0, 1},
}

// Vector is an immutable set of named metric values produced by one extractor.
// Values are validated against the metric registry at construction time.
type Vector struct {
	modality Modality
	values   map[Metric]float64
}

// NewVector builds a validated vector. Unknown metrics and out-of-domain
// values are rejected.
func NewVector(modality Modality, values map[Metric]float64) (Vector, error) {
	if len(values) == 0 {
		return Vector{}, fmt.Errorf("feature vector must contain at least one metric")
	}

	copied := make(map[Metric]float64, len(values))
	for metric, value := range values {
		dom, ok := metricDomains[metric]
		if !ok {
			return Vector{}, fmt.Errorf("unknown metric %q", metric)
		}
		if value < dom.lo || value > dom.hi {
			return Vector{}, fmt.Errorf("metric %q value %g outside domain [%g, %g]",
				metric, value, dom.lo, dom.hi)
		}
		copied[metric] = value
	}

	return Vector{modality: modality, values: copied}, nil
}

// Modality returns the source modality
func (v Vector) Modality() Modality {
	return v.modality
}

// Get returns the value for a metric and whether it is present
func (v Vector) Get(metric Metric) (float64, bool) {
	value, ok := v.values[metric]
	return value, ok
}

// Metrics returns the present metrics in stable (sorted) order
func (v Vector) Metrics() []Metric {
	metrics := make([]Metric, 0, len(v.values))
	for m := range v.values {
		metrics = append(metrics, m)
	}
	sort.Slice(metrics, func(i, j int) bool { return metrics[i] < metrics[j] })
	return metrics
}

// Len returns the number of metrics present
func (v Vector) Len() int {
	return len(v.values)
}

// Map returns a copy of the underlying values, keyed by metric name
func (v Vector) Map() map[string]float64 {
	out := make(map[string]float64, len(v.values))
	for m, val := range v.values {
		out[string(m)] = val
	}
	return out
}
