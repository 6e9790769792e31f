package pipeline

import (
	"encoding/json"

	"github.com/xmodal/xmodal/analysis"
	"github.com/xmodal/xmodal/melody"
)

// Wire encodings. Field order is fixed by the struct definitions, so repeated
// runs over identical inputs produce byte-identical output.

// MarshalTimeline encodes a timeline as the canonical ordered event array
func MarshalTimeline(tl melody.Timeline) ([]byte, error) {
	return json.MarshalIndent(tl, "", "  ")
}

// MarshalMetrics encodes a feature report as the grouped metrics object
func MarshalMetrics(f analysis.Features) ([]byte, error) {
	return json.MarshalIndent(f, "", "  ")
}
