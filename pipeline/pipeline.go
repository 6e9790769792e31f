package pipeline

import (
	"fmt"
	"image"

	"github.com/google/uuid"

	"github.com/xmodal/xmodal/analysis"
	"github.com/xmodal/xmodal/audio"
	"github.com/xmodal/xmodal/feature"
	"github.com/xmodal/xmodal/logging"
	"github.com/xmodal/xmodal/mapping"
	"github.com/xmodal/xmodal/melody"
	"github.com/xmodal/xmodal/synth"
)

// Pipeline wires the stages together: extractor -> mapping -> timeline ->
// synthesis for generation, analysis -> report for the reverse path. Each
// stage consumes the previous stage's immutable output.
type Pipeline struct {
	analyzer *analysis.Analyzer
	renderer *synth.Renderer
	logger   logging.Logger
}

// New creates a pipeline logging through the given logger; nil falls back to
// the global logger
func New(logger logging.Logger) *Pipeline {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Pipeline{
		analyzer: analysis.NewAnalyzer(logger),
		renderer: synth.NewRenderer(),
		logger:   logger,
	}
}

// Result is the full artifact set of one generation run
type Result struct {
	RunID    string
	Vector   feature.Vector
	Params   mapping.Parameters
	Timeline melody.Timeline
	Audio    audio.Buffer
}

// TextToAudio converts free text into a melody and rendered audio
func (p *Pipeline) TextToAudio(text string, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	vec, hints, err := feature.ExtractText(text)
	if err != nil {
		return nil, newError(StageExtraction, ErrInvalidInput, fmt.Sprintf("text length %d", len(text)), err)
	}
	return p.generate(vec, hints, opts)
}

// ImageToAudio converts a decoded image into a melody and rendered audio
func (p *Pipeline) ImageToAudio(img image.Image, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	vec, err := feature.ExtractImage(img)
	if err != nil {
		return nil, newError(StageExtraction, ErrInvalidInput, "image", err)
	}
	// Images carry no text structure; a fixed phrase length reads well
	hints := feature.StructuralHints{Words: 32}
	return p.generate(vec, hints, opts)
}

// VectorToAudio runs the mapping, timeline and synthesis stages on an
// already-computed feature vector. This is the shared generation tail and
// the entry point for external extractors.
func (p *Pipeline) VectorToAudio(vec feature.Vector, hints feature.StructuralHints, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return p.generate(vec, hints, opts)
}

func (p *Pipeline) generate(vec feature.Vector, hints feature.StructuralHints, opts Options) (*Result, error) {
	params := opts.apply(mapping.Map(vec))

	p.logger.Debug("parameters mapped", logging.Fields{
		"modality": vec.Modality(),
		"mode":     params.Mode.String(),
		"tempo":    params.TempoBPM,
		"root":     params.TonalCenter,
		"timbre":   string(params.Timbre),
	})

	tl, err := melody.BuildTimeline(params, hints, melody.BuildOptions{
		Jumpiness:  opts.Jumpiness,
		Seed:       opts.Seed,
		Percussion: opts.Percussion,
	})
	if err != nil {
		return nil, newError(StageTimeline, ErrInternalInvariant, "", err)
	}

	buf, err := p.renderer.Render(tl, params.Timbre, opts.SampleRate)
	if err != nil {
		return nil, newError(StageSynthesis, ErrInternalInvariant,
			fmt.Sprintf("%d events", tl.Len()), err)
	}

	p.logger.Info("render finished", logging.Fields{
		"events":   tl.Len(),
		"duration": buf.Duration(),
	})

	return &Result{
		RunID:    uuid.NewString(),
		Vector:   vec,
		Params:   params,
		Timeline: tl,
		Audio:    buf,
	}, nil
}

// AudioFeatures runs the reverse path: audio buffer to feature-metric report
func (p *Pipeline) AudioFeatures(buf audio.Buffer) (analysis.Features, error) {
	if buf.Len() == 0 {
		return analysis.Features{}, newError(StageAnalysis, ErrInvalidInput, "zero-length audio buffer", nil)
	}
	features, err := p.analyzer.Analyze(buf)
	if err != nil {
		return analysis.Features{}, newError(StageAnalysis, ErrInvalidInput,
			fmt.Sprintf("%d samples", buf.Len()), err)
	}
	return features, nil
}

// AudioToAudio reinterprets an audio buffer: analyze it, map the resulting
// feature vector and synthesize a new piece from it
func (p *Pipeline) AudioToAudio(buf audio.Buffer, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	features, err := p.AudioFeatures(buf)
	if err != nil {
		return nil, err
	}
	vec, err := features.Vector()
	if err != nil {
		return nil, newError(StageMapping, ErrInvalidInput, "analysis feature vector", err)
	}

	// Onset count is the closest analogue to a word count
	hints := feature.StructuralHints{
		Words: int(features.Rhythm.OnsetRate * buf.Duration()),
	}
	return p.generate(vec, hints, opts)
}

// TextFeatures exposes the text extractor for feature dumps
func (p *Pipeline) TextFeatures(text string) (feature.Vector, feature.StructuralHints, error) {
	vec, hints, err := feature.ExtractText(text)
	if err != nil {
		return feature.Vector{}, feature.StructuralHints{}, newError(StageExtraction, ErrInvalidInput, "text", err)
	}
	return vec, hints, nil
}

// ImageFeatures exposes the image extractor for feature dumps
func (p *Pipeline) ImageFeatures(img image.Image) (feature.Vector, error) {
	vec, err := feature.ExtractImage(img)
	if err != nil {
		return feature.Vector{}, newError(StageExtraction, ErrInvalidInput, "image", err)
	}
	return vec, nil
}
