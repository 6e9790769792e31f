package main

import (
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/xmodal/xmodal/audio"
	"github.com/xmodal/xmodal/logging"
	"github.com/xmodal/xmodal/pipeline"
)

var version = "0.1.0"

// CLI defines the command-line interface
type CLI struct {
	Version bool `short:"v" help:"Show version information"`
	Debug   bool `help:"Enable debug logging"`

	OutDir     string  `help:"Output directory" default:"outputs" type:"path"`
	Instrument string  `help:"Instrument: sine|saw|square (auto from mapping if omitted)"`
	Mood       string  `help:"Mood: auto|major|minor" default:"auto"`
	Tempo      float64 `help:"Tempo override in BPM (auto if omitted)"`
	Jumpiness  float64 `help:"Contour interval size, 0..1" default:"0.2"`
	Seed       int64   `help:"Random seed for the timeline builder"`
	Percussion bool    `help:"Add the percussion layer"`
	SampleRate int     `help:"Render sample rate" default:"44100"`

	TextToAudio   TextToAudioCmd   `cmd:"" help:"Convert free text into audio"`
	ImageToAudio  ImageToAudioCmd  `cmd:"" help:"Convert an image file into audio"`
	AudioToAudio  AudioToAudioCmd  `cmd:"" help:"Reinterpret an audio file as a new piece"`
	AudioFeatures AudioFeaturesCmd `cmd:"" help:"Analyze an audio file and dump JSON metrics"`
	TextFeatures  TextFeaturesCmd  `cmd:"" help:"Analyze text and dump JSON features"`
	ImageFeatures ImageFeaturesCmd `cmd:"" help:"Analyze an image file and dump JSON features"`
	Play          PlayCmd          `cmd:"" help:"Play a WAV or MP3 file"`
}

func (c *CLI) options() pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.Instrument = c.Instrument
	opts.Mood = pipeline.Mood(c.Mood)
	opts.TempoBPM = c.Tempo
	opts.Jumpiness = c.Jumpiness
	opts.Seed = c.Seed
	opts.Percussion = c.Percussion
	opts.SampleRate = c.SampleRate
	return opts
}

// TextToAudioCmd converts text to a rendered piece
type TextToAudioCmd struct {
	Text string `help:"Text to transform. If omitted, read from STDIN."`
}

func (cmd *TextToAudioCmd) Run(cli *CLI, pipe *pipeline.Pipeline) error {
	text, err := textOrStdin(cmd.Text)
	if err != nil {
		return err
	}

	result, err := pipe.TextToAudio(text, cli.options())
	if err != nil {
		return err
	}
	return writeResult(cli.OutDir, "from_text", result)
}

// ImageToAudioCmd converts an image file to a rendered piece
type ImageToAudioCmd struct {
	Input string `arg:"" help:"Image file (png, jpeg, gif)" type:"existingfile"`
}

func (cmd *ImageToAudioCmd) Run(cli *CLI, pipe *pipeline.Pipeline) error {
	img, err := loadImage(cmd.Input)
	if err != nil {
		return err
	}

	result, err := pipe.ImageToAudio(img, cli.options())
	if err != nil {
		return err
	}
	return writeResult(cli.OutDir, "from_image", result)
}

// AudioToAudioCmd analyzes an audio file and synthesizes a new piece from it
type AudioToAudioCmd struct {
	Input string `arg:"" help:"Audio file (wav, mp3)" type:"existingfile"`
}

func (cmd *AudioToAudioCmd) Run(cli *CLI, pipe *pipeline.Pipeline) error {
	buf, err := loadAudio(cmd.Input)
	if err != nil {
		return err
	}

	result, err := pipe.AudioToAudio(buf, cli.options())
	if err != nil {
		return err
	}
	return writeResult(cli.OutDir, "from_audio", result)
}

// AudioFeaturesCmd dumps the feature-metric report of an audio file
type AudioFeaturesCmd struct {
	Input string `arg:"" help:"Audio file (wav, mp3)" type:"existingfile"`
}

func (cmd *AudioFeaturesCmd) Run(cli *CLI, pipe *pipeline.Pipeline) error {
	buf, err := loadAudio(cmd.Input)
	if err != nil {
		return err
	}

	features, err := pipe.AudioFeatures(buf)
	if err != nil {
		return err
	}

	data, err := pipeline.MarshalMetrics(features)
	if err != nil {
		return err
	}
	return writeFile(cli.OutDir, "features_audio.json", data)
}

// TextFeaturesCmd dumps the feature vector of free text
type TextFeaturesCmd struct {
	Text string `help:"Text to analyze. If omitted, read from STDIN."`
}

func (cmd *TextFeaturesCmd) Run(cli *CLI, pipe *pipeline.Pipeline) error {
	text, err := textOrStdin(cmd.Text)
	if err != nil {
		return err
	}

	vec, hints, err := pipe.TextFeatures(text)
	if err != nil {
		return err
	}

	data, err := marshalVector(vec.Map(), map[string]any{
		"words":     hints.Words,
		"syllables": hints.Syllables,
		"pauses":    hints.Pauses,
	})
	if err != nil {
		return err
	}
	return writeFile(cli.OutDir, "features_text.json", data)
}

// ImageFeaturesCmd dumps the feature vector of an image
type ImageFeaturesCmd struct {
	Input string `arg:"" help:"Image file (png, jpeg, gif)" type:"existingfile"`
}

func (cmd *ImageFeaturesCmd) Run(cli *CLI, pipe *pipeline.Pipeline) error {
	img, err := loadImage(cmd.Input)
	if err != nil {
		return err
	}

	vec, err := pipe.ImageFeatures(img)
	if err != nil {
		return err
	}

	data, err := marshalVector(vec.Map(), nil)
	if err != nil {
		return err
	}
	return writeFile(cli.OutDir, "features_image.json", data)
}

// PlayCmd renders an audio file to the default output device
type PlayCmd struct {
	Input string `arg:"" help:"Audio file (wav, mp3)" type:"existingfile"`
}

func (cmd *PlayCmd) Run(cli *CLI, pipe *pipeline.Pipeline) error {
	buf, err := loadAudio(cmd.Input)
	if err != nil {
		return err
	}
	logging.Info("playing", logging.Fields{"file": cmd.Input, "duration": buf.Duration()})
	return audio.Play(buf)
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("xmodal"),
		kong.Description("Cross-modal content transformation: text/image/audio to melody and metrics"),
		kong.UsageOnError(),
	)

	if cli.Version {
		fmt.Printf("xmodal %s\n", version)
		os.Exit(0)
	}

	logger := logging.NewDefaultLogger()
	if cli.Debug {
		logger.SetLevel(logging.DebugLevel)
	}
	logging.SetGlobalLogger(logger)

	pipe := pipeline.New(logger)
	ctx.FatalIfErrorf(ctx.Run(cli, pipe))
}

func textOrStdin(text string) (string, error) {
	if text != "" {
		return text, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed reading stdin: %w", err)
	}
	return string(data), nil
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

func loadAudio(path string) (audio.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return audio.Buffer{}, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return audio.DecodeMP3(f)
	default:
		return audio.DecodeWAV(f)
	}
}

// writeResult writes the full artifact set of a generation run: rendered
// audio, MIDI export and the timeline JSON
func writeResult(outDir, prefix string, result *pipeline.Result) error {
	tag := fmt.Sprintf("%s_%s", prefix, result.RunID[:8])

	wavPath := filepath.Join(outDir, tag+".wav")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(wavPath)
	if err != nil {
		return err
	}
	if err := audio.EncodeWAV(f, result.Audio); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logging.Info("wrote audio", logging.Fields{"file": wavPath})

	midPath := filepath.Join(outDir, tag+".mid")
	if err := result.Timeline.WriteSMF(midPath, result.Params.TempoBPM); err != nil {
		return err
	}
	logging.Info("wrote midi", logging.Fields{"file": midPath})

	data, err := pipeline.MarshalTimeline(result.Timeline)
	if err != nil {
		return err
	}
	return writeFile(outDir, tag+".timeline.json", data)
}

func writeFile(outDir, name string, data []byte) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(outDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	logging.Info("wrote file", logging.Fields{"file": path})
	return nil
}

func marshalVector(values map[string]float64, extra map[string]any) ([]byte, error) {
	out := make(map[string]any, len(values)+len(extra))
	for k, v := range values {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return json.MarshalIndent(out, "", "  ")
}
