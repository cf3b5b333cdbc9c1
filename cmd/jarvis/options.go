package main

import (
	"github.com/jessevdk/go-flags"
	"github.com/koscakluka/ema-jarvis/internal/config"
)

// Options are the command line flags. The struct tags are interpreted by
// github.com/jessevdk/go-flags.
type Options struct {
	Config  string `short:"c" long:"config" description:"YAML config path"`
	EnvFile string `long:"env" default:".env" description:".env file to load (ignored if missing)"`

	Input      string `short:"i" long:"input" description:"directory with the recordings to process"`
	Pattern    string `short:"p" long:"pattern" description:"glob selecting recordings in the input directory"`
	Output     string `short:"o" long:"output" description:"directory for the text, audio and metadata artifacts"`
	WakeWord   string `short:"w" long:"wake-word" description:"word that starts every question"`
	Model      string `short:"m" long:"model" description:"Ollama model answering the questions"`
	Voice      string `long:"voice" description:"Deepgram voice for the narration"`
	ChunkWords int    `long:"chunk-words" description:"narration words per audio file"`
	NoSpeech   bool   `long:"no-speech" description:"store text and metadata only"`
	Play       bool   `long:"play" description:"play every narration chunk after it is synthesized"`
	LogLevel   string `long:"log-level" choice:"debug" choice:"info" choice:"warn" choice:"error" description:"log level"`

	Render      bool   `long:"render" description:"print every stored conversation as rendered markdown"`
	MetricsFile string `long:"metrics-file" description:"write run metrics in the Prometheus text format to this file"`
	ListVoices  bool   `long:"list-voices" description:"list the available voices and exit"`

	Args struct {
		Files []string `positional-arg-name:"file" description:"recordings to process instead of the input directory"`
	} `positional-args:"yes"`
}

func parseOptions(args []string) (*Options, error) {
	opts := &Options{}
	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "jarvis"
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}
	return opts, nil
}

func (o *Options) overrides() config.Overrides {
	return config.Overrides{
		InputDir:   o.Input,
		Pattern:    o.Pattern,
		OutputDir:  o.Output,
		WakeWord:   o.WakeWord,
		ChunkWords: o.ChunkWords,
		Model:      o.Model,
		Voice:      o.Voice,
		NoSpeech:   o.NoSpeech,
		Playback:   o.Play,
		LogLevel:   o.LogLevel,
	}
}
