package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/copier"
	"github.com/joho/godotenv"
	"github.com/koscakluka/ema-jarvis/core/llms"
	"github.com/koscakluka/ema-jarvis/core/llms/ollama"
	"github.com/koscakluka/ema-jarvis/core/narration"
	"github.com/koscakluka/ema-jarvis/core/questions"
	"github.com/koscakluka/ema-jarvis/core/speechtotext"
	"github.com/koscakluka/ema-jarvis/core/texttospeech/deepgram"
	"gopkg.in/yaml.v3"
)

// Config represents the complete jarvis configuration
type Config struct {
	Ollama   ollama.Config  `yaml:"ollama"`
	Deepgram DeepgramConfig `yaml:"deepgram"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Answer   AnswerConfig   `yaml:"answer"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// DeepgramConfig contains the speech service settings
type DeepgramConfig struct {
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Language string `yaml:"language"`
	Voice    string `yaml:"voice"`
}

// PipelineConfig contains the input and output locations and the question
// handling settings
type PipelineConfig struct {
	InputDir   string `yaml:"input_dir"`
	Pattern    string `yaml:"pattern"`
	OutputDir  string `yaml:"output_dir"`
	WakeWord   string `yaml:"wake_word"`
	ChunkWords int    `yaml:"chunk_words"` // narration words per audio file
	Speech     bool   `yaml:"speech"`
	Playback   bool   `yaml:"playback"`
}

// AnswerConfig contains the response assembly settings
type AnswerConfig struct {
	WordBudget       int           `yaml:"word_budget"`
	FlushLength      int           `yaml:"flush_length"` // characters
	ProgressInterval time.Duration `yaml:"progress_interval"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string `yaml:"level"`
	// File is the log file name inside the output directory. Empty disables
	// file logging.
	File string `yaml:"file"`
}

// MetricsConfig contains the run metrics settings
type MetricsConfig struct {
	// Textfile is where run metrics are written in the Prometheus text
	// format after a run. Empty disables metrics output.
	Textfile string `yaml:"textfile"`
}

// Overrides are command line values. Zero values leave the loaded
// configuration untouched.
type Overrides struct {
	InputDir   string
	Pattern    string
	OutputDir  string
	WakeWord   string
	ChunkWords int
	Model      string
	Voice      string
	NoSpeech   bool
	Playback   bool
	LogLevel   string
}

func Default() Config {
	return Config{
		Ollama: ollama.DefaultConfig(),
		Deepgram: DeepgramConfig{
			Model:    speechtotext.DefaultModel,
			Language: speechtotext.DefaultLanguage,
		},
		Pipeline: PipelineConfig{
			InputDir:   filepath.Join("resources", "input"),
			Pattern:    "*.m4a",
			OutputDir:  filepath.Join("resources", "output"),
			WakeWord:   questions.DefaultWakeWord,
			ChunkWords: narration.DefaultChunkWords,
			Speech:     true,
		},
		Answer: AnswerConfig{
			WordBudget:       llms.DefaultWordBudget,
			FlushLength:      llms.DefaultFlushLength,
			ProgressInterval: llms.DefaultProgressInterval,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "jarvis.log",
		},
	}
}

// LoadDotEnv loads environment variables from path. A missing file is
// ignored so that .env files remain optional.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Load layers the YAML file at path (optional when empty), the environment
// and overrides over the defaults and validates the result.
func Load(path string, overrides Overrides) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := config.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := config.apply(overrides); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"JARVIS_OLLAMA_URL": &c.Ollama.BaseURL,
		"JARVIS_MODEL":      &c.Ollama.Model,
		"DEEPGRAM_API_KEY":  &c.Deepgram.APIKey,
		"JARVIS_VOICE":      &c.Deepgram.Voice,
		"JARVIS_INPUT_DIR":  &c.Pipeline.InputDir,
		"JARVIS_OUTPUT_DIR": &c.Pipeline.OutputDir,
		"JARVIS_WAKE_WORD":  &c.Pipeline.WakeWord,
		"JARVIS_LOG_LEVEL":  &c.Logging.Level,
	}
	for key, target := range strs {
		if value, ok := lookup(key); ok && value != "" {
			*target = value
		}
	}

	if value, ok := lookup("JARVIS_TIMEOUT"); ok && value != "" {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("JARVIS_TIMEOUT: %w", err)
		}
		c.Ollama.Timeout = timeout
	}
	if value, ok := lookup("JARVIS_PLAYBACK"); ok && value != "" {
		playback, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("JARVIS_PLAYBACK: %w", err)
		}
		c.Pipeline.Playback = playback
	}
	return nil
}

func (c *Config) apply(overrides Overrides) error {
	if err := copier.CopyWithOption(&c.Pipeline, &overrides, copier.Option{IgnoreEmpty: true}); err != nil {
		return fmt.Errorf("failed to apply overrides: %w", err)
	}
	if overrides.Model != "" {
		c.Ollama.Model = overrides.Model
	}
	if overrides.Voice != "" {
		c.Deepgram.Voice = overrides.Voice
	}
	if overrides.LogLevel != "" {
		c.Logging.Level = overrides.LogLevel
	}
	if overrides.NoSpeech {
		c.Pipeline.Speech = false
		c.Pipeline.Playback = false
	}
	return nil
}

// Validate performs validation of every section
func (c *Config) Validate() error {
	if err := c.Ollama.Validate(); err != nil {
		return fmt.Errorf("ollama config: %w", err)
	}

	if err := c.Deepgram.Validate(); err != nil {
		return fmt.Errorf("deepgram config: %w", err)
	}

	if err := c.Pipeline.Validate(); err != nil {
		return fmt.Errorf("pipeline config: %w", err)
	}

	if err := c.Answer.Validate(); err != nil {
		return fmt.Errorf("answer config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates the speech service settings
func (d *DeepgramConfig) Validate() error {
	if strings.TrimSpace(d.APIKey) == "" {
		return fmt.Errorf("api_key cannot be empty (set DEEPGRAM_API_KEY)")
	}

	if d.Voice != "" {
		if _, ok := deepgram.ParseVoice(d.Voice); !ok {
			return fmt.Errorf("unknown voice %q", d.Voice)
		}
	}

	return nil
}

// Validate validates the pipeline settings
func (p *PipelineConfig) Validate() error {
	if p.InputDir == "" {
		return fmt.Errorf("input_dir cannot be empty")
	}

	if p.OutputDir == "" {
		return fmt.Errorf("output_dir cannot be empty")
	}

	if _, err := filepath.Match(p.Pattern, ""); err != nil || p.Pattern == "" {
		return fmt.Errorf("pattern must be a valid glob, got %q", p.Pattern)
	}

	if strings.TrimSpace(p.WakeWord) == "" {
		return fmt.Errorf("wake_word cannot be empty")
	}

	if p.ChunkWords < 1 {
		return fmt.Errorf("chunk_words must be at least 1, got %d", p.ChunkWords)
	}

	if p.Playback && !p.Speech {
		return fmt.Errorf("playback requires speech to be enabled")
	}

	return nil
}

// Validate validates the response assembly settings
func (a *AnswerConfig) Validate() error {
	if a.WordBudget < 1 {
		return fmt.Errorf("word_budget must be at least 1, got %d", a.WordBudget)
	}

	if a.FlushLength < 1 {
		return fmt.Errorf("flush_length must be at least 1, got %d", a.FlushLength)
	}

	if a.ProgressInterval < 0 {
		return fmt.Errorf("progress_interval cannot be negative, got %s", a.ProgressInterval)
	}

	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("level must be one of debug, info, warn, error, got %q", l.Level)
	}

	if l.File != "" && filepath.Base(l.File) != l.File {
		return fmt.Errorf("file must be a plain file name, got %q", l.File)
	}

	return nil
}

// CollectOptions converts the answer settings into response assembly options.
func (a *AnswerConfig) CollectOptions() []llms.CollectOption {
	return []llms.CollectOption{
		llms.WithWordBudget(a.WordBudget),
		llms.WithFlushLength(a.FlushLength),
		llms.WithProgressInterval(a.ProgressInterval),
	}
}
