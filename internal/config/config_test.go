package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/koscakluka/ema-jarvis/core/llms"
)

func validConfig() Config {
	config := Default()
	config.Deepgram.APIKey = "test-key"
	return config
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(*Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:   "valid configuration",
			modify: func(*Config) {},
		},
		{
			name:        "invalid ollama url",
			modify:      func(c *Config) { c.Ollama.BaseURL = "ollama" },
			expectError: true,
			errorMsg:    "ollama config: base_url",
		},
		{
			name:        "missing api key",
			modify:      func(c *Config) { c.Deepgram.APIKey = "" },
			expectError: true,
			errorMsg:    "deepgram config: api_key",
		},
		{
			name:        "unknown voice",
			modify:      func(c *Config) { c.Deepgram.Voice = "aura-robot" },
			expectError: true,
			errorMsg:    "unknown voice",
		},
		{
			name:   "known voice",
			modify: func(c *Config) { c.Deepgram.Voice = "aura-orion-en" },
		},
		{
			name:        "bad pattern",
			modify:      func(c *Config) { c.Pipeline.Pattern = "[" },
			expectError: true,
			errorMsg:    "pattern must be a valid glob",
		},
		{
			name:        "empty wake word",
			modify:      func(c *Config) { c.Pipeline.WakeWord = "  " },
			expectError: true,
			errorMsg:    "wake_word",
		},
		{
			name:        "zero chunk words",
			modify:      func(c *Config) { c.Pipeline.ChunkWords = 0 },
			expectError: true,
			errorMsg:    "chunk_words",
		},
		{
			name: "playback without speech",
			modify: func(c *Config) {
				c.Pipeline.Speech = false
				c.Pipeline.Playback = true
			},
			expectError: true,
			errorMsg:    "playback requires speech",
		},
		{
			name:        "zero word budget",
			modify:      func(c *Config) { c.Answer.WordBudget = 0 },
			expectError: true,
			errorMsg:    "answer config: word_budget",
		},
		{
			name:        "unknown log level",
			modify:      func(c *Config) { c.Logging.Level = "verbose" },
			expectError: true,
			errorMsg:    "logging config: level",
		},
		{
			name:        "log file outside the output directory",
			modify:      func(c *Config) { c.Logging.File = "../jarvis.log" },
			expectError: true,
			errorMsg:    "plain file name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			tt.modify(&config)

			err := config.Validate()
			if tt.expectError {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.errorMsg)
				}
				if !strings.Contains(err.Error(), tt.errorMsg) {
					t.Fatalf("expected error containing %q, got %q", tt.errorMsg, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoadLayersFileEnvironmentAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jarvis.yaml")
	content := `
ollama:
  model: mistral
  timeout: 45s
deepgram:
  api_key: file-key
pipeline:
  wake_word: friday
  chunk_words: 500
answer:
  progress_interval: 250ms
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("DEEPGRAM_API_KEY", "env-key")
	t.Setenv("JARVIS_OUTPUT_DIR", "/tmp/jarvis-out")

	config, err := Load(path, Overrides{ChunkWords: 200, Pattern: "*.wav", Playback: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.Ollama.Model != "mistral" || config.Ollama.Timeout != 45*time.Second {
		t.Fatalf("expected file values for ollama, got %+v", config.Ollama)
	}
	if config.Ollama.TopK != 40 || config.Ollama.Temperature != 0.7 {
		t.Fatalf("expected defaults to survive a partial file, got %+v", config.Ollama)
	}
	if config.Deepgram.APIKey != "env-key" {
		t.Fatalf("expected the environment to win over the file, got %q", config.Deepgram.APIKey)
	}
	if config.Pipeline.OutputDir != "/tmp/jarvis-out" || config.Pipeline.WakeWord != "friday" {
		t.Fatalf("unexpected pipeline config %+v", config.Pipeline)
	}
	if config.Pipeline.ChunkWords != 200 || config.Pipeline.Pattern != "*.wav" || !config.Pipeline.Playback {
		t.Fatalf("expected overrides to win, got %+v", config.Pipeline)
	}
	if config.Pipeline.InputDir != filepath.Join("resources", "input") {
		t.Fatalf("expected empty overrides to be ignored, got %q", config.Pipeline.InputDir)
	}
	if config.Answer.ProgressInterval != 250*time.Millisecond {
		t.Fatalf("unexpected progress interval %s", config.Answer.ProgressInterval)
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Setenv("DEEPGRAM_API_KEY", "env-key")

	config, err := Load("", Overrides{NoSpeech: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Pipeline.Pattern != "*.m4a" || config.Pipeline.WakeWord != "jarvis" {
		t.Fatalf("unexpected defaults %+v", config.Pipeline)
	}
	if config.Pipeline.Speech || config.Pipeline.Playback {
		t.Fatalf("expected speech to be disabled, got %+v", config.Pipeline)
	}
	if config.Answer.WordBudget != llms.DefaultWordBudget {
		t.Fatalf("unexpected word budget %d", config.Answer.WordBudget)
	}
}

func TestLoadRejectsInvalidInput(t *testing.T) {
	t.Setenv("DEEPGRAM_API_KEY", "env-key")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), Overrides{}); err == nil {
		t.Fatalf("expected an error for a missing file")
	}

	t.Setenv("JARVIS_TIMEOUT", "soon")
	if _, err := Load("", Overrides{}); err == nil || !strings.Contains(err.Error(), "JARVIS_TIMEOUT") {
		t.Fatalf("expected a JARVIS_TIMEOUT error, got %v", err)
	}
}

func TestLoadDotEnvIsOptional(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("expected a missing .env file to be ignored, got %v", err)
	}

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("JARVIS_TEST_DOTENV=loaded\n"), 0o644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	t.Setenv("JARVIS_TEST_DOTENV", "")
	os.Unsetenv("JARVIS_TEST_DOTENV")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("JARVIS_TEST_DOTENV"); got != "loaded" {
		t.Fatalf("expected the .env value to be loaded, got %q", got)
	}
}

func TestCollectOptions(t *testing.T) {
	answer := AnswerConfig{WordBudget: 10, FlushLength: 5, ProgressInterval: time.Second}

	options := llms.CollectOptions{}
	for _, opt := range answer.CollectOptions() {
		opt(&options)
	}
	if options.WordBudget != 10 || options.FlushLength != 5 || options.ProgressInterval != time.Second {
		t.Fatalf("unexpected collect options %+v", options)
	}
}
