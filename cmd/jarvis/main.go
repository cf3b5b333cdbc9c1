package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jessevdk/go-flags"
	orchestration "github.com/koscakluka/ema-jarvis/core"
	"github.com/koscakluka/ema-jarvis/core/archive"
	"github.com/koscakluka/ema-jarvis/core/audio/miniaudio"
	"github.com/koscakluka/ema-jarvis/core/conversations"
	"github.com/koscakluka/ema-jarvis/core/llms/ollama"
	"github.com/koscakluka/ema-jarvis/core/speechtotext"
	sttdeepgram "github.com/koscakluka/ema-jarvis/core/speechtotext/deepgram"
	"github.com/koscakluka/ema-jarvis/core/texttospeech"
	ttsdeepgram "github.com/koscakluka/ema-jarvis/core/texttospeech/deepgram"
	"github.com/koscakluka/ema-jarvis/internal/config"
	"github.com/koscakluka/ema-jarvis/internal/metrics"
)

const consoleWidth = 100

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if flags.WroteHelp(err) {
			fmt.Fprintln(os.Stdout, err)
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	opts, err := parseOptions(args)
	if err != nil {
		return err
	}

	if opts.ListVoices {
		for _, voice := range ttsdeepgram.GetAvailableVoices() {
			fmt.Fprintln(stdout, voice)
		}
		return nil
	}

	if err := config.LoadDotEnv(opts.EnvFile); err != nil {
		return fmt.Errorf("failed to load %s: %w", opts.EnvFile, err)
	}
	cfg, err := config.Load(opts.Config, opts.overrides())
	if err != nil {
		return err
	}
	if opts.MetricsFile != "" {
		cfg.Metrics.Textfile = opts.MetricsFile
	}

	store, err := archive.New(cfg.Pipeline.OutputDir)
	if err != nil {
		return err
	}

	logPath := ""
	if cfg.Logging.File != "" {
		logPath = store.LogPath(cfg.Logging.File)
	}
	logger, closeLog, err := newLogger(cfg.Logging, logPath)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	llm, err := ollama.NewClient(ctx, cfg.Ollama, ollama.WithLogger(logger))
	if err != nil {
		if errors.Is(err, ollama.ErrServiceUnreachable) {
			logger.Error("Could not connect to Ollama. Please ensure it's running with: ollama serve", "url", cfg.Ollama.BaseURL)
		}
		return err
	}
	logger.Info("Successfully connected to Ollama", "model", llm.Model())

	transcriber, err := sttdeepgram.NewTranscriptionClient(cfg.Deepgram.APIKey)
	if err != nil {
		return err
	}

	runMetrics := metrics.NewMetrics()
	orchestratorOpts := []orchestration.OrchestratorOption{
		orchestration.WithSpeechToText(transcriber,
			speechtotext.WithModel(cfg.Deepgram.Model),
			speechtotext.WithLanguage(cfg.Deepgram.Language),
		),
		orchestration.WithLLM(llm),
		orchestration.WithCollectOptions(cfg.Answer.CollectOptions()...),
		orchestration.WithArchive(store),
		orchestration.WithWakeWord(cfg.Pipeline.WakeWord),
		orchestration.WithChunkWords(cfg.Pipeline.ChunkWords),
		orchestration.WithLogger(logger),
		orchestration.WithEventHandler(runMetrics.HandleEvent),
		orchestration.WithEventHandler(newConsole(stdout, consoleWidth).HandleEvent),
	}

	if cfg.Pipeline.Speech {
		synthesizer, err := ttsdeepgram.NewTextToSpeechClient(cfg.Deepgram.APIKey, "")
		if err != nil {
			return err
		}
		orchestratorOpts = append(orchestratorOpts, orchestration.WithTextToSpeech(synthesizer,
			texttospeech.WithVoice(cfg.Deepgram.Voice),
		))

		if cfg.Pipeline.Playback {
			player, err := miniaudio.NewPlayer()
			if err != nil {
				return err
			}
			defer player.Close()
			orchestratorOpts = append(orchestratorOpts, orchestration.WithPlayer(player))
		}
	}

	orchestrator := orchestration.NewOrchestrator(orchestratorOpts...)

	var stored []*conversations.Conversation
	if len(opts.Args.Files) > 0 {
		for _, file := range opts.Args.Files {
			conversation, err := orchestrator.ProcessFile(ctx, file)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				continue
			}
			stored = append(stored, conversation)
		}
	} else {
		logger.Info("Watching for audio files", "dir", cfg.Pipeline.InputDir)
		summary, err := orchestrator.ProcessDirectory(ctx, cfg.Pipeline.InputDir, cfg.Pipeline.Pattern)
		if err != nil {
			return err
		}
		logger.Info("Run finished",
			"files", summary.Files,
			"processed", summary.Processed,
			"skipped", summary.Skipped)
		stored = summary.Conversations
	}

	if opts.Render {
		renderer := newMarkdownRenderer(consoleWidth)
		for _, conversation := range stored {
			fmt.Fprintln(stdout, renderer.Render(conversationMarkdown(conversation)))
		}
	}

	if cfg.Metrics.Textfile != "" {
		if err := runMetrics.WriteToTextfile(cfg.Metrics.Textfile); err != nil {
			logger.Warn("Failed to write metrics", "error", err)
		}
	}

	return nil
}

// conversationMarkdown renders a stored conversation with a heading per
// question.
func conversationMarkdown(conversation *conversations.Conversation) string {
	var md strings.Builder
	fmt.Fprintf(&md, "# %s\n\n", conversation.SourceAudio)
	for _, pair := range conversation.Pairs {
		fmt.Fprintf(&md, "## %s\n\n", pair.Question)
		if pair.Failed {
			fmt.Fprintf(&md, "> %s\n\n", pair.Answer)
			continue
		}
		md.WriteString(pair.Answer + "\n\n")
	}
	return md.String()
}
