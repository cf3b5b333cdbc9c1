package orchestration

import (
	"context"
	"log/slog"
	"time"

	"github.com/koscakluka/ema-jarvis/core/conversations"
	"github.com/koscakluka/ema-jarvis/core/events"
	"github.com/koscakluka/ema-jarvis/core/llms"
	"github.com/koscakluka/ema-jarvis/core/questions"
	"github.com/koscakluka/ema-jarvis/core/speechtotext"
	"github.com/koscakluka/ema-jarvis/core/texttospeech"
)

type OrchestratorOption func(*Orchestrator)

// LLM answers a single question. Failures are reported through the result,
// never by panicking or blocking past ctx.
type LLM interface {
	Generate(ctx context.Context, prompt string, opts ...llms.CollectOption) llms.Result
}

func WithLLM(client LLM) OrchestratorOption {
	return func(o *Orchestrator) {
		o.llm = client
	}
}

func WithSpeechToText(client speechtotext.FileTranscriber, opts ...speechtotext.TranscriptionOption) OrchestratorOption {
	return func(o *Orchestrator) {
		o.speechToText = client
		o.transcriptionOptions = opts
	}
}

// WithTextToSpeech enables narration of the answers. Without it the pipeline
// stores text and metadata only.
func WithTextToSpeech(client texttospeech.FileSynthesizer, opts ...texttospeech.TextToSpeechOption) OrchestratorOption {
	return func(o *Orchestrator) {
		o.textToSpeech = client
		o.speechOptions = opts
	}
}

// Archive stores the artifacts of a processed recording.
type Archive interface {
	SaveText(conversation *conversations.Conversation) (string, error)
	SaveMetadata(conversation *conversations.Conversation) (string, error)
	AudioFileName(timestamp string, part int) string
	AudioPath(name string) string
}

func WithArchive(archive Archive) OrchestratorOption {
	return func(o *Orchestrator) {
		o.archive = archive
	}
}

// Player plays a stored audio file and blocks until playback ends.
type Player interface {
	PlayFile(ctx context.Context, path string) error
}

func WithPlayer(player Player) OrchestratorOption {
	return func(o *Orchestrator) {
		o.player = player
	}
}

func WithWakeWord(wakeWord string) OrchestratorOption {
	return func(o *Orchestrator) {
		o.splitter = questions.NewSplitter(wakeWord)
	}
}

// WithChunkWords sets the word count after which a narration chunk is
// closed at the next sentence end.
func WithChunkWords(words int) OrchestratorOption {
	return func(o *Orchestrator) {
		if words > 0 {
			o.chunkWords = words
		}
	}
}

// WithCollectOptions passes options to every answer generation, e.g. a
// different word budget.
func WithCollectOptions(opts ...llms.CollectOption) OrchestratorOption {
	return func(o *Orchestrator) {
		o.collectOptions = append(o.collectOptions, opts...)
	}
}

// WithEventHandler registers a handler for pipeline events. Handlers are
// called synchronously in registration order.
func WithEventHandler(handler func(events.Event)) OrchestratorOption {
	return func(o *Orchestrator) {
		if handler != nil {
			o.emit = o.emit.with(handler)
		}
	}
}

// WithLogger sets the logger used for per-file progress lines.
func WithLogger(l *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

func withClock(now func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) {
		o.now = now
	}
}
