package orchestration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/koscakluka/ema-jarvis/core/conversations"
	"github.com/koscakluka/ema-jarvis/core/events"
	"github.com/koscakluka/ema-jarvis/core/llms"
	"github.com/koscakluka/ema-jarvis/core/narration"
	"github.com/koscakluka/ema-jarvis/core/questions"
	"github.com/koscakluka/ema-jarvis/core/speechtotext"
	"github.com/koscakluka/ema-jarvis/core/texttospeech"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const DefaultPattern = "*.m4a"

var (
	// ErrNoAnswers is returned when every question of a recording came back
	// without an answer.
	ErrNoAnswers = errors.New("no answers were generated")

	errNotConfigured = errors.New("orchestrator is not configured")
)

// Orchestrator runs recordings through the pipeline: transcription, question
// extraction, answer generation, narration and storage. It handles one
// recording at a time.
type Orchestrator struct {
	speechToText         speechtotext.FileTranscriber
	transcriptionOptions []speechtotext.TranscriptionOption

	llm            LLM
	collectOptions []llms.CollectOption

	textToSpeech  texttospeech.FileSynthesizer
	speechOptions []texttospeech.TextToSpeechOption

	archive Archive
	player  Player

	splitter   *questions.Splitter
	chunkWords int

	emit   eventEmitter
	logger *slog.Logger
	now    func() time.Time
}

func NewOrchestrator(opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		splitter:   questions.NewSplitter(questions.DefaultWakeWord),
		chunkWords: narration.DefaultChunkWords,
		logger:     logger,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.emit == nil {
		o.emit = noopEventEmitter
	}

	return o
}

// Summary counts what a directory run did.
type Summary struct {
	Files         int
	Processed     int
	Skipped       int
	Conversations []*conversations.Conversation
}

// ProcessDirectory processes every file in dir matching pattern, in name
// order. A file that fails or yields nothing to answer is skipped and the
// run continues; only cancellation of ctx stops it early.
func (o *Orchestrator) ProcessDirectory(ctx context.Context, dir, pattern string) (Summary, error) {
	if err := o.validate(); err != nil {
		return Summary{}, err
	}
	if pattern == "" {
		pattern = DefaultPattern
	}

	ctx, span := tracer.Start(ctx, "process directory", trace.WithAttributes(
		attribute.String("input.dir", dir),
		attribute.String("input.pattern", pattern),
	))
	defer span.End()

	files, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		span.RecordError(err)
		return Summary{}, fmt.Errorf("invalid input pattern %q: %w", pattern, err)
	}
	sort.Strings(files)

	summary := Summary{Files: len(files)}
	o.logger.Info(fmt.Sprintf("Found %d %s files to process", len(files), pattern), "dir", dir)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		var conversation *conversations.Conversation
		run := panicSafeNamedWorker(filepath.Base(file), func(ctx context.Context) error {
			var err error
			conversation, err = o.ProcessFile(ctx, file)
			return err
		})
		if err := run(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return summary, ctxErr
			}
			summary.Skipped++
			continue
		}

		summary.Processed++
		summary.Conversations = append(summary.Conversations, conversation)
	}

	span.SetAttributes(
		attribute.Int("result.processed", summary.Processed),
		attribute.Int("result.skipped", summary.Skipped),
	)
	return summary, nil
}

// ProcessFile runs one recording through the pipeline and returns the stored
// conversation. The returned error explains why nothing was stored, e.g.
// speechtotext.ErrNoTranscript, questions.ErrWakeWordMissing,
// questions.ErrNoQuestions or ErrNoAnswers.
func (o *Orchestrator) ProcessFile(ctx context.Context, path string) (*conversations.Conversation, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "process file", trace.WithAttributes(attribute.String("input.path", path)))
	defer span.End()

	conversation, err := o.processFile(ctx, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.emit(events.NewFileSkipped(path, err))
		return nil, err
	}

	span.SetAttributes(
		attribute.String("conversation.id", conversation.ID),
		attribute.Int("conversation.pairs", len(conversation.Pairs)),
		attribute.Int("conversation.audio_files", len(conversation.AudioFiles)),
	)
	o.emit(events.NewFileCompleted(path, conversation))
	return conversation, nil
}

func (o *Orchestrator) processFile(ctx context.Context, path string) (*conversations.Conversation, error) {
	o.logger.Info("Starting to process audio file", "path", path)
	o.emit(events.NewFileStarted(path))

	transcript, err := o.transcribe(ctx, path)
	if err != nil {
		return nil, err
	}

	found, err := o.splitter.Extract(transcript)
	switch {
	case errors.Is(err, questions.ErrWakeWordMissing):
		o.logger.Info(fmt.Sprintf("Wake word '%s' not found, skipping processing", o.splitter.WakeWord()), "path", path)
		return nil, err
	case err != nil:
		o.logger.Info("No valid questions found", "path", path)
		return nil, err
	}
	o.logger.Info(fmt.Sprintf("Found %d questions in the audio", len(found)))
	o.emit(events.NewQuestionsFound(found))

	pairs, err := o.answer(ctx, found)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		o.logger.Warn("No answers were generated", "path", path)
		return nil, ErrNoAnswers
	}

	conversation := conversations.New(filepath.Base(path), o.now())
	conversation.Transcript = transcript
	for _, pair := range pairs {
		conversation.Add(pair)
	}

	textFile, err := o.archive.SaveText(conversation)
	if err != nil {
		return nil, fmt.Errorf("failed to save conversation text: %w", err)
	}
	o.emit(events.NewConversationTextSaved(conversation.ID, textFile))

	if o.textToSpeech != nil {
		if err := o.narrate(ctx, conversation); err != nil {
			return nil, err
		}
	}

	metadataFile, err := o.archive.SaveMetadata(conversation)
	if err != nil {
		return nil, fmt.Errorf("failed to save conversation metadata: %w", err)
	}
	o.emit(events.NewConversationMetadataSaved(conversation.ID, metadataFile))

	o.logger.Info(fmt.Sprintf("Completed processing - generated %d audio files", len(conversation.AudioFiles)), "path", path)
	o.logger.Info("Conversation saved", "text", textFile, "metadata", metadataFile)
	return conversation, nil
}

func (o *Orchestrator) transcribe(ctx context.Context, path string) (string, error) {
	opts := append([]speechtotext.TranscriptionOption{
		speechtotext.WithPartialTranscriptionCallback(func(segment string) {
			o.emit(events.NewTranscriptSegment(segment))
		}),
	}, o.transcriptionOptions...)

	transcript, err := o.speechToText.TranscribeFile(ctx, path, opts...)
	if err == nil && strings.TrimSpace(transcript) == "" {
		err = speechtotext.ErrNoTranscript
	}
	if err != nil {
		if errors.Is(err, speechtotext.ErrNoTranscript) {
			o.logger.Warn("No transcription available", "path", path)
		} else {
			o.logger.Warn("Transcription failed", "path", path, "error", err)
		}
		return "", fmt.Errorf("failed to transcribe %s: %w", filepath.Base(path), err)
	}

	o.logger.Info("Transcription", "text", transcript)
	o.emit(events.NewTranscriptFinal(path, transcript))
	return transcript, nil
}

// answer asks the model every question in order. Failed generations keep the
// failure message as the answer; empty answers are left out.
func (o *Orchestrator) answer(ctx context.Context, found []string) ([]conversations.QAPair, error) {
	pairs := make([]conversations.QAPair, 0, len(found))
	for i, question := range found {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		o.logger.Info(fmt.Sprintf("Processing question %d/%d: %s", i+1, len(found), question))
		o.emit(events.NewQuestionStarted(i, len(found), question))

		opts := append([]llms.CollectOption{}, o.collectOptions...)
		opts = append(opts, llms.WithProgressObserver(o.emit.progressObserver(i)))
		result := o.llm.Generate(ctx, question, opts...)

		pair := conversations.NewQAPair(question, result)
		if !pair.Failed && pair.Answer == "" {
			o.logger.Warn("Model returned an empty answer, dropping question", "question", question)
			o.emit(events.NewAnswerDropped(i, question))
			continue
		}
		if pair.Failed {
			o.logger.Warn("Answer generation failed", "question", question, "kind", pair.FailureKind, "error", result.Err())
		}

		o.emit(events.NewAnswerFinal(i, pair, result))
		pairs = append(pairs, pair)
	}
	return pairs, nil
}

// narrate synthesizes the conversation chunk by chunk. A chunk that fails to
// synthesize is skipped; only cancellation aborts.
func (o *Orchestrator) narrate(ctx context.Context, conversation *conversations.Conversation) error {
	text := narration.Build(conversation.Pairs)
	chunks := narration.Chunk(text, o.chunkWords)
	o.logger.Info(fmt.Sprintf("Total response length: %d words", len(strings.Fields(text))))

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}

		part := i + 1
		name := o.archive.AudioFileName(conversation.Timestamp, part)
		path := o.archive.AudioPath(name)
		o.logger.Info(fmt.Sprintf("Converting chunk %d/%d to speech (%d words)", part, len(chunks), len(strings.Fields(chunk))))

		if err := o.textToSpeech.SynthesizeToFile(ctx, chunk, path, o.speechOptions...); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			o.logger.Warn("Failed to synthesize chunk, skipping", "part", part, "error", err)
			o.emit(events.NewSpeechChunkFailed(part, len(chunks), err))
			continue
		}

		conversation.AudioFiles = append(conversation.AudioFiles, name)
		o.emit(events.NewSpeechChunkSaved(part, len(chunks), name))

		if o.player != nil {
			err := o.player.PlayFile(ctx, path)
			if err != nil {
				o.logger.Warn("Playback failed", "file", name, "error", err)
			}
			o.emit(events.NewSpeechPlaybackEnded(name, err))
		}
	}
	return nil
}

func (o *Orchestrator) validate() error {
	var missing []string
	if o.speechToText == nil {
		missing = append(missing, "speech-to-text")
	}
	if o.llm == nil {
		missing = append(missing, "llm")
	}
	if o.archive == nil {
		missing = append(missing, "archive")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", errNotConfigured, strings.Join(missing, ", "))
	}
	return nil
}
