package llms

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/koscakluka/ema-jarvis/internal/utils"
)

const flushMarks = ".!?\n;"

// Collect consumes the stream and assembles the final answer.
//
// Fragments are buffered until the buffer contains sentence punctuation, a
// line break or a semicolon, or grows past the flush length; flushed text is
// kept in arrival order. Once the running word count exceeds the budget the
// stream is abandoned and the fragment that crossed it is dropped. A
// completion signal flushes what is left in the buffer. Stream errors
// short-circuit into a failed result without an answer.
func Collect(ctx context.Context, stream Stream, opts ...CollectOption) Result {
	options := defaultCollectOptions()
	for _, opt := range opts {
		opt(&options)
	}

	startedAt := options.now()
	progress := newProgressEmitter(options, startedAt)

	var (
		parts   []string
		buffer  string
		words   int
		usage   *Usage
		outcome = OutcomeExhausted
	)

	for chunk, err := range stream.Chunks(ctx) {
		if err != nil {
			result := failedResult(err)
			result.Elapsed = options.now().Sub(startedAt)
			return result
		}

		if usageChunk, ok := chunk.(StreamUsageChunk); ok {
			usage = utils.Ptr(usageChunk.Usage())
		}

		if contentChunk, ok := chunk.(StreamContentChunk); ok {
			fragment := contentChunk.Content()
			words += len(strings.Fields(fragment))
			if words > options.WordBudget {
				outcome = OutcomeTruncated
				break
			}

			buffer += fragment
			if shouldFlush(buffer, options.FlushLength) {
				parts = append(parts, buffer)
				progress.throttled(buffer)
				buffer = ""
			}
		}

		if chunk.FinishReason() != nil {
			if buffer != "" {
				parts = append(parts, buffer)
				progress.emit(buffer)
			}
			outcome = OutcomeCompleted
			break
		}
	}

	return Result{
		Outcome: outcome,
		Text:    NormalizeWhitespace(strings.Join(parts, "")),
		Usage:   usage,
		Elapsed: options.now().Sub(startedAt),
	}
}

// NormalizeWhitespace collapses whitespace runs into single spaces and trims
// both ends.
func NormalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func shouldFlush(buffer string, flushLength int) bool {
	return strings.ContainsAny(buffer, flushMarks) || utf8.RuneCountInString(buffer) > flushLength
}

type progressEmitter struct {
	observer ProgressObserver
	interval time.Duration
	now      func() time.Time

	lastUpdate  time.Time
	lineStarted bool
	sequence    int
}

func newProgressEmitter(options CollectOptions, startedAt time.Time) *progressEmitter {
	return &progressEmitter{
		observer:   options.Observer,
		interval:   options.ProgressInterval,
		now:        options.now,
		lastUpdate: startedAt,
	}
}

// throttled emits text only when the progress interval has passed since the
// previous update. Skipped text is not replayed.
func (p *progressEmitter) throttled(text string) {
	now := p.now()
	if now.Sub(p.lastUpdate) < p.interval {
		return
	}
	p.lastUpdate = now
	p.emit(text)
}

func (p *progressEmitter) emit(text string) {
	p.observer.OnProgress(ProgressUpdate{
		Text:       text,
		StartsLine: !p.lineStarted,
		Sequence:   p.sequence,
	})
	p.sequence++
	p.lineStarted = !strings.HasSuffix(text, "\n")
}
