package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/glamour"
	"github.com/koscakluka/ema-jarvis/core/events"
	"github.com/koscakluka/ema-jarvis/core/llms"
	"github.com/koscakluka/ema-jarvis/core/questions"
	"github.com/koscakluka/ema-jarvis/core/speechtotext"
	"github.com/muesli/reflow/wordwrap"
)

// console prints pipeline progress for a person watching the run. Streamed
// answers are printed as they arrive, each fresh line led by a spinner frame.
type console struct {
	out    io.Writer
	width  int
	frames []string
}

func newConsole(out io.Writer, width int) *console {
	if width <= 0 {
		width = 100
	}
	return &console{out: out, width: width, frames: spinner.MiniDot.Frames}
}

func (c *console) frame(sequence int) string {
	return c.frames[sequence%len(c.frames)]
}

func (c *console) wrap(text string) string {
	return wordwrap.String(text, c.width)
}

func (c *console) HandleEvent(event events.Event) {
	switch typedEvent := event.(type) {
	case events.FileStarted:
		fmt.Fprintln(c.out, fileStyle.Render("▶ "+filepath.Base(typedEvent.Path)))
	case events.TranscriptFinal:
		fmt.Fprintln(c.out, dimStyle.Render(c.wrap(typedEvent.Transcript)))
	case events.QuestionsFound:
		fmt.Fprintln(c.out, dimStyle.Render(fmt.Sprintf("Found %d questions", len(typedEvent.Questions))))
	case events.QuestionStarted:
		fmt.Fprintf(c.out, "\n%s %s\n",
			questionStyle.Render(fmt.Sprintf("Question %d/%d:", typedEvent.Index+1, typedEvent.Total)),
			typedEvent.Question)
		fmt.Fprintln(c.out, dimStyle.Render("🤔 Receiving response:"))
	case events.AnswerProgress:
		if typedEvent.Update.StartsLine {
			fmt.Fprintf(c.out, "%s %s", spinnerStyle.Render(c.frame(typedEvent.Update.Sequence)), typedEvent.Update.Text)
			return
		}
		fmt.Fprint(c.out, typedEvent.Update.Text)
	case events.AnswerFinal:
		fmt.Fprintln(c.out)
		if typedEvent.Pair.Failed {
			fmt.Fprintln(c.out, errorStyle.Render(c.wrap("❌ "+typedEvent.Pair.Answer)))
			return
		}
		if typedEvent.Outcome == llms.OutcomeTruncated {
			fmt.Fprintln(c.out, warnStyle.Render("⚠️  Response exceeded the word limit, truncating..."))
		}
		fmt.Fprintln(c.out, successStyle.Render(fmt.Sprintf("✨ Response completed in %.1f seconds", typedEvent.Elapsed.Seconds())))
	case events.AnswerDropped:
		fmt.Fprintln(c.out, warnStyle.Render("⚠️  No answer for: "+typedEvent.Question))
	case events.ConversationTextSaved:
		fmt.Fprintln(c.out, successStyle.Render("✅ Saved Q&A to "+typedEvent.File))
	case events.SpeechChunkSaved:
		fmt.Fprintln(c.out, successStyle.Render(fmt.Sprintf("🔊 Saved part %d/%d to %s", typedEvent.Part, typedEvent.Total, typedEvent.File)))
	case events.SpeechChunkFailed:
		fmt.Fprintln(c.out, errorStyle.Render(c.wrap(fmt.Sprintf("❌ Part %d/%d could not be synthesized: %v", typedEvent.Part, typedEvent.Total, typedEvent.Err))))
	case events.FileSkipped:
		fmt.Fprintln(c.out, dimStyle.Render(c.wrap(fmt.Sprintf("Skipped %s: %s", filepath.Base(typedEvent.Path), skipReason(typedEvent.Reason)))))
	}
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, speechtotext.ErrNoTranscript):
		return "no transcription available"
	case errors.Is(err, questions.ErrWakeWordMissing):
		return "wake word not found"
	case errors.Is(err, questions.ErrNoQuestions):
		return "no valid questions"
	case err == nil:
		return "unknown reason"
	default:
		return err.Error()
	}
}

// markdownRenderer renders stored conversations. Falls back to plain text if
// the renderer is unavailable.
type markdownRenderer struct {
	renderer *glamour.TermRenderer
}

func newMarkdownRenderer(width int) *markdownRenderer {
	if width <= 0 {
		width = 100
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return &markdownRenderer{}
	}
	return &markdownRenderer{renderer: r}
}

func (m *markdownRenderer) Render(text string) string {
	if m.renderer == nil {
		return text
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return out
}
