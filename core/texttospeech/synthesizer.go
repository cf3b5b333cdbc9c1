package texttospeech

import (
	"context"
	"errors"
	"strings"
)

var ErrEmptyText = errors.New("nothing to synthesize")

// FileSynthesizer turns text into speech and stores it as a WAV file.
type FileSynthesizer interface {
	SynthesizeToFile(ctx context.Context, text, path string, opts ...TextToSpeechOption) error
}

// SplitText packs the words of text into segments of at most maxLength
// characters. A single word longer than maxLength becomes its own segment.
func SplitText(text string, maxLength int) []string {
	var (
		segments []string
		current  strings.Builder
	)
	for _, word := range strings.Fields(text) {
		if current.Len() > 0 && current.Len()+1+len(word) > maxLength {
			segments = append(segments, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		segments = append(segments, current.String())
	}
	return segments
}
