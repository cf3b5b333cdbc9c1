package speechtotext

import (
	"context"
	"errors"
)

var (
	// ErrNoTranscript is returned when the audio was processed but no speech
	// was recognized.
	ErrNoTranscript = errors.New("no transcript produced")
	// ErrUnsupportedAudio is returned for audio containers the transcriber
	// cannot handle.
	ErrUnsupportedAudio = errors.New("unsupported audio file")
)

// FileTranscriber turns a recorded audio file into text.
type FileTranscriber interface {
	TranscribeFile(ctx context.Context, path string, opts ...TranscriptionOption) (string, error)
}
