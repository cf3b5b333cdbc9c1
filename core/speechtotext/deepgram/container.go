package deepgram

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/koscakluka/ema-jarvis/core/speechtotext"
)

// containerTypes lists the audio containers Deepgram detects on its own, so
// no encoding parameters have to be sent along.
var containerTypes = map[string]string{
	".m4a":  "audio/mp4",
	".mp4":  "audio/mp4",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".opus": "audio/ogg",
	".webm": "audio/webm",
	".aac":  "audio/aac",
}

func containerFor(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	contentType, ok := containerTypes[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", speechtotext.ErrUnsupportedAudio, ext)
	}
	return contentType, nil
}
