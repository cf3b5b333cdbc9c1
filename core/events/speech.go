package events

const (
	// KindSpeechChunkSaved identifies a narration chunk written as audio.
	KindSpeechChunkSaved Kind = "speech.chunk_saved"
	// KindSpeechChunkFailed identifies a narration chunk that failed to synthesize.
	KindSpeechChunkFailed Kind = "speech.chunk_failed"
	// KindSpeechPlaybackEnded identifies the end of local playback of an audio file.
	KindSpeechPlaybackEnded Kind = "speech.playback_ended"
)

// SpeechChunkSaved carries the audio file written for one narration chunk.
// Part is one-based.
type SpeechChunkSaved struct {
	Base
	Part  int
	Total int
	File  string
}

// NewSpeechChunkSaved creates a speech chunk saved event.
func NewSpeechChunkSaved(part, total int, file string) SpeechChunkSaved {
	return SpeechChunkSaved{Base: NewBase(KindSpeechChunkSaved), Part: part, Total: total, File: file}
}

// SpeechChunkFailed carries the synthesis error for one skipped narration chunk.
type SpeechChunkFailed struct {
	Base
	Part  int
	Total int
	Err   error
}

// NewSpeechChunkFailed creates a speech chunk failed event.
func NewSpeechChunkFailed(part, total int, err error) SpeechChunkFailed {
	return SpeechChunkFailed{Base: NewBase(KindSpeechChunkFailed), Part: part, Total: total, Err: err}
}

// SpeechPlaybackEnded marks the end of local playback. Err is set when
// playback did not finish.
type SpeechPlaybackEnded struct {
	Base
	File string
	Err  error
}

// NewSpeechPlaybackEnded creates a speech playback ended event.
func NewSpeechPlaybackEnded(file string, err error) SpeechPlaybackEnded {
	return SpeechPlaybackEnded{Base: NewBase(KindSpeechPlaybackEnded), File: file, Err: err}
}
