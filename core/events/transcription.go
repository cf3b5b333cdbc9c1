package events

const (
	// KindTranscriptSegment identifies finalized append-only transcript segments.
	KindTranscriptSegment Kind = "transcription.segment"
	// KindTranscriptFinal identifies the full transcript of a recording.
	KindTranscriptFinal Kind = "transcription.final"
)

// TranscriptSegment carries a finalized append-only transcript segment.
type TranscriptSegment struct {
	Base
	Segment string
}

// NewTranscriptSegment creates a transcript segment event.
func NewTranscriptSegment(segment string) TranscriptSegment {
	return TranscriptSegment{Base: NewBase(KindTranscriptSegment), Segment: segment}
}

// TranscriptFinal carries the full transcript of a recording.
type TranscriptFinal struct {
	Base
	Path       string
	Transcript string
}

// NewTranscriptFinal creates a transcript final event.
func NewTranscriptFinal(path, transcript string) TranscriptFinal {
	return TranscriptFinal{Base: NewBase(KindTranscriptFinal), Path: path, Transcript: transcript}
}
