package speechtotext

const (
	DefaultModel    = "nova-3"
	DefaultLanguage = "en-US"
)

type TranscriptionOptions struct {
	Model       string
	Language    string
	SmartFormat bool

	// PartialTranscriptionCallback is called with every finalized segment of
	// the transcript, in order.
	PartialTranscriptionCallback func(transcript string)
}

func DefaultTranscriptionOptions() TranscriptionOptions {
	return TranscriptionOptions{
		Model:       DefaultModel,
		Language:    DefaultLanguage,
		SmartFormat: true,
	}
}

type TranscriptionOption func(*TranscriptionOptions)

func WithModel(model string) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		if model != "" {
			o.Model = model
		}
	}
}

func WithLanguage(language string) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		if language != "" {
			o.Language = language
		}
	}
}

func WithPartialTranscriptionCallback(callback func(transcript string)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.PartialTranscriptionCallback = callback
	}
}
