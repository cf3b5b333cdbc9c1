package texttospeech

import "github.com/koscakluka/ema-jarvis/core/audio"

// DefaultSegmentLength is the largest piece of text sent to a synthesizer in
// one request.
const DefaultSegmentLength = 2000

type TextToSpeechOptions struct {
	// Voice overrides the voice configured on the client
	Voice string
	// SegmentLength caps the number of characters sent per request
	SegmentLength int
	// SpeechAudioCallback is called with every piece of audio as it arrives
	SpeechAudioCallback func(audio []byte)

	EncodingInfo audio.EncodingInfo
}

func DefaultTextToSpeechOptions() TextToSpeechOptions {
	return TextToSpeechOptions{
		SegmentLength:       DefaultSegmentLength,
		SpeechAudioCallback: func([]byte) {},
		EncodingInfo:        audio.GetDefaultEncodingInfo(),
	}
}

type TextToSpeechOption func(*TextToSpeechOptions)

func WithVoice(voice string) TextToSpeechOption {
	return func(o *TextToSpeechOptions) { o.Voice = voice }
}

func WithSegmentLength(length int) TextToSpeechOption {
	return func(o *TextToSpeechOptions) {
		if length > 0 {
			o.SegmentLength = length
		}
	}
}

func WithSpeechAudioCallback(callback func([]byte)) TextToSpeechOption {
	return func(o *TextToSpeechOptions) {
		if callback != nil {
			o.SpeechAudioCallback = callback
		}
	}
}
