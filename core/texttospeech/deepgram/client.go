package deepgram

import (
	"fmt"
	"os"
	"slices"

	"github.com/gorilla/websocket"
)

const defaultSpeakURL = "wss://api.deepgram.com/v1/speak"

type TextToSpeechClient struct {
	apiKey   string
	speakURL string
	dialer   *websocket.Dialer

	voice deepgramVoice
}

type ClientOption func(*TextToSpeechClient)

// WithSpeakURL points the client at a different speak endpoint.
func WithSpeakURL(speakURL string) ClientOption {
	return func(c *TextToSpeechClient) { c.speakURL = speakURL }
}

// NewTextToSpeechClient creates a client authenticated with apiKey, falling
// back to DEEPGRAM_API_KEY when apiKey is empty. An empty voice selects the
// default voice.
func NewTextToSpeechClient(apiKey string, voice deepgramVoice, opts ...ClientOption) (*TextToSpeechClient, error) {
	if apiKey == "" {
		apiKey = os.Getenv("DEEPGRAM_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("deepgram api key not found")
	}

	client := &TextToSpeechClient{
		apiKey:   apiKey,
		speakURL: defaultSpeakURL,
		dialer:   websocket.DefaultDialer,
		voice:    defaultVoice,
	}

	if voice != "" {
		if !slices.Contains(GetAvailableVoices(), voice) {
			return nil, fmt.Errorf("invalid voice %q", voice)
		}
		client.voice = voice
	}

	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

func (c *TextToSpeechClient) Voice() string {
	return string(c.voice)
}
