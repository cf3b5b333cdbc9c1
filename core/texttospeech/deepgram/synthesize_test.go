package deepgram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/ema-jarvis/core/audio"
	"github.com/koscakluka/ema-jarvis/core/texttospeech"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type speakRecording struct {
	mu       sync.Mutex
	segments []string
	query    string
	auth     string
}

func (r *speakRecording) snapshot() ([]string, string, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.segments, r.query, r.auth
}

// newSpeakServer answers every Flush with two bytes of audio per character
// spoken so far. When failWith is set it reports that error instead.
func newSpeakServer(t *testing.T, failWith string) (*httptest.Server, *speakRecording) {
	t.Helper()

	recording := &speakRecording{}
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recording.mu.Lock()
		recording.query = r.URL.RawQuery
		recording.auth = r.Header.Get("Authorization")
		recording.mu.Unlock()

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		pending := 0
		for {
			var msg speakMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}

			switch msg.Type {
			case "Speak":
				recording.mu.Lock()
				recording.segments = append(recording.segments, msg.Text)
				recording.mu.Unlock()
				pending += len(msg.Text)
			case "Flush":
				if failWith != "" {
					conn.WriteJSON(map[string]any{"type": "Error", "description": failWith})
					continue
				}
				conn.WriteMessage(websocket.BinaryMessage, make([]byte, pending))
				conn.WriteMessage(websocket.BinaryMessage, make([]byte, pending))
				pending = 0
				conn.WriteJSON(map[string]any{"type": "Flushed", "sequence_id": 0})
			case "Close":
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv, recording
}

func newTestSynthesizer(t *testing.T, srv *httptest.Server) *TextToSpeechClient {
	t.Helper()

	client, err := NewTextToSpeechClient("test-key", "", WithSpeakURL("ws"+strings.TrimPrefix(srv.URL, "http")+"/v1/speak"))
	require.NoError(t, err)
	return client
}

func TestSynthesizeToFile_WritesWAV(t *testing.T) {
	srv, recording := newSpeakServer(t, "")
	client := newTestSynthesizer(t, srv)
	path := filepath.Join(t.TempDir(), "qa_session_part1.wav")

	streamed := 0
	err := client.SynthesizeToFile(context.Background(), "Question: What is up? Answer: The sky.", path,
		texttospeech.WithSpeechAudioCallback(func(chunk []byte) { streamed += len(chunk) }))
	require.NoError(t, err)

	pcm, info, err := audio.ReadWAVFile(path)
	require.NoError(t, err)

	text := "Question: What is up? Answer: The sky."
	assert.Len(t, pcm, 2*len(text))
	assert.Equal(t, 2*len(text), streamed)
	assert.Equal(t, audio.GetDefaultEncodingInfo(), info)

	segments, query, auth := recording.snapshot()
	assert.Equal(t, []string{text}, segments)
	assert.Equal(t, "token test-key", auth)
	assert.Contains(t, query, "model="+string(defaultVoice))
	assert.Contains(t, query, "encoding=linear16")
	assert.Contains(t, query, "container=none")
}

func TestSynthesizeToFile_SplitsLongText(t *testing.T) {
	srv, recording := newSpeakServer(t, "")
	client := newTestSynthesizer(t, srv)
	path := filepath.Join(t.TempDir(), "long.wav")

	err := client.SynthesizeToFile(context.Background(), strings.Repeat("word ", 100), path,
		texttospeech.WithSegmentLength(60))
	require.NoError(t, err)

	segments, _, _ := recording.snapshot()
	require.Greater(t, len(segments), 1)
	for _, segment := range segments {
		assert.LessOrEqual(t, len(segment), 60)
	}
}

func TestSynthesizeToFile_ServiceError(t *testing.T) {
	srv, _ := newSpeakServer(t, "voice unavailable")
	client := newTestSynthesizer(t, srv)

	err := client.SynthesizeToFile(context.Background(), "Hello.", filepath.Join(t.TempDir(), "out.wav"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, errDeepgram))
	assert.Contains(t, err.Error(), "voice unavailable")
}

func TestSynthesizeToFile_EmptyText(t *testing.T) {
	client, err := NewTextToSpeechClient("test-key", "")
	require.NoError(t, err)

	err = client.SynthesizeToFile(context.Background(), "  \n ", filepath.Join(t.TempDir(), "out.wav"))

	assert.True(t, errors.Is(err, texttospeech.ErrEmptyText))
}

func TestNewTextToSpeechClient_ValidatesVoice(t *testing.T) {
	_, err := NewTextToSpeechClient("test-key", "not-a-voice")
	assert.Error(t, err)

	voice, ok := ParseVoice("aura-orion-en")
	require.True(t, ok)
	client, err := NewTextToSpeechClient("test-key", voice)
	require.NoError(t, err)
	assert.Equal(t, "aura-orion-en", client.Voice())
}
