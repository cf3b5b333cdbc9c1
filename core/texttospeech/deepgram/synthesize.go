package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/ema-jarvis/core/audio"
	"github.com/koscakluka/ema-jarvis/core/texttospeech"
	"go.opentelemetry.io/otel/attribute"
)

var errDeepgram = errors.New("deepgram error")

type websocketMessage struct {
	Type string `json:"type"`
}

type speakMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

var (
	flushMsg = websocketMessage{Type: "Flush"}
	closeMsg = websocketMessage{Type: "Close"}
)

// SynthesizeToFile speaks text through the speak websocket and stores the
// returned audio as a WAV file at path.
func (c *TextToSpeechClient) SynthesizeToFile(ctx context.Context, text, path string, opts ...texttospeech.TextToSpeechOption) error {
	ctx, span := tracer.Start(ctx, "synthesize to file")
	defer span.End()

	options := texttospeech.DefaultTextToSpeechOptions()
	for _, opt := range opts {
		opt(&options)
	}
	voice := c.voice
	if options.Voice != "" {
		voice = deepgramVoice(options.Voice)
	}
	span.SetAttributes(
		attribute.String("request.voice", string(voice)),
		attribute.String("request.path", path),
		attribute.Int("request.text_length", len(text)),
	)

	segments := texttospeech.SplitText(text, options.SegmentLength)
	if len(segments) == 0 {
		return texttospeech.ErrEmptyText
	}

	pcm, err := c.synthesize(ctx, voice, segments, options)
	if err != nil {
		span.RecordError(err)
		return err
	}
	span.SetAttributes(attribute.Int("response.audio_bytes", len(pcm)))

	if err := audio.WriteWAVFile(path, pcm, options.EncodingInfo); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (c *TextToSpeechClient) synthesize(ctx context.Context, voice deepgramVoice, segments []string, options texttospeech.TextToSpeechOptions) ([]byte, error) {
	conn, err := c.connectWebsocket(ctx, voice, options.EncodingInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to open websocket: %w", err)
	}
	defer conn.Close()

	req := &speechRequest{
		onAudio: options.SpeechAudioCallback,
		flushed: make(chan struct{}, 1),
		done:    make(chan error, 1),
	}
	go req.processIncomingMessages(conn)

	for _, segment := range segments {
		if err := conn.WriteJSON(speakMessage{Type: "Speak", Text: segment}); err != nil {
			return nil, fmt.Errorf("failed to send text to deepgram through websocket: %w", err)
		}
	}
	if err := conn.WriteJSON(flushMsg); err != nil {
		return nil, fmt.Errorf("failed to flush deepgram buffer through websocket: %w", err)
	}

	select {
	case <-req.flushed:
	case err := <-req.done:
		if err == nil {
			err = fmt.Errorf("deepgram closed the stream before flushing")
		}
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if err := conn.WriteJSON(closeMsg); err != nil {
		logger.Debug("failed to send close message to deepgram websocket", "error", err)
	}
	return req.audio(), nil
}

func (c *TextToSpeechClient) connectWebsocket(ctx context.Context, voice deepgramVoice, encodingInfo audio.EncodingInfo) (*websocket.Conn, error) {
	speakUrl, err := url.Parse(c.speakURL)
	if err != nil {
		return nil, fmt.Errorf("invalid speak url: %w", err)
	}

	urlValues := speakUrl.Query()
	urlValues.Set("encoding", encodingInfo.Format.Name())
	urlValues.Set("sample_rate", strconv.Itoa(encodingInfo.SampleRate))
	urlValues.Set("model", string(voice))
	urlValues.Set("container", "none")
	speakUrl.RawQuery = urlValues.Encode()

	conn, _, err := c.dialer.DialContext(ctx, speakUrl.String(),
		http.Header{"Authorization": {"token " + c.apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}

	return conn, nil
}

type speechRequest struct {
	onAudio func([]byte)

	buffer   []byte
	bufferMu sync.Mutex

	flushed chan struct{}
	done    chan error
}

func (r *speechRequest) processIncomingMessages(conn *websocket.Conn) {
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				r.done <- nil
				return
			}
			r.done <- fmt.Errorf("websocket read error: %w", err)
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			if len(msg) == 0 {
				continue
			}
			r.bufferMu.Lock()
			r.buffer = append(r.buffer, msg...)
			r.bufferMu.Unlock()
			r.onAudio(msg)
		case websocket.TextMessage:
			var parsedMsg struct {
				Type        string `json:"type"`
				Description string `json:"description"`
				WarnMsg     string `json:"warn_msg"`
			}
			if err := json.Unmarshal(msg, &parsedMsg); err != nil {
				logger.Debug("failed to unmarshal deepgram message", "error", err)
				continue
			}

			switch parsedMsg.Type {
			case "Flushed":
				select {
				case r.flushed <- struct{}{}:
				default:
				}
			case "Warning":
				logger.Warn("deepgram warning", "message", parsedMsg.WarnMsg)
			case "Error":
				r.done <- fmt.Errorf("%w: %s", errDeepgram, strings.TrimSpace(parsedMsg.Description))
				return
			}
		}
	}
}

func (r *speechRequest) audio() []byte {
	r.bufferMu.Lock()
	defer r.bufferMu.Unlock()
	return r.buffer
}
