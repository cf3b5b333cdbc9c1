package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	"github.com/gorilla/websocket"
	"github.com/koscakluka/ema-jarvis/core/speechtotext"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultListenURL = "wss://api.deepgram.com/v1/listen"
	audioChunkSize   = 8192
)

type TranscriptionClient struct {
	apiKey    string
	listenURL string
	dialer    *websocket.Dialer
}

type ClientOption func(*TranscriptionClient)

// WithListenURL points the client at a different listen endpoint.
func WithListenURL(listenURL string) ClientOption {
	return func(c *TranscriptionClient) { c.listenURL = listenURL }
}

// NewTranscriptionClient creates a client authenticated with apiKey, falling
// back to DEEPGRAM_API_KEY when apiKey is empty.
func NewTranscriptionClient(apiKey string, opts ...ClientOption) (*TranscriptionClient, error) {
	if apiKey == "" {
		apiKey = os.Getenv("DEEPGRAM_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("deepgram api key not found")
	}

	client := &TranscriptionClient{
		apiKey:    apiKey,
		listenURL: defaultListenURL,
		dialer:    websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// TranscribeFile streams the file to Deepgram and returns the finalized
// transcript once the service has closed the stream.
func (c *TranscriptionClient) TranscribeFile(ctx context.Context, path string, opts ...speechtotext.TranscriptionOption) (string, error) {
	ctx, span := tracer.Start(ctx, "transcribe file")
	defer span.End()
	span.SetAttributes(attribute.String("request.path", path))

	options := speechtotext.DefaultTranscriptionOptions()
	for _, opt := range opts {
		opt(&options)
	}

	contentType, err := containerFor(path)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	span.SetAttributes(attribute.String("request.content_type", contentType))

	data, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("failed to read audio file: %w", err)
		span.RecordError(err)
		return "", err
	}

	conn, err := c.connectWebsocket(ctx, options)
	if err != nil {
		err = fmt.Errorf("failed to open websocket: %w", err)
		span.RecordError(err)
		return "", err
	}
	defer conn.Close()

	transcript := newTranscriptAccumulator(options.PartialTranscriptionCallback)
	readDone := make(chan error, 1)
	go func() { readDone <- readMessages(conn, transcript) }()

	if err := sendAudio(conn, data); err != nil {
		span.RecordError(err)
		return "", err
	}

	select {
	case err := <-readDone:
		if err != nil {
			span.RecordError(err)
			return "", err
		}
	case <-ctx.Done():
		conn.Close()
		<-readDone
		return "", ctx.Err()
	}

	result := transcript.String()
	span.SetAttributes(attribute.Int("response.transcript_length", len(result)))
	if result == "" {
		return "", speechtotext.ErrNoTranscript
	}
	return result, nil
}

func (c *TranscriptionClient) connectWebsocket(ctx context.Context, options speechtotext.TranscriptionOptions) (*websocket.Conn, error) {
	listenUrl, err := url.Parse(c.listenURL)
	if err != nil {
		return nil, fmt.Errorf("invalid listen url: %w", err)
	}
	queryParams := listenUrl.Query()
	queryParams.Set("model", options.Model)
	queryParams.Set("language", options.Language)
	queryParams.Set("smart_format", strconv.FormatBool(options.SmartFormat))
	queryParams.Set("punctuate", "true")
	listenUrl.RawQuery = queryParams.Encode()

	conn, _, err := c.dialer.DialContext(ctx, listenUrl.String(),
		http.Header{"Authorization": {"Token " + c.apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}
	return conn, nil
}

func sendAudio(conn *websocket.Conn, data []byte) error {
	for start := 0; start < len(data); start += audioChunkSize {
		end := min(start+audioChunkSize, len(data))
		if err := conn.WriteMessage(websocket.BinaryMessage, data[start:end]); err != nil {
			return fmt.Errorf("failed to write to deepgram client: %w", err)
		}
	}

	if err := conn.WriteJSON(struct {
		Type string `json:"type"`
	}{Type: string(api.TypeCloseStreamResponse)}); err != nil {
		return fmt.Errorf("failed to close deepgram stream through websocket: %w", err)
	}
	return nil
}

func readMessages(conn *websocket.Conn, transcript *transcriptAccumulator) error {
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				return nil
			}
			return fmt.Errorf("failed to read deepgram websocket message: %w", err)
		}
		if msgType == websocket.BinaryMessage {
			continue
		}
		if err := transcript.process(msg); err != nil {
			return err
		}
	}
}

var errDeepgram = errors.New("deepgram error")

type transcriptAccumulator struct {
	segments  []string
	onSegment func(string)
}

func newTranscriptAccumulator(onSegment func(string)) *transcriptAccumulator {
	if onSegment == nil {
		onSegment = func(string) {}
	}
	return &transcriptAccumulator{onSegment: onSegment}
}

// process handles a single text message. Only errors reported by the service
// are returned; messages that cannot be decoded are logged and skipped.
func (t *transcriptAccumulator) process(msg []byte) error {
	var parsedMsg struct {
		Type        string `json:"type"`
		Description string `json:"description"`
		Message     string `json:"message"`
	}
	if err := json.Unmarshal(msg, &parsedMsg); err != nil {
		logger.Debug("failed to unmarshal deepgram message", "error", err)
		return nil
	}

	switch api.TypeResponse(parsedMsg.Type) {
	case api.TypeMessageResponse:
		var msgResp api.MessageResponse
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			logger.Debug("failed to unmarshal deepgram results", "error", err)
			return nil
		}
		if !msgResp.IsFinal || len(msgResp.Channel.Alternatives) == 0 {
			return nil
		}
		segment := strings.TrimSpace(msgResp.Channel.Alternatives[0].Transcript)
		if segment != "" {
			t.segments = append(t.segments, segment)
			t.onSegment(segment)
		}
	case api.TypeSpeechStartedResponse, api.TypeUtteranceEndResponse:
	default:
		if parsedMsg.Type == "Error" {
			return fmt.Errorf("%w: %s", errDeepgram, strings.TrimSpace(parsedMsg.Description+" "+parsedMsg.Message))
		}
	}
	return nil
}

func (t *transcriptAccumulator) String() string {
	return strings.Join(t.segments, " ")
}
