package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/koscakluka/ema-jarvis/core/llms"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// maxLineSize bounds a single stream line. Longer lines are skipped.
const maxLineSize = 1024 * 1024

var errLineTooLong = errors.New("stream line exceeds the size limit")

type requestBody struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options requestOptions `json:"options"`
}

type requestOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
	TopK        int     `json:"top_k"`
	TopP        float64 `json:"top_p"`
}

type streamingResponseBody struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`

	DoneReason         string `json:"done_reason,omitempty"`
	TotalDuration      int64  `json:"total_duration,omitempty"`
	LoadDuration       int64  `json:"load_duration,omitempty"`
	PromptEvalCount    int    `json:"prompt_eval_count,omitempty"`
	PromptEvalDuration int64  `json:"prompt_eval_duration,omitempty"`
	EvalCount          int    `json:"eval_count,omitempty"`
	EvalDuration       int64  `json:"eval_duration,omitempty"`
}

func (r streamingResponseBody) usage() llms.Usage {
	return llms.Usage{
		InputTokens:          r.PromptEvalCount,
		OutputTokens:         r.EvalCount,
		TotalTokens:          r.PromptEvalCount + r.EvalCount,
		LoadTime:             seconds(r.LoadDuration),
		InputProcessingTime:  seconds(r.PromptEvalDuration),
		OutputProcessingTime: seconds(r.EvalDuration),
		TotalTime:            seconds(r.TotalDuration),
	}
}

func seconds(nanoseconds int64) float64 {
	return time.Duration(nanoseconds).Seconds()
}

// GenerateStream prepares a streamed completion of prompt. Nothing is sent
// until the chunks are iterated.
func (c *Client) GenerateStream(prompt string) *Stream {
	return &Stream{
		httpClient: c.httpClient,
		logger:     c.logger,
		url:        c.config.BaseURL + generatePath,
		body: requestBody{
			Model:  c.config.Model,
			Prompt: prompt,
			Stream: true,
			Options: requestOptions{
				Temperature: c.config.Temperature,
				NumPredict:  c.config.NumPredict,
				TopK:        c.config.TopK,
				TopP:        c.config.TopP,
			},
		},
	}
}

type Stream struct {
	httpClient *http.Client
	logger     *slog.Logger
	url        string
	body       requestBody
}

// Chunks sends the request and yields one chunk per decoded line. Lines that
// are not valid JSON or longer than maxLineSize are skipped. Request failures
// are yielded as *llms.Failure.
func (s *Stream) Chunks(ctx context.Context) func(func(llms.StreamChunk, error) bool) {
	requestToFirstTokenTime := time.Time{}
	setRequestToFirstTokenTime := func(span trace.Span) {
		if requestToFirstTokenTime.IsZero() {
			return
		}
		span.SetAttributes(attribute.Float64("response.request_to_first_token_time", time.Since(requestToFirstTokenTime).Seconds()))
		span.AddEvent("received first chunk")
		requestToFirstTokenTime = time.Time{}
	}

	return func(yield func(llms.StreamChunk, error) bool) {
		ctx, span := tracer.Start(ctx, "prompt llm stream")
		defer span.End()
		span.SetAttributes(attribute.String("request.model", s.body.Model))

		requestBodyBytes, err := json.Marshal(s.body)
		if err != nil {
			err = fmt.Errorf("error marshalling JSON: %w", err)
			span.RecordError(err)
			yield(nil, transportFailure(err))
			return
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewBuffer(requestBodyBytes))
		if err != nil {
			err = fmt.Errorf("error creating HTTP request: %w", err)
			span.RecordError(err)
			yield(nil, transportFailure(err))
			return
		}
		req.Header.Set("Content-Type", "application/json")
		span.SetAttributes(attribute.String("request.url", req.URL.String()))

		requestToFirstTokenTime = time.Now()
		span.AddEvent("request started")
		resp, err := s.httpClient.Do(req)
		if err != nil {
			span.RecordError(err)
			yield(nil, classifyRequestError(fmt.Errorf("error sending request: %w", err)))
			return
		}
		defer resp.Body.Close()

		span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
		if resp.StatusCode == http.StatusNotFound {
			err := fmt.Errorf("model %q not found", s.body.Model)
			span.RecordError(err)
			s.logger.Error("model not found, try pulling it first",
				"model", s.body.Model,
				"hint", "ollama pull "+s.body.Model)
			yield(nil, modelNotFoundFailure(err))
			return
		}
		if resp.StatusCode != http.StatusOK {
			if errorBody, err := io.ReadAll(resp.Body); err == nil {
				span.SetAttributes(attribute.String("response.error", string(errorBody)))
			}
			err := fmt.Errorf("non-OK HTTP status: %s", resp.Status)
			span.RecordError(err)
			yield(nil, transportFailure(err))
			return
		}

		reader := bufio.NewReaderSize(resp.Body, 64*1024)
		for {
			raw, readErr := readLine(reader)
			if errors.Is(readErr, errLineTooLong) {
				s.logger.Warn("skipping oversized stream line", "limit", maxLineSize)
				continue
			}
			if readErr != nil && !errors.Is(readErr, io.EOF) {
				span.RecordError(readErr)
				yield(nil, classifyRequestError(fmt.Errorf("error reading streamed response: %w", readErr)))
				return
			}

			if line := strings.TrimSpace(string(raw)); line != "" {
				setRequestToFirstTokenTime(span)

				var responseBody streamingResponseBody
				if err := json.Unmarshal([]byte(line), &responseBody); err != nil {
					s.logger.Debug("skipping malformed stream line", "error", err)
				} else if responseBody.Done {
					usage := responseBody.usage()
					span.SetAttributes(
						attribute.Int("usage.input", usage.InputTokens),
						attribute.Int("usage.output", usage.OutputTokens),
						attribute.Int("usage.total", usage.TotalTokens),
						attribute.Float64("usage.total_time", usage.TotalTime),
					)

					reason := responseBody.DoneReason
					if reason == "" {
						reason = "stop"
					}
					span.SetAttributes(attribute.String("response.done_reason", reason))
					yield(StreamFinalChunk{
						StreamContentChunk: StreamContentChunk{
							finishReason: &reason,
							content:      responseBody.Response,
						},
						usage: usage,
					}, nil)
					return
				} else if responseBody.Response != "" {
					if !yield(StreamContentChunk{content: responseBody.Response}, nil) {
						return
					}
				}
			}

			if readErr != nil {
				return
			}
		}
	}
}

// readLine returns the next line, terminator included. A line longer than
// maxLineSize is drained and reported as errLineTooLong.
func readLine(reader *bufio.Reader) ([]byte, error) {
	var line []byte
	tooLong := false
	for {
		fragment, err := reader.ReadSlice('\n')
		if !tooLong {
			if len(line)+len(fragment) > maxLineSize {
				tooLong = true
				line = nil
			} else {
				line = append(line, fragment...)
			}
		}

		switch {
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case tooLong && (err == nil || errors.Is(err, io.EOF)):
			return nil, errLineTooLong
		default:
			return line, err
		}
	}
}

type StreamContentChunk struct {
	finishReason *string
	content      string
}

func (s StreamContentChunk) FinishReason() *string {
	return s.finishReason
}

func (s StreamContentChunk) Content() string {
	return s.content
}

// StreamFinalChunk is the last chunk of a completed stream. It carries the
// trailing fragment, if any, together with the usage counters.
type StreamFinalChunk struct {
	StreamContentChunk
	usage llms.Usage
}

func (s StreamFinalChunk) Usage() llms.Usage {
	return s.usage
}
