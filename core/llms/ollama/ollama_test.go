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
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/koscakluka/ema-jarvis/core/llms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testModel = "llama3.2"

func newTestServer(t *testing.T, generate http.HandlerFunc) (*httptest.Server, Config) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "Ollama is running")
	})
	mux.HandleFunc("GET "+tagsPath, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"models": []map[string]any{{"name": testModel + ":latest", "model": testModel + ":latest"}},
		})
	})
	if generate != nil {
		mux.HandleFunc("POST "+generatePath, generate)
	}

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	config := DefaultConfig()
	config.BaseURL = srv.URL
	config.Model = testModel
	return srv, config
}

func newTestClient(t *testing.T, generate http.HandlerFunc) *Client {
	t.Helper()

	_, config := newTestServer(t, generate)
	client, err := NewClient(context.Background(), config)
	require.NoError(t, err)
	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("failed to encode response: %v", err)
	}
}

func readBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}

	var req map[string]any
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatalf("failed to unmarshal body: %v", err)
	}
	return req
}

func streamLines(lines ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-ndjson")
		flusher, _ := w.(http.Flusher)
		for _, line := range lines {
			fmt.Fprintln(w, line)
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

func fragmentLine(fragment string) string {
	encoded, _ := json.Marshal(map[string]any{"model": testModel, "response": fragment, "done": false})
	return string(encoded)
}

const doneLine = `{"model":"llama3.2","response":"","done":true,"done_reason":"stop","total_duration":2500000000,"load_duration":500000000,"prompt_eval_count":12,"prompt_eval_duration":100000000,"eval_count":5,"eval_duration":1900000000}`

func TestNewClient_Unreachable(t *testing.T) {
	srv, config := newTestServer(t, nil)
	srv.Close()

	_, err := NewClient(context.Background(), config)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrServiceUnreachable))
}

func TestNewClient_NonOKProbeIsOnlyAWarning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	config := DefaultConfig()
	config.BaseURL = srv.URL + "/"

	client, err := NewClient(context.Background(), config)

	require.NoError(t, err)
	assert.Equal(t, srv.URL, client.config.BaseURL)
}

func newCapturingLogger() (*slog.Logger, *bytes.Buffer) {
	var logs bytes.Buffer
	return slog.New(slog.NewTextHandler(&logs, nil)), &logs
}

func TestNewClient_LogsUnexpectedProbeStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	config := DefaultConfig()
	config.BaseURL = srv.URL
	logger, logs := newCapturingLogger()

	_, err := NewClient(context.Background(), config, WithLogger(logger))

	require.NoError(t, err)
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "unexpected status")
	assert.Contains(t, logs.String(), "503")
}

func TestNewClient_WarnsAboutMissingModel(t *testing.T) {
	_, config := newTestServer(t, nil)
	config.Model = "mistral"
	logger, logs := newCapturingLogger()

	_, err := NewClient(context.Background(), config, WithLogger(logger))

	require.NoError(t, err)
	assert.Contains(t, logs.String(), "model is not installed")
	assert.Contains(t, logs.String(), "ollama pull mistral")
}

func TestNewClient_RequiresModel(t *testing.T) {
	_, config := newTestServer(t, nil)
	config.Model = ""

	_, err := NewClient(context.Background(), config)

	assert.Error(t, err)
}

func TestHasModel_MatchesLatestTag(t *testing.T) {
	client := newTestClient(t, nil)

	installed, err := client.HasModel(context.Background())

	require.NoError(t, err)
	assert.True(t, installed)

	client.config.Model = "mistral"
	installed, err = client.HasModel(context.Background())
	require.NoError(t, err)
	assert.False(t, installed)
}

func TestGenerate_RequestBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		req := readBody(t, r)
		assert.Equal(t, testModel, req["model"])
		assert.Equal(t, "Why is the sky blue?"+conciseInstruction, req["prompt"])
		assert.Equal(t, true, req["stream"])

		options, ok := req["options"].(map[string]any)
		require.True(t, ok)
		assert.InDelta(t, 0.7, options["temperature"], 1e-9)
		assert.InDelta(t, 2000, options["num_predict"], 1e-9)
		assert.InDelta(t, 40, options["top_k"], 1e-9)
		assert.InDelta(t, 0.9, options["top_p"], 1e-9)

		streamLines(doneLine)(w, r)
	})

	result := client.Generate(context.Background(), "Why is the sky blue?")

	assert.Equal(t, llms.OutcomeCompleted, result.Outcome)
}

func TestGenerate_AssemblesStreamedAnswer(t *testing.T) {
	client := newTestClient(t, streamLines(
		fragmentLine("The "),
		fragmentLine("sky "),
		fragmentLine("is "),
		fragmentLine("blue."),
		doneLine,
	))

	result := client.Generate(context.Background(), "What colour is the sky?")

	require.False(t, result.Failed())
	assert.Equal(t, llms.OutcomeCompleted, result.Outcome)
	assert.Equal(t, "The sky is blue.", result.Text)
	require.NotNil(t, result.Usage)
	assert.Equal(t, 12, result.Usage.InputTokens)
	assert.Equal(t, 5, result.Usage.OutputTokens)
	assert.InDelta(t, 2.5, result.Usage.TotalTime, 1e-9)
}

func TestGenerate_SkipsMalformedLines(t *testing.T) {
	clean := newTestClient(t, streamLines(
		fragmentLine("Hello there. "),
		fragmentLine("General"),
		fragmentLine(" Kenobi!"),
		doneLine,
	))
	noisy := newTestClient(t, streamLines(
		"{not json",
		fragmentLine("Hello there. "),
		"",
		fragmentLine("General"),
		`{"response": 42}`,
		"garbage",
		fragmentLine(" Kenobi!"),
		doneLine,
	))

	expected := clean.Generate(context.Background(), "hi")
	actual := noisy.Generate(context.Background(), "hi")

	assert.Equal(t, llms.OutcomeCompleted, actual.Outcome)
	assert.Equal(t, expected.Text, actual.Text)
	assert.Equal(t, "Hello there. General Kenobi!", actual.Text)
}

func TestGenerate_SkipsOversizedLines(t *testing.T) {
	client := newTestClient(t, streamLines(
		fragmentLine("Hello."),
		fragmentLine(strings.Repeat("x", maxLineSize+1)),
		fragmentLine(" World."),
		doneLine,
	))

	result := client.Generate(context.Background(), "hi")

	require.False(t, result.Failed(), result.Message())
	assert.Equal(t, llms.OutcomeCompleted, result.Outcome)
	assert.Equal(t, "Hello. World.", result.Text)
}

func TestReadLine_DrainsOversizedLine(t *testing.T) {
	input := "short\n" + strings.Repeat("y", maxLineSize+10) + "\nlast"
	reader := bufio.NewReaderSize(strings.NewReader(input), 16)

	line, err := readLine(reader)
	require.NoError(t, err)
	assert.Equal(t, "short\n", string(line))

	_, err = readLine(reader)
	assert.ErrorIs(t, err, errLineTooLong)

	line, err = readLine(reader)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "last", string(line))
}

func TestGenerate_DoneFirstYieldsEmptyAnswer(t *testing.T) {
	client := newTestClient(t, streamLines(doneLine, fragmentLine("ignored.")))

	result := client.Generate(context.Background(), "hi")

	assert.Equal(t, llms.OutcomeCompleted, result.Outcome)
	assert.Equal(t, "", result.Text)
}

func TestGenerate_ExhaustedStreamDropsTail(t *testing.T) {
	client := newTestClient(t, streamLines(
		fragmentLine("First sentence."),
		fragmentLine(" unfinished tail"),
	))

	result := client.Generate(context.Background(), "hi")

	assert.Equal(t, llms.OutcomeExhausted, result.Outcome)
	assert.Equal(t, "First sentence.", result.Text)
}

func TestGenerate_TruncatesLongAnswers(t *testing.T) {
	lines := []string{}
	for range 3 {
		lines = append(lines, fragmentLine(strings.Repeat("word ", 999)+"end. "))
	}
	lines = append(lines, doneLine)
	client := newTestClient(t, streamLines(lines...))

	result := client.Generate(context.Background(), "hi")

	assert.Equal(t, llms.OutcomeTruncated, result.Outcome)
	assert.Len(t, strings.Fields(result.Text), 2000)
}

func TestGenerate_ModelNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	})

	result := client.Generate(context.Background(), "hi")

	require.True(t, result.Failed())
	assert.Equal(t, llms.FailureModelNotFound, result.Failure.Kind)
	assert.Equal(t, modelNotFoundMessage, result.Message())
	assert.Contains(t, result.Message(), "I'm sorry, but I'm not properly configured yet.")
}

func TestGenerate_NonOKStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	result := client.Generate(context.Background(), "hi")

	require.True(t, result.Failed())
	assert.Equal(t, llms.FailureTransport, result.Failure.Kind)
	assert.True(t, strings.HasPrefix(result.Message(), transportErrorPrefix))
	assert.Contains(t, result.Message(), "500")
}

func TestGenerate_ConnectionError(t *testing.T) {
	srv, config := newTestServer(t, nil)
	client, err := NewClient(context.Background(), config)
	require.NoError(t, err)
	srv.Close()

	result := client.Generate(context.Background(), "hi")

	require.True(t, result.Failed())
	assert.Equal(t, llms.FailureConnection, result.Failure.Kind)
	assert.True(t, strings.HasPrefix(result.Message(), "Connection error"))
	assert.Equal(t, "", result.Text)
}

func TestGenerate_Timeout(t *testing.T) {
	release := make(chan struct{})
	_, config := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})
	// runs before the server's cleanup, which waits for the handler
	t.Cleanup(func() { close(release) })
	config.Timeout = 100 * time.Millisecond
	client, err := NewClient(context.Background(), config)
	require.NoError(t, err)

	result := client.Generate(context.Background(), "hi")

	require.True(t, result.Failed())
	assert.Equal(t, llms.FailureTimeout, result.Failure.Kind)
	assert.Equal(t, timeoutErrorMessage, result.Message())
}

func TestGenerate_ReportsProgress(t *testing.T) {
	client := newTestClient(t, streamLines(
		fragmentLine("One."),
		fragmentLine(" Two"),
		doneLine,
	))
	updates := []llms.ProgressUpdate{}

	result := client.Generate(context.Background(), "hi",
		llms.WithProgressInterval(0),
		llms.WithProgressObserver(llms.ProgressObserverFunc(func(update llms.ProgressUpdate) {
			updates = append(updates, update)
		})),
	)

	assert.Equal(t, "One. Two", result.Text)
	require.Len(t, updates, 2)
	assert.Equal(t, "One.", updates[0].Text)
	assert.True(t, updates[0].StartsLine)
	assert.Equal(t, " Two", updates[1].Text)
	assert.False(t, updates[1].StartsLine)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	testCases := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{name: "relative url", modify: func(c *Config) { c.BaseURL = "localhost:11434" }, errMsg: "base_url"},
		{name: "empty model", modify: func(c *Config) { c.Model = " " }, errMsg: "model"},
		{name: "hot temperature", modify: func(c *Config) { c.Temperature = 3 }, errMsg: "temperature"},
		{name: "no tokens", modify: func(c *Config) { c.NumPredict = 0 }, errMsg: "num_predict"},
		{name: "top_k", modify: func(c *Config) { c.TopK = 0 }, errMsg: "top_k"},
		{name: "top_p", modify: func(c *Config) { c.TopP = 1.5 }, errMsg: "top_p"},
		{name: "negative timeout", modify: func(c *Config) { c.Timeout = -time.Second }, errMsg: "timeout"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			config := DefaultConfig()
			testCase.modify(&config)

			err := config.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), testCase.errMsg)
		})
	}
}
