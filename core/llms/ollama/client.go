package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultBaseURL = "http://127.0.0.1:11434"
	DefaultModel   = "llama3.2"

	generatePath = "/api/generate"
	tagsPath     = "/api/tags"
)

var ErrServiceUnreachable = errors.New("ollama service unreachable")

// Config holds the connection and sampling settings of a client. Sampling
// values are fixed for the lifetime of the client.
type Config struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`

	Temperature float64 `yaml:"temperature"`
	NumPredict  int     `yaml:"num_predict"`
	TopK        int     `yaml:"top_k"`
	TopP        float64 `yaml:"top_p"`

	// Timeout bounds a whole request including the streamed body. Zero
	// leaves it to the transport.
	Timeout time.Duration `yaml:"timeout"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:     DefaultBaseURL,
		Model:       DefaultModel,
		Temperature: 0.7,
		NumPredict:  2000,
		TopK:        40,
		TopP:        0.9,
	}
}

// Validate checks the settings without contacting the service.
func (c Config) Validate() error {
	base, err := url.Parse(c.BaseURL)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return fmt.Errorf("base_url must be an http(s) URL, got %q", c.BaseURL)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %v", c.Temperature)
	}
	if c.NumPredict < 1 {
		return fmt.Errorf("num_predict must be at least 1, got %d", c.NumPredict)
	}
	if c.TopK < 1 {
		return fmt.Errorf("top_k must be at least 1, got %d", c.TopK)
	}
	if c.TopP <= 0 || c.TopP > 1 {
		return fmt.Errorf("top_p must be in (0, 1], got %v", c.TopP)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative, got %s", c.Timeout)
	}
	return nil
}

type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
}

type ClientOption func(*Client)

// WithLogger sends the client's log records to l instead of the package
// logger.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient probes the service once and fails when it cannot be reached at
// all. A reachable service answering with a non-200 status only logs a
// warning, as does a missing model.
func NewClient(ctx context.Context, config Config, opts ...ClientOption) (*Client, error) {
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	client := &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithSpanNameFormatter(func(operationName string, request *http.Request) string {
					return operationName + " " + request.URL.Path
				}),
			),
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(client)
	}

	if err := client.probe(ctx); err != nil {
		return nil, err
	}

	if installed, err := client.HasModel(ctx); err != nil {
		client.logger.Debug("could not list installed models", "error", err)
	} else if !installed {
		client.logger.Warn("model is not installed, answers will fail until it is pulled",
			"model", config.Model,
			"hint", "ollama pull "+config.Model)
	}

	return client, nil
}

func (c *Client) Model() string { return c.config.Model }

func (c *Client) probe(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "probe ollama")
	defer span.End()
	span.SetAttributes(attribute.String("request.url", c.config.BaseURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL, nil)
	if err != nil {
		err = fmt.Errorf("error creating HTTP request: %w", err)
		span.RecordError(err)
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("%w at %s: %w", ErrServiceUnreachable, c.config.BaseURL, err)
		span.RecordError(err)
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("ollama responded to the liveness probe with an unexpected status",
			"url", c.config.BaseURL,
			"status", resp.Status)
	}
	return nil
}

type tagsResponse struct {
	Models []struct {
		Name  string `json:"name"`
		Model string `json:"model"`
	} `json:"models"`
}

// Models lists the names of the locally installed models.
func (c *Client) Models(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "list ollama models")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+tagsPath, nil)
	if err != nil {
		err = fmt.Errorf("error creating HTTP request: %w", err)
		span.RecordError(err)
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("error sending request: %w", err)
		span.RecordError(err)
		return nil, err
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("non-OK HTTP status: %s", resp.Status)
		span.RecordError(err)
		return nil, err
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		err = fmt.Errorf("error unmarshalling JSON: %w", err)
		span.RecordError(err)
		return nil, err
	}

	names := make([]string, 0, len(tags.Models))
	for _, model := range tags.Models {
		name := model.Name
		if name == "" {
			name = model.Model
		}
		names = append(names, name)
	}
	span.SetAttributes(attribute.StringSlice("response.models", names))
	return names, nil
}

// HasModel reports whether the configured model is installed. A model
// configured without a tag matches its ":latest" variant.
func (c *Client) HasModel(ctx context.Context) (bool, error) {
	names, err := c.Models(ctx)
	if err != nil {
		return false, err
	}
	for _, name := range names {
		if sameModel(name, c.config.Model) {
			return true, nil
		}
	}
	return false, nil
}

func sameModel(installed, configured string) bool {
	if installed == configured {
		return true
	}
	if !strings.Contains(configured, ":") {
		return installed == configured+":latest"
	}
	return false
}
