package metrics

import (
	"fmt"

	"github.com/koscakluka/ema-jarvis/core/events"
	"github.com/koscakluka/ema-jarvis/core/llms"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the Prometheus metrics of a jarvis run
type Metrics struct {
	registry *prometheus.Registry

	// File metrics
	FilesProcessed prometheus.Counter
	FilesSkipped   prometheus.Counter

	// Question metrics
	QuestionsFound     prometheus.Counter
	Answers            *prometheus.CounterVec
	AnswersDropped     prometheus.Counter
	GenerationDuration prometheus.Histogram
	GeneratedTokens    prometheus.Counter

	// Speech metrics
	AudioChunks *prometheus.CounterVec
}

// NewMetrics creates all metrics on a dedicated registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		FilesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "jarvis_files_processed_total",
			Help: "Total number of recordings that produced a conversation",
		}),
		FilesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "jarvis_files_skipped_total",
			Help: "Total number of recordings skipped without a conversation",
		}),

		QuestionsFound: factory.NewCounter(prometheus.CounterOpts{
			Name: "jarvis_questions_found_total",
			Help: "Total number of questions extracted from transcripts",
		}),
		Answers: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jarvis_answers_total",
			Help: "Total number of stored answers by generation outcome",
		}, []string{"outcome"}),
		AnswersDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "jarvis_answers_dropped_total",
			Help: "Total number of questions the model returned no text for",
		}),
		GenerationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "jarvis_generation_duration_seconds",
			Help:    "Duration of answer generation requests",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10), // 250ms to ~2 minutes
		}),
		GeneratedTokens: factory.NewCounter(prometheus.CounterOpts{
			Name: "jarvis_generated_tokens_total",
			Help: "Total number of tokens generated by the model",
		}),

		AudioChunks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jarvis_audio_chunks_total",
			Help: "Total number of narration chunks by synthesis result",
		}, []string{"result"}),
	}
}

// HandleEvent updates the metrics from a pipeline event.
func (m *Metrics) HandleEvent(event events.Event) {
	switch typedEvent := event.(type) {
	case events.FileCompleted:
		m.FilesProcessed.Inc()
	case events.FileSkipped:
		m.FilesSkipped.Inc()
	case events.QuestionsFound:
		m.QuestionsFound.Add(float64(len(typedEvent.Questions)))
	case events.AnswerFinal:
		m.Answers.WithLabelValues(string(typedEvent.Outcome)).Inc()
		if typedEvent.Outcome != llms.OutcomeFailed {
			m.GenerationDuration.Observe(typedEvent.Elapsed.Seconds())
		}
		if typedEvent.Usage != nil {
			m.GeneratedTokens.Add(float64(typedEvent.Usage.OutputTokens))
		}
	case events.AnswerDropped:
		m.AnswersDropped.Inc()
	case events.SpeechChunkSaved:
		m.AudioChunks.WithLabelValues("saved").Inc()
	case events.SpeechChunkFailed:
		m.AudioChunks.WithLabelValues("failed").Inc()
	}
}

// Gatherer exposes the registry, e.g. for an HTTP handler.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteToTextfile writes the current values in the Prometheus text format,
// suitable for the node exporter textfile collector.
func (m *Metrics) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
