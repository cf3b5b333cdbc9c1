package llms

import "context"

type Stream interface {
	Chunks(context.Context) func(func(StreamChunk, error) bool)
}

type StreamChunk interface {
	// FinishReason is non-nil on the chunk that terminates the stream.
	FinishReason() *string
}

type StreamContentChunk interface {
	StreamChunk
	Content() string
}

type StreamUsageChunk interface {
	StreamChunk
	Usage() Usage
}

type Usage struct {
	// InputTokens represents the number of prompt tokens evaluated.
	InputTokens int
	// OutputTokens represents the number of generated tokens.
	OutputTokens int
	// TotalTokens represents the total number of tokens used.
	TotalTokens int

	// LoadTime represents the time it took to load the model.
	//
	// Note: This is reported by the model service, not measured locally.
	LoadTime float64
	// InputProcessingTime represents the time it took to process the prompt.
	InputProcessingTime float64
	// OutputProcessingTime represents the time it took to generate the output.
	OutputProcessingTime float64
	// TotalTime represents the total time it took to complete the request.
	TotalTime float64
}
