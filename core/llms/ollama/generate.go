package ollama

import (
	"context"

	"github.com/koscakluka/ema-jarvis/core/llms"
	"github.com/koscakluka/ema-jarvis/internal/utils"
	"go.opentelemetry.io/otel/attribute"
)

const conciseInstruction = "\n[Instruction: Please provide a clear and concise answer, focusing on the key points.]"

// Generate answers prompt and blocks until the stream completes, is truncated
// or fails. Failures are reported in the result, never as a panic or error.
func (c *Client) Generate(ctx context.Context, prompt string, opts ...llms.CollectOption) llms.Result {
	ctx, span := tracer.Start(ctx, "generate")
	defer span.End()

	stream := c.GenerateStream(prompt + conciseInstruction)
	c.logger.Info("starting LLM processing", "model", c.config.Model)
	result := llms.Collect(ctx, stream, opts...)

	span.SetAttributes(
		attribute.String("response.outcome", string(result.Outcome)),
		attribute.Float64("response.elapsed", result.Elapsed.Seconds()),
	)

	switch result.Outcome {
	case llms.OutcomeFailed:
		span.RecordError(result.Failure)
		c.logger.Error("generation failed",
			"kind", string(result.Failure.Kind),
			"error", result.Failure.Err)
	case llms.OutcomeTruncated:
		c.logger.Warn("response exceeded the word budget, truncating",
			"elapsed", result.Elapsed.Seconds())
	case llms.OutcomeExhausted:
		c.logger.Warn("response stream ended without completion",
			"elapsed", result.Elapsed.Seconds())
	default:
		c.logger.Info("response completed",
			"elapsed", result.Elapsed.Seconds(),
			"output_tokens", utils.Deref(result.Usage, llms.Usage{}).OutputTokens)
	}

	return result
}
