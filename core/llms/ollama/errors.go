package ollama

import (
	"context"
	"errors"
	"net"

	"github.com/koscakluka/ema-jarvis/core/llms"
)

const (
	connectionErrorMessage = "Connection error. Please ensure Ollama is running with 'ollama serve'"
	timeoutErrorMessage    = "Request timed out. The model is taking too long to respond."
	transportErrorPrefix   = "Error communicating with Ollama: "
	modelNotFoundMessage   = "I'm sorry, but I'm not properly configured yet. Please make sure the model is installed."
)

// classifyRequestError maps an error from sending a request or reading its
// body onto a user-facing failure.
func classifyRequestError(err error) *llms.Failure {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &llms.Failure{Kind: llms.FailureTimeout, Message: timeoutErrorMessage, Err: err}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return &llms.Failure{Kind: llms.FailureConnection, Message: connectionErrorMessage, Err: err}
	}

	return transportFailure(err)
}

func transportFailure(err error) *llms.Failure {
	return &llms.Failure{Kind: llms.FailureTransport, Message: transportErrorPrefix + err.Error(), Err: err}
}

func modelNotFoundFailure(err error) *llms.Failure {
	return &llms.Failure{Kind: llms.FailureModelNotFound, Message: modelNotFoundMessage, Err: err}
}
