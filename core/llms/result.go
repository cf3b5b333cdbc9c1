package llms

import (
	"errors"
	"time"
)

// Outcome describes how a generation ended.
type Outcome string

const (
	// OutcomeCompleted means the stream signalled completion.
	OutcomeCompleted Outcome = "completed"
	// OutcomeTruncated means the word budget was exceeded and consumption
	// stopped early.
	OutcomeTruncated Outcome = "truncated"
	// OutcomeExhausted means the stream ended without a completion signal.
	OutcomeExhausted Outcome = "exhausted"
	// OutcomeFailed means the request or the stream failed; Failure is set.
	OutcomeFailed Outcome = "failed"
)

type FailureKind string

const (
	FailureConnection    FailureKind = "connection"
	FailureTimeout       FailureKind = "timeout"
	FailureTransport     FailureKind = "transport"
	FailureModelNotFound FailureKind = "model_not_found"
)

// Failure is a recoverable generation failure. Message is meant to be shown
// (or spoken) to the end user as is.
type Failure struct {
	Kind    FailureKind
	Message string
	Err     error
}

func (f *Failure) Error() string { return f.Message }
func (f *Failure) Unwrap() error { return f.Err }

// Result is the outcome of a single generation. Exactly one of Text (for
// every outcome but OutcomeFailed) or Failure is meaningful.
type Result struct {
	Outcome Outcome
	Text    string
	Failure *Failure

	Usage   *Usage
	Elapsed time.Duration
}

func (r Result) Failed() bool { return r.Outcome == OutcomeFailed }

// Message returns the answer text, or the failure message for failed
// results.
func (r Result) Message() string {
	if r.Failure != nil {
		return r.Failure.Message
	}
	return r.Text
}

// Err returns the failure as an error, nil for successful results.
func (r Result) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}

func failedResult(err error) Result {
	var failure *Failure
	if !errors.As(err, &failure) {
		failure = &Failure{Kind: FailureTransport, Message: err.Error(), Err: err}
	}
	return Result{Outcome: OutcomeFailed, Failure: failure}
}
