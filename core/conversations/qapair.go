package conversations

import (
	"fmt"

	"github.com/koscakluka/ema-jarvis/core/llms"
)

// QAPair is one question and the answer given to it. Failed answers carry the
// user-facing failure message as Answer.
type QAPair struct {
	Question    string           `json:"question" jsonschema:"description=Question as extracted from the transcript"`
	Answer      string           `json:"answer" jsonschema:"description=Normalized answer or the failure message"`
	Failed      bool             `json:"failed,omitempty" jsonschema:"description=Set when the answer is a failure message"`
	FailureKind llms.FailureKind `json:"failure_kind,omitempty" jsonschema:"enum=connection,enum=timeout,enum=transport,enum=model_not_found"`
	Truncated   bool             `json:"truncated,omitempty" jsonschema:"description=Set when the answer hit the word budget"`
}

// NewQAPair records the outcome of answering question.
func NewQAPair(question string, result llms.Result) QAPair {
	pair := QAPair{
		Question:  question,
		Answer:    result.Message(),
		Truncated: result.Outcome == llms.OutcomeTruncated,
	}
	if result.Failure != nil {
		pair.Failed = true
		pair.FailureKind = result.Failure.Kind
	}
	return pair
}

// FormatQAPair renders a pair the way it is stored in the text artifact.
func FormatQAPair(question, answer string) string {
	return fmt.Sprintf("Q: %s\nA: %s\n\n", question, answer)
}

func (p QAPair) String() string {
	return FormatQAPair(p.Question, p.Answer)
}
