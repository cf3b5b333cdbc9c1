package events

import (
	"time"

	"github.com/koscakluka/ema-jarvis/core/conversations"
	"github.com/koscakluka/ema-jarvis/core/llms"
)

const (
	// KindQuestionsFound identifies questions extracted from a transcript.
	KindQuestionsFound Kind = "question.found"
	// KindQuestionStarted identifies the start of answer generation.
	KindQuestionStarted Kind = "question.started"
	// KindAnswerProgress identifies throttled pieces of a streamed answer.
	KindAnswerProgress Kind = "answer.progress"
	// KindAnswerFinal identifies the assembled answer for a question.
	KindAnswerFinal Kind = "answer.final"
	// KindAnswerDropped identifies a question the model returned nothing for.
	KindAnswerDropped Kind = "answer.dropped"
)

// QuestionsFound carries the questions extracted from a transcript, in order.
type QuestionsFound struct {
	Base
	Questions []string
}

// NewQuestionsFound creates a questions found event.
func NewQuestionsFound(questions []string) QuestionsFound {
	return QuestionsFound{Base: NewBase(KindQuestionsFound), Questions: questions}
}

// QuestionStarted marks the start of answer generation for one question.
// Index is zero-based.
type QuestionStarted struct {
	Base
	Index    int
	Total    int
	Question string
}

// NewQuestionStarted creates a question started event.
func NewQuestionStarted(index, total int, question string) QuestionStarted {
	return QuestionStarted{Base: NewBase(KindQuestionStarted), Index: index, Total: total, Question: question}
}

// AnswerProgress carries a flushed piece of a streamed answer.
type AnswerProgress struct {
	Base
	Index  int
	Update llms.ProgressUpdate
}

// NewAnswerProgress creates an answer progress event.
func NewAnswerProgress(index int, update llms.ProgressUpdate) AnswerProgress {
	return AnswerProgress{Base: NewBase(KindAnswerProgress), Index: index, Update: update}
}

// AnswerFinal carries the stored question and answer pair together with how
// the generation ended.
type AnswerFinal struct {
	Base
	Index   int
	Pair    conversations.QAPair
	Outcome llms.Outcome
	Usage   *llms.Usage
	Elapsed time.Duration
}

// NewAnswerFinal creates an answer final event.
func NewAnswerFinal(index int, pair conversations.QAPair, result llms.Result) AnswerFinal {
	return AnswerFinal{
		Base:    NewBase(KindAnswerFinal),
		Index:   index,
		Pair:    pair,
		Outcome: result.Outcome,
		Usage:   result.Usage,
		Elapsed: result.Elapsed,
	}
}

// AnswerDropped marks a question that was left out of the conversation
// because the model returned no text for it.
type AnswerDropped struct {
	Base
	Index    int
	Question string
}

// NewAnswerDropped creates an answer dropped event.
func NewAnswerDropped(index int, question string) AnswerDropped {
	return AnswerDropped{Base: NewBase(KindAnswerDropped), Index: index, Question: question}
}
