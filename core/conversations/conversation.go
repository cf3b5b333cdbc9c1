package conversations

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout formats the timestamp shared by all artifacts of one
// conversation.
const TimestampLayout = "20060102_150405"

// Conversation is the record of one processed recording.
type Conversation struct {
	ID          string    `json:"id" jsonschema:"format=uuid"`
	SourceAudio string    `json:"original_audio" jsonschema:"description=Recording the questions were taken from"`
	Transcript  string    `json:"transcript,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Timestamp   string    `json:"timestamp" jsonschema:"pattern=^[0-9]{8}_[0-9]{6}$"`
	Pairs       []QAPair  `json:"qa_pairs"`
	TextFile    string    `json:"text_file,omitempty"`
	AudioFiles  []string  `json:"audio_files"`
}

func New(sourceAudio string, createdAt time.Time) *Conversation {
	return &Conversation{
		ID:          uuid.NewString(),
		SourceAudio: sourceAudio,
		CreatedAt:   createdAt,
		Timestamp:   createdAt.Format(TimestampLayout),
		Pairs:       []QAPair{},
		AudioFiles:  []string{},
	}
}

func (c *Conversation) Add(pair QAPair) {
	c.Pairs = append(c.Pairs, pair)
}

// Text renders every pair in question order.
func (c *Conversation) Text() string {
	var sb strings.Builder
	for _, pair := range c.Pairs {
		sb.WriteString(pair.String())
	}
	return sb.String()
}

func (c *Conversation) FailedAnswers() int {
	failed := 0
	for _, pair := range c.Pairs {
		if pair.Failed {
			failed++
		}
	}
	return failed
}
