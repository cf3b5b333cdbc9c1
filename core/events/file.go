package events

import "github.com/koscakluka/ema-jarvis/core/conversations"

const (
	// KindFileStarted identifies the start of processing for an input file.
	KindFileStarted Kind = "file.started"
	// KindFileSkipped identifies an input file that produced no conversation.
	KindFileSkipped Kind = "file.skipped"
	// KindFileCompleted identifies an input file whose artifacts were all written.
	KindFileCompleted Kind = "file.completed"
)

// FileStarted marks the start of processing for an input recording.
type FileStarted struct {
	Base
	Path string
}

// NewFileStarted creates a file started event.
func NewFileStarted(path string) FileStarted {
	return FileStarted{Base: NewBase(KindFileStarted), Path: path}
}

// FileSkipped carries the reason an input recording produced no conversation.
type FileSkipped struct {
	Base
	Path   string
	Reason error
}

// NewFileSkipped creates a file skipped event.
func NewFileSkipped(path string, reason error) FileSkipped {
	return FileSkipped{Base: NewBase(KindFileSkipped), Path: path, Reason: reason}
}

// FileCompleted carries the conversation stored for an input recording.
type FileCompleted struct {
	Base
	Path         string
	Conversation *conversations.Conversation
}

// NewFileCompleted creates a file completed event.
func NewFileCompleted(path string, conversation *conversations.Conversation) FileCompleted {
	return FileCompleted{Base: NewBase(KindFileCompleted), Path: path, Conversation: conversation}
}
