package events

const (
	// KindConversationTextSaved identifies the written conversation transcript.
	KindConversationTextSaved Kind = "conversation.text_saved"
	// KindConversationMetadataSaved identifies the written metadata record.
	KindConversationMetadataSaved Kind = "conversation.metadata_saved"
)

// ConversationTextSaved carries the name of the written transcript file.
type ConversationTextSaved struct {
	Base
	ConversationID string
	File           string
}

// NewConversationTextSaved creates a conversation text saved event.
func NewConversationTextSaved(conversationID, file string) ConversationTextSaved {
	return ConversationTextSaved{Base: NewBase(KindConversationTextSaved), ConversationID: conversationID, File: file}
}

// ConversationMetadataSaved carries the name of the written metadata file.
type ConversationMetadataSaved struct {
	Base
	ConversationID string
	File           string
}

// NewConversationMetadataSaved creates a conversation metadata saved event.
func NewConversationMetadataSaved(conversationID, file string) ConversationMetadataSaved {
	return ConversationMetadataSaved{Base: NewBase(KindConversationMetadataSaved), ConversationID: conversationID, File: file}
}
