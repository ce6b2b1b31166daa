package domain

import "time"

// Conversation is one user/assistant exchange. Entries are immutable once
// written.
type Conversation struct {
	ID          string             `json:"id"`
	UserID      string             `json:"-"`
	UserInput   string             `json:"user_input"`
	ServerReply string             `json:"server_reply"`
	Interaction *InteractionParams `json:"-"`
	Timestamp   time.Time          `json:"timestamp"`
}

// InteractionParams is the assistant's own summary of an exchange: whether
// it is worth remembering, at what priority, and the fact to remember.
type InteractionParams struct {
	RelevantForContext bool   `json:"relevant_for_context"`
	ContextPriority    int    `json:"context_priority"`
	RelevantInfo       string `json:"relevant_info"`
}

type ConversationPage struct {
	Conversations []Conversation `json:"conversations"`
	TotalCount    int64          `json:"total_count"`
	Page          int            `json:"page"`
	PageSize      int            `json:"page_size"`
	TotalPages    int64          `json:"total_pages"`
}
