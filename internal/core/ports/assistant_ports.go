package ports

import (
	"context"

	"github.com/aicompanion/api/internal/core/domain"
)

// AssistantProvider is the external generative-AI collaborator. It receives
// the assembled system prompt plus the conversation turns and must answer
// with the structured envelope.
type AssistantProvider interface {
	Complete(ctx context.Context, req *ProviderRequest) (*ProviderReply, error)
}

type ProviderRequest struct {
	System  string
	History []domain.Conversation // oldest first
	Message string
}

type ProviderReply struct {
	ServerReply    string                    `json:"server_reply"`
	Interaction    *domain.InteractionParams `json:"interaction_params"`
	ContextUpdates []domain.ContextUpdate    `json:"context_updates,omitempty"`
}

type AssistantService interface {
	Handle(ctx context.Context, userID, message string) (string, error)
	History(ctx context.Context, userID string, page int) (*domain.ConversationPage, error)
}
