package ports

import (
	"context"

	"github.com/aicompanion/api/internal/core/domain"
)

type ConversationRepository interface {
	Insert(ctx context.Context, conv *domain.Conversation) error
	// ListByUser returns conversations newest first.
	ListByUser(ctx context.Context, userID string, limit, skip int64) ([]domain.Conversation, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
}

type ConversationService interface {
	Append(ctx context.Context, userID, userInput, serverReply string, params *domain.InteractionParams) error
	Page(ctx context.Context, userID string, page int) (*domain.ConversationPage, error)
	Recent(ctx context.Context, userID string, limit int64) ([]domain.Conversation, error)
}
