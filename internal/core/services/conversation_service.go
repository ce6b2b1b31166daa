package services

import (
	"context"
	"fmt"

	"github.com/aicompanion/api/internal/core/domain"
	"github.com/aicompanion/api/internal/core/ports"
)

const conversationPageSize = 20

// ConversationService wraps the append-only conversation history with
// zero-based, newest-first pagination.
type ConversationService struct {
	repo ports.ConversationRepository
}

func NewConversationService(repo ports.ConversationRepository) *ConversationService {
	return &ConversationService{repo: repo}
}

func (s *ConversationService) Append(ctx context.Context, userID, userInput, serverReply string, params *domain.InteractionParams) error {
	conv := &domain.Conversation{
		UserID:      userID,
		UserInput:   userInput,
		ServerReply: serverReply,
		Interaction: params,
	}
	if err := s.repo.Insert(ctx, conv); err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}

func (s *ConversationService) Page(ctx context.Context, userID string, page int) (*domain.ConversationPage, error) {
	if page < 0 {
		return nil, fmt.Errorf("%w: page must not be negative", domain.ErrValidation)
	}

	skip := int64(page) * conversationPageSize
	conversations, err := s.repo.ListByUser(ctx, userID, conversationPageSize, skip)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	total, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count conversations: %w", err)
	}

	return &domain.ConversationPage{
		Conversations: conversations,
		TotalCount:    total,
		Page:          page,
		PageSize:      conversationPageSize,
		TotalPages:    (total + conversationPageSize - 1) / conversationPageSize,
	}, nil
}

func (s *ConversationService) Recent(ctx context.Context, userID string, limit int64) ([]domain.Conversation, error) {
	conversations, err := s.repo.ListByUser(ctx, userID, limit, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return conversations, nil
}

var _ ports.ConversationService = (*ConversationService)(nil)
