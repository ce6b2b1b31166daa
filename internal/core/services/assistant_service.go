package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aicompanion/api/internal/core/domain"
	"github.com/aicompanion/api/internal/core/ports"
)

const historyWindow = 20

// AssistantService orchestrates one exchange: load context and history,
// call the provider, persist the exchange and apply the provider's context
// suggestions.
type AssistantService struct {
	conversations ports.ConversationService
	contexts      ports.ContextService
	provider      ports.AssistantProvider
	budget        PromptBudget
	maxFacts      int
	logger        *slog.Logger
}

func NewAssistantService(
	conversations ports.ConversationService,
	contexts ports.ContextService,
	provider ports.AssistantProvider,
	budget PromptBudget,
	maxFacts int,
	logger *slog.Logger,
) *AssistantService {
	return &AssistantService{
		conversations: conversations,
		contexts:      contexts,
		provider:      provider,
		budget:        budget,
		maxFacts:      maxFacts,
		logger:        logger,
	}
}

func (s *AssistantService) Handle(ctx context.Context, userID, message string) (string, error) {
	if message == "" {
		return "", fmt.Errorf("%w: empty message", domain.ErrValidation)
	}

	history, err := s.conversations.Recent(ctx, userID, historyWindow)
	if err != nil {
		return "", err
	}
	facts, err := s.contexts.List(ctx, userID)
	if err != nil {
		return "", err
	}

	req := &ports.ProviderRequest{
		System:  BuildSystemPrompt(s.budget, s.maxFacts, facts, history),
		History: reverseChronological(history),
		Message: message,
	}

	reply, err := s.provider.Complete(ctx, req)
	if err != nil {
		s.logger.Error("assistant provider call failed", "user_id", userID, "error", err)
		return "", fmt.Errorf("%w: %v", domain.ErrExternalService, err)
	}

	// Persistence failures past this point are at-most-once: the reply is
	// still returned to the caller.
	if err := s.conversations.Append(ctx, userID, message, reply.ServerReply, reply.Interaction); err != nil {
		s.logger.Error("failed to persist conversation", "user_id", userID, "error", err)
		return reply.ServerReply, nil
	}

	if len(reply.ContextUpdates) > 0 {
		if err := s.contexts.ApplyUpdates(ctx, userID, facts, reply.ContextUpdates); err != nil {
			s.logger.Error("failed to apply context updates", "user_id", userID, "error", err)
		}
	}

	if p := reply.Interaction; p != nil && p.RelevantForContext && p.RelevantInfo != "" {
		if err := s.contexts.Upsert(ctx, userID, p.RelevantInfo, p.ContextPriority); err != nil {
			s.logger.Error("failed to store context fact", "user_id", userID, "error", err)
		}
	}

	if err := s.contexts.PurgeZeroPriority(ctx, userID); err != nil {
		s.logger.Error("failed to purge context facts", "user_id", userID, "error", err)
	}

	return reply.ServerReply, nil
}

func (s *AssistantService) History(ctx context.Context, userID string, page int) (*domain.ConversationPage, error) {
	return s.conversations.Page(ctx, userID, page)
}

// reverseChronological flips newest-first store order into the oldest-first
// order providers expect for conversation turns.
func reverseChronological(history []domain.Conversation) []domain.Conversation {
	out := make([]domain.Conversation, len(history))
	for i, conv := range history {
		out[len(history)-1-i] = conv
	}
	return out
}

var _ ports.AssistantService = (*AssistantService)(nil)
