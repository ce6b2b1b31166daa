package ports

import (
	"context"

	"github.com/aicompanion/api/internal/core/domain"
)

type ContextRepository interface {
	// ListByUser returns all facts for a user ordered by priority
	// descending, ties broken by most recently updated first.
	ListByUser(ctx context.Context, userID string) ([]domain.ContextFact, error)
	Insert(ctx context.Context, fact *domain.ContextFact) error
	UpdatePriority(ctx context.Context, userID, factID string, priority int) error
	Delete(ctx context.Context, userID, factID string) error
	DeleteZeroPriority(ctx context.Context, userID string) error
}

type ContextService interface {
	List(ctx context.Context, userID string) ([]domain.ContextFact, error)
	Upsert(ctx context.Context, userID, info string, priority int) error
	ApplyUpdates(ctx context.Context, userID string, listed []domain.ContextFact, updates []domain.ContextUpdate) error
	PurgeZeroPriority(ctx context.Context, userID string) error
}
