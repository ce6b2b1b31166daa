package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aicompanion/api/internal/core/domain"
	"github.com/aicompanion/api/internal/core/ports"
)

// ContextService maintains the bounded, priority-ranked set of facts the
// assistant remembers per user. The set never exceeds maxFacts: an insert
// that would overflow first evicts the lowest-priority fact (ties broken by
// oldest update), and a new fact ranked strictly below the current minimum
// is dropped instead of stored.
type ContextService struct {
	repo     ports.ContextRepository
	maxFacts int
	logger   *slog.Logger
}

func NewContextService(repo ports.ContextRepository, maxFacts int, logger *slog.Logger) *ContextService {
	return &ContextService{
		repo:     repo,
		maxFacts: maxFacts,
		logger:   logger,
	}
}

func (s *ContextService) List(ctx context.Context, userID string) ([]domain.ContextFact, error) {
	facts, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list context facts: %w", err)
	}
	return facts, nil
}

func (s *ContextService) Upsert(ctx context.Context, userID, info string, priority int) error {
	if info == "" {
		return fmt.Errorf("%w: empty context fact", domain.ErrValidation)
	}

	priority = domain.ClampContextPriority(priority)
	if priority < domain.MinContextPriority {
		priority = domain.MinContextPriority
	}

	facts, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list context facts: %w", err)
	}

	if len(facts) >= s.maxFacts {
		victim := lowestPriority(facts)
		if priority < victim.Priority {
			// The incoming fact is itself the minimum; dropping it keeps
			// the capacity invariant without touching stored facts.
			s.logger.Debug("context fact below retention threshold, dropped",
				"user_id", userID, "priority", priority)
			return nil
		}
		// Evict before inserting so the cap holds at every point an
		// external observer can see.
		if err := s.repo.Delete(ctx, userID, victim.ID); err != nil {
			return fmt.Errorf("failed to evict context fact: %w", err)
		}
		s.logger.Debug("evicted context fact",
			"user_id", userID, "fact_id", victim.ID, "priority", victim.Priority)
	}

	fact := &domain.ContextFact{
		UserID:   userID,
		Info:     info,
		Priority: priority,
	}
	if err := s.repo.Insert(ctx, fact); err != nil {
		return fmt.Errorf("failed to insert context fact: %w", err)
	}
	return nil
}

// ApplyUpdates reprioritizes facts referenced by their 1-based position in
// listed, the ordering previously shown to the assistant. Unknown entry
// numbers are ignored.
func (s *ContextService) ApplyUpdates(ctx context.Context, userID string, listed []domain.ContextFact, updates []domain.ContextUpdate) error {
	for _, update := range updates {
		if update.EntryNumber < 1 || update.EntryNumber > len(listed) {
			s.logger.Warn("context update references unknown entry",
				"user_id", userID, "entry_number", update.EntryNumber)
			continue
		}
		fact := listed[update.EntryNumber-1]
		priority := domain.ClampContextPriority(update.NewPriority)
		if err := s.repo.UpdatePriority(ctx, userID, fact.ID, priority); err != nil {
			return fmt.Errorf("failed to update context priority: %w", err)
		}
	}
	return nil
}

// PurgeZeroPriority removes facts the assistant marked for deletion.
func (s *ContextService) PurgeZeroPriority(ctx context.Context, userID string) error {
	if err := s.repo.DeleteZeroPriority(ctx, userID); err != nil {
		return fmt.Errorf("failed to purge zero-priority facts: %w", err)
	}
	return nil
}

// lowestPriority picks the eviction victim: lowest priority, ties broken by
// oldest update.
func lowestPriority(facts []domain.ContextFact) domain.ContextFact {
	victim := facts[0]
	for _, fact := range facts[1:] {
		if fact.Priority < victim.Priority ||
			(fact.Priority == victim.Priority && fact.UpdatedAt.Before(victim.UpdatedAt)) {
			victim = fact
		}
	}
	return victim
}

var _ ports.ContextService = (*ContextService)(nil)
