package domain

import "time"

// Priority bounds for context facts. Priority 0 is a delete marker set by
// the assistant through a context update.
const (
	MinContextPriority = 1
	MaxContextPriority = 100
)

// ContextFact is one remembered piece of user information. The set of facts
// per user is capped; on overflow the lowest-priority fact is evicted.
type ContextFact struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Info      string    `json:"info"`
	Priority  int       `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ContextUpdate reprioritizes a fact by its 1-based position in the
// priority-ordered listing. NewPriority 0 marks the fact for deletion.
type ContextUpdate struct {
	EntryNumber int `json:"entry_number"`
	NewPriority int `json:"new_priority"`
}

// ClampContextPriority forces p into the valid range, keeping 0 as the
// delete marker.
func ClampContextPriority(p int) int {
	if p <= 0 {
		return 0
	}
	if p > MaxContextPriority {
		return MaxContextPriority
	}
	return p
}
