package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aicompanion/api/internal/core/domain"
	"github.com/aicompanion/api/internal/core/ports"
)

// In-memory fakes for the repository and collaborator ports.

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username != "" && u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) GetByGoogleID(_ context.Context, googleID string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.GoogleID != "" && u.GoogleID == googleID {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.UpdatedAt = time.Now()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

type memContextRepo struct {
	mu    sync.Mutex
	facts map[string]*domain.ContextFact
	seq   int64
}

func newMemContextRepo() *memContextRepo {
	return &memContextRepo{facts: make(map[string]*domain.ContextFact)}
}

// tick yields strictly increasing timestamps so update-order tie-breaks are
// deterministic in tests.
func (r *memContextRepo) tick() time.Time {
	r.seq++
	return time.Unix(0, r.seq*int64(time.Millisecond))
}

func (r *memContextRepo) ListByUser(_ context.Context, userID string) ([]domain.ContextFact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ContextFact
	for _, f := range r.facts {
		if f.UserID == userID {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (r *memContextRepo) Insert(_ context.Context, fact *domain.ContextFact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	fact.ID = uuid.NewString()
	now := r.tick()
	fact.CreatedAt = now
	fact.UpdatedAt = now
	clone := *fact
	r.facts[fact.ID] = &clone
	return nil
}

func (r *memContextRepo) UpdatePriority(_ context.Context, userID, factID string, priority int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.facts[factID]; ok && f.UserID == userID {
		f.Priority = priority
		f.UpdatedAt = r.tick()
	}
	return nil
}

func (r *memContextRepo) Delete(_ context.Context, userID, factID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.facts[factID]; ok && f.UserID == userID {
		delete(r.facts, factID)
	}
	return nil
}

func (r *memContextRepo) DeleteZeroPriority(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, f := range r.facts {
		if f.UserID == userID && f.Priority == 0 {
			delete(r.facts, id)
		}
	}
	return nil
}

type memConversationRepo struct {
	mu    sync.Mutex
	convs []domain.Conversation
	seq   int64
}

func newMemConversationRepo() *memConversationRepo {
	return &memConversationRepo{}
}

func (r *memConversationRepo) Insert(_ context.Context, conv *domain.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv.ID = uuid.NewString()
	r.seq++
	conv.Timestamp = time.Unix(0, r.seq*int64(time.Millisecond))
	r.convs = append(r.convs, *conv)
	return nil
}

func (r *memConversationRepo) ListByUser(_ context.Context, userID string, limit, skip int64) ([]domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var mine []domain.Conversation
	for _, c := range r.convs {
		if c.UserID == userID {
			mine = append(mine, c)
		}
	}
	sort.Slice(mine, func(i, j int) bool { return mine[i].Timestamp.After(mine[j].Timestamp) })
	if skip >= int64(len(mine)) {
		return nil, nil
	}
	mine = mine[skip:]
	if int64(len(mine)) > limit {
		mine = mine[:limit]
	}
	return mine, nil
}

func (r *memConversationRepo) CountByUser(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, c := range r.convs {
		if c.UserID == userID {
			n++
		}
	}
	return n, nil
}

type fakeMailer struct {
	mu         sync.Mutex
	sent       map[string]string // email -> last code
	resetCodes map[string]string
	failNext   bool
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{sent: make(map[string]string), resetCodes: make(map[string]string)}
}

func (m *fakeMailer) SendVerificationCode(_ context.Context, to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext {
		m.failNext = false
		return context.DeadlineExceeded
	}
	m.sent[to] = code
	return nil
}

func (m *fakeMailer) SendPasswordResetCode(_ context.Context, to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetCodes[to] = code
	return nil
}

type fakeGoogleVerifier struct {
	payloads map[string]*ports.GooglePayload
}

func (v *fakeGoogleVerifier) Verify(_ context.Context, token, _ string) (*ports.GooglePayload, error) {
	if p, ok := v.payloads[token]; ok {
		return p, nil
	}
	return nil, context.DeadlineExceeded
}

type fakeProvider struct {
	mu       sync.Mutex
	reply    *ports.ProviderReply
	err      error
	requests []*ports.ProviderRequest
}

func (p *fakeProvider) Complete(_ context.Context, req *ports.ProviderRequest) (*ports.ProviderReply, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
	if p.err != nil {
		return nil, p.err
	}
	return p.reply, nil
}

var (
	_ ports.UserRepository         = (*memUserRepo)(nil)
	_ ports.ContextRepository      = (*memContextRepo)(nil)
	_ ports.ConversationRepository = (*memConversationRepo)(nil)
	_ ports.Mailer                 = (*fakeMailer)(nil)
	_ ports.GoogleTokenVerifier    = (*fakeGoogleVerifier)(nil)
	_ ports.AssistantProvider      = (*fakeProvider)(nil)
)
