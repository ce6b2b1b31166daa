package integration

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	handler "github.com/aicompanion/api/internal/adapters/handler/http"
	repo "github.com/aicompanion/api/internal/adapters/repository/mongo"
	"github.com/aicompanion/api/internal/core/ports"
	"github.com/aicompanion/api/internal/core/services"
)

const testContextMaxFacts = 30

// captureMailer records the codes the auth service sends so tests can
// complete verification and reset flows without a mail server.
type captureMailer struct {
	mu            sync.Mutex
	Verifications map[string]string
	Resets        map[string]string
}

func newCaptureMailer() *captureMailer {
	return &captureMailer{
		Verifications: make(map[string]string),
		Resets:        make(map[string]string),
	}
}

func (m *captureMailer) SendVerificationCode(ctx context.Context, to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Verifications[to] = code
	return nil
}

func (m *captureMailer) SendPasswordResetCode(ctx context.Context, to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Resets[to] = code
	return nil
}

// scriptedVerifier accepts the token "valid_google_token" and nothing else.
type scriptedVerifier struct {
	payload ports.GooglePayload
}

func (v *scriptedVerifier) Verify(ctx context.Context, token string, clientID string) (*ports.GooglePayload, error) {
	if token != "valid_google_token" {
		return nil, fmt.Errorf("invalid id token")
	}
	payload := v.payload
	return &payload, nil
}

// scriptedProvider returns a queue of canned replies, one per call.
type scriptedProvider struct {
	mu       sync.Mutex
	Replies  []*ports.ProviderReply
	Requests []*ports.ProviderRequest
}

func (p *scriptedProvider) Complete(ctx context.Context, req *ports.ProviderRequest) (*ports.ProviderReply, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Requests = append(p.Requests, req)
	if len(p.Replies) == 0 {
		return &ports.ProviderReply{ServerReply: "ok"}, nil
	}
	reply := p.Replies[0]
	p.Replies = p.Replies[1:]
	return reply, nil
}

var (
	_ ports.Mailer              = (*captureMailer)(nil)
	_ ports.GoogleTokenVerifier = (*scriptedVerifier)(nil)
	_ ports.AssistantProvider   = (*scriptedProvider)(nil)
)

type TestApp struct {
	Server      *httptest.Server
	Client      *http.Client
	Mongo       *mongo.Client
	DB          *mongo.Database
	Mailer      *captureMailer
	Provider    *scriptedProvider
	DBContainer *mongodb.MongoDBContainer
}

func setupTestApp(t *testing.T) *TestApp {
	t.Helper()
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	require.NoError(t, err)

	db := client.Database("testdb-" + uuid.NewString())

	userRepo := repo.NewUserRepository(db)
	contextRepo := repo.NewContextRepository(db)
	conversationRepo := repo.NewConversationRepository(db)
	for _, ensure := range []func(context.Context) error{
		userRepo.EnsureIndexes,
		contextRepo.EnsureIndexes,
		conversationRepo.EnsureIndexes,
	} {
		require.NoError(t, ensure(ctx))
	}

	logger := slog.New(slog.DiscardHandler)
	mailer := newCaptureMailer()
	provider := &scriptedProvider{}

	tokenService := services.NewTokenService([]byte("integration-secret"), 15*time.Minute, 24*time.Hour)
	verifier := &scriptedVerifier{payload: ports.GooglePayload{
		Subject: "google-subject-1",
		Email:   "google.user@example.com",
		Name:    "Google User",
	}}

	authService := services.NewAuthService(userRepo, tokenService, verifier, mailer, "test-client-id", logger)
	contextService := services.NewContextService(contextRepo, testContextMaxFacts, logger)
	conversationService := services.NewConversationService(conversationRepo)
	assistantService := services.NewAssistantService(
		conversationService,
		contextService,
		provider,
		services.DefaultPromptBudget(),
		testContextMaxFacts,
		logger,
	)

	router := handler.NewHandler(
		handler.NewAuthHandler(authService, true),
		handler.NewAssistantHandler(assistantService, true),
		authService,
		true,
	)

	server := httptest.NewServer(router)

	return &TestApp{
		Server:      server,
		Client:      server.Client(),
		Mongo:       client,
		DB:          db,
		Mailer:      mailer,
		Provider:    provider,
		DBContainer: container,
	}
}

func (a *TestApp) Teardown(t *testing.T) {
	t.Helper()
	a.Server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, a.Mongo.Disconnect(ctx))
	require.NoError(t, a.DBContainer.Terminate(ctx))
}
