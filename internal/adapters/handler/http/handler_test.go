package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aicompanion/api/internal/core/domain"
	"github.com/aicompanion/api/internal/core/ports"
)

type stubAuthService struct {
	registerErr error
	loginResult *domain.AuthResult
	loginErr    error
	refreshErr  error
	user        *domain.User
	verifyErr   error
}

func (s *stubAuthService) Register(ctx context.Context, email, username, password, name string) (string, error) {
	if s.registerErr != nil {
		return "", s.registerErr
	}
	return "user-1", nil
}

func (s *stubAuthService) VerifyEmail(ctx context.Context, email, code string) error {
	if code != "123456" {
		return domain.ErrInvalidCode
	}
	return nil
}

func (s *stubAuthService) ResendVerification(ctx context.Context, email string) error { return nil }

func (s *stubAuthService) Login(ctx context.Context, emailOrUsername, password string) (*domain.AuthResult, error) {
	return s.loginResult, s.loginErr
}

func (s *stubAuthService) LoginWithGoogle(ctx context.Context, idToken string) (*domain.AuthResult, error) {
	return s.loginResult, s.loginErr
}

func (s *stubAuthService) Refresh(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
	if s.refreshErr != nil {
		return nil, s.refreshErr
	}
	return s.loginResult, nil
}

func (s *stubAuthService) RequestPasswordReset(ctx context.Context, email string) error { return nil }

func (s *stubAuthService) ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error {
	return nil
}

func (s *stubAuthService) VerifyAccessToken(ctx context.Context, token string) (*domain.User, error) {
	if s.verifyErr != nil {
		return nil, s.verifyErr
	}
	return s.user, nil
}

type stubAssistantService struct {
	reply     string
	handleErr error
	page      *domain.ConversationPage
	gotPage   int
}

func (s *stubAssistantService) Handle(ctx context.Context, userID, message string) (string, error) {
	if s.handleErr != nil {
		return "", s.handleErr
	}
	return s.reply, nil
}

func (s *stubAssistantService) History(ctx context.Context, userID string, page int) (*domain.ConversationPage, error) {
	s.gotPage = page
	return s.page, nil
}

var (
	_ ports.AuthService      = (*stubAuthService)(nil)
	_ ports.AssistantService = (*stubAssistantService)(nil)
)

func newTestServer(auth *stubAuthService, assistant *stubAssistantService, debug bool) *httptest.Server {
	handler := NewHandler(
		NewAuthHandler(auth, debug),
		NewAssistantHandler(assistant, debug),
		auth,
		debug,
	)
	return httptest.NewServer(handler)
}

func postJSON(t *testing.T, client *http.Client, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := client.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestRegister_Created(t *testing.T) {
	auth := &stubAuthService{}
	server := newTestServer(auth, &stubAssistantService{}, false)
	defer server.Close()

	resp := postJSON(t, server.Client(), server.URL+"/auth/register", map[string]string{
		"email":    "a@example.com",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "user-1", body["user_id"])
}

func TestRegister_ConflictMapsTo409(t *testing.T) {
	auth := &stubAuthService{registerErr: domain.ErrUserExists}
	server := newTestServer(auth, &stubAssistantService{}, false)
	defer server.Close()

	resp := postJSON(t, server.Client(), server.URL+"/auth/register", map[string]string{
		"email":    "a@example.com",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, domain.ErrConflict.Error(), body["error"])
	assert.Empty(t, body["detail"])
}

func TestRegister_MalformedBodyIs400(t *testing.T) {
	server := newTestServer(&stubAuthService{}, &stubAssistantService{}, false)
	defer server.Close()

	resp, err := server.Client().Post(server.URL+"/auth/register", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogin_InvalidCredentialsIs401(t *testing.T) {
	auth := &stubAuthService{loginErr: domain.ErrInvalidCredentials}
	server := newTestServer(auth, &stubAssistantService{}, false)
	defer server.Close()

	resp := postJSON(t, server.Client(), server.URL+"/auth/login", map[string]string{
		"email_or_username": "a@example.com",
		"password":          "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogin_ReturnsTokenPair(t *testing.T) {
	auth := &stubAuthService{loginResult: &domain.AuthResult{
		TokenPair: domain.TokenPair{AccessToken: "acc", RefreshToken: "ref", TokenType: "bearer"},
		UserID:    "user-1",
		Email:     "a@example.com",
	}}
	server := newTestServer(auth, &stubAssistantService{}, false)
	defer server.Close()

	resp := postJSON(t, server.Client(), server.URL+"/auth/login", map[string]string{
		"email_or_username": "a@example.com",
		"password":          "supersecret",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "acc", body["access_token"])
	assert.Equal(t, "ref", body["refresh_token"])
	assert.Equal(t, "bearer", body["token_type"])
}

func TestRefresh_MissingTokenIs400(t *testing.T) {
	server := newTestServer(&stubAuthService{}, &stubAssistantService{}, false)
	defer server.Close()

	resp := postJSON(t, server.Client(), server.URL+"/auth/refresh", map[string]string{})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRefresh_WrongKindIs401(t *testing.T) {
	auth := &stubAuthService{refreshErr: domain.ErrWrongTokenKind}
	server := newTestServer(auth, &stubAssistantService{}, false)
	defer server.Close()

	resp := postJSON(t, server.Client(), server.URL+"/auth/refresh", map[string]string{
		"refresh_token": "some-access-token",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestVerifyToken_EchoesIdentity(t *testing.T) {
	auth := &stubAuthService{user: &domain.User{ID: "user-1", Email: "a@example.com"}}
	server := newTestServer(auth, &stubAssistantService{}, false)
	defer server.Close()

	req, err := http.NewRequest(http.MethodPost, server.URL+"/auth/verify-token", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer sometoken")

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "user-1", body["user_id"])
	assert.Equal(t, true, body["valid"])
}

func TestVerifyEmail_WrongCodeIs401(t *testing.T) {
	server := newTestServer(&stubAuthService{}, &stubAssistantService{}, false)
	defer server.Close()

	resp := postJSON(t, server.Client(), server.URL+"/auth/verify-email", map[string]string{
		"email": "a@example.com",
		"code":  "000000",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAssistant_RequiresBearer(t *testing.T) {
	server := newTestServer(&stubAuthService{}, &stubAssistantService{}, false)
	defer server.Close()

	resp := postJSON(t, server.Client(), server.URL+"/assistant", map[string]string{"message": "hi"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAssistant_ReturnsReply(t *testing.T) {
	auth := &stubAuthService{user: &domain.User{ID: "user-1", Email: "a@example.com"}}
	assistant := &stubAssistantService{reply: "hello there"}
	server := newTestServer(auth, assistant, false)
	defer server.Close()

	req, err := http.NewRequest(http.MethodPost, server.URL+"/assistant",
		strings.NewReader(`{"message":"hi"}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer sometoken")

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "hello there", body["server_reply"])
}

func TestAssistant_ProviderFailureIs502(t *testing.T) {
	auth := &stubAuthService{user: &domain.User{ID: "user-1", Email: "a@example.com"}}
	assistant := &stubAssistantService{
		handleErr: fmt.Errorf("%w: model timeout", domain.ErrExternalService),
	}
	server := newTestServer(auth, assistant, false)
	defer server.Close()

	req, err := http.NewRequest(http.MethodPost, server.URL+"/assistant",
		strings.NewReader(`{"message":"hi"}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer sometoken")

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, domain.ErrExternalService.Error(), body["error"])
}

func TestAssistant_DebugExposesDetail(t *testing.T) {
	auth := &stubAuthService{user: &domain.User{ID: "user-1", Email: "a@example.com"}}
	assistant := &stubAssistantService{
		handleErr: fmt.Errorf("%w: model timeout", domain.ErrExternalService),
	}
	server := newTestServer(auth, assistant, true)
	defer server.Close()

	req, err := http.NewRequest(http.MethodPost, server.URL+"/assistant",
		strings.NewReader(`{"message":"hi"}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer sometoken")

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Contains(t, body["detail"], "model timeout")
}

func TestConversations_PageParam(t *testing.T) {
	auth := &stubAuthService{user: &domain.User{ID: "user-1", Email: "a@example.com"}}
	assistant := &stubAssistantService{page: &domain.ConversationPage{Page: 2, PageSize: 20}}
	server := newTestServer(auth, assistant, false)
	defer server.Close()

	req, err := http.NewRequest(http.MethodGet, server.URL+"/conversations?page=2", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer sometoken")

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, assistant.gotPage)
}

func TestConversations_NegativePageIs400(t *testing.T) {
	auth := &stubAuthService{user: &domain.User{ID: "user-1", Email: "a@example.com"}}
	server := newTestServer(auth, &stubAssistantService{}, false)
	defer server.Close()

	req, err := http.NewRequest(http.MethodGet, server.URL+"/conversations?page=-1", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer sometoken")

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBearerToken_Parsing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := bearerToken(req)
	assert.False(t, ok)

	req.Header.Set("Authorization", "Basic abc")
	_, ok = bearerToken(req)
	assert.False(t, ok)

	req.Header.Set("Authorization", "bearer abc123")
	token, ok := bearerToken(req)
	assert.True(t, ok)
	assert.Equal(t, "abc123", token)
}
