package ports

import (
	"context"

	"github.com/aicompanion/api/internal/core/domain"
)

// GoogleTokenVerifier validates a Google ID token against the configured
// client ID and returns the claims this service cares about.
type GoogleTokenVerifier interface {
	Verify(ctx context.Context, token string, clientID string) (*GooglePayload, error)
}

type GooglePayload struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// TokenService issues and verifies kind-tagged signed tokens. A token
// presented with the wrong kind is rejected.
type TokenService interface {
	Issue(subject string, kind domain.TokenKind) (string, error)
	Verify(token string, expected domain.TokenKind) (subject string, err error)
}

type AuthService interface {
	Register(ctx context.Context, email, username, password, name string) (userID string, err error)
	VerifyEmail(ctx context.Context, email, code string) error
	ResendVerification(ctx context.Context, email string) error
	Login(ctx context.Context, emailOrUsername, password string) (*domain.AuthResult, error)
	LoginWithGoogle(ctx context.Context, idToken string) (*domain.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.AuthResult, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error
	VerifyAccessToken(ctx context.Context, token string) (*domain.User, error)
}
