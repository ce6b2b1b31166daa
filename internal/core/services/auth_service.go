package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/aicompanion/api/internal/core/domain"
	"github.com/aicompanion/api/internal/core/ports"
)

const (
	verificationCodeTTL = 30 * time.Minute
	minPasswordLen      = 8
)

type AuthService struct {
	userRepo       ports.UserRepository
	tokens         ports.TokenService
	googleVerifier ports.GoogleTokenVerifier
	mailer         ports.Mailer
	googleClientID string
	logger         *slog.Logger
}

func NewAuthService(
	userRepo ports.UserRepository,
	tokens ports.TokenService,
	googleVerifier ports.GoogleTokenVerifier,
	mailer ports.Mailer,
	googleClientID string,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:       userRepo,
		tokens:         tokens,
		googleVerifier: googleVerifier,
		mailer:         mailer,
		googleClientID: googleClientID,
		logger:         logger,
	}
}

func (s *AuthService) Register(ctx context.Context, email, username, password, name string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)

	if email == "" || !strings.Contains(email, "@") {
		return "", fmt.Errorf("%w: invalid email address", domain.ErrValidation)
	}
	if len(password) < minPasswordLen {
		return "", fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLen)
	}

	if existing, err := s.userRepo.GetByEmail(ctx, email); err != nil {
		return "", fmt.Errorf("failed to check email: %w", err)
	} else if existing != nil {
		return "", fmt.Errorf("%w: email already registered", domain.ErrUserExists)
	}
	if username != "" {
		if existing, err := s.userRepo.GetByUsername(ctx, username); err != nil {
			return "", fmt.Errorf("failed to check username: %w", err)
		} else if existing != nil {
			return "", fmt.Errorf("%w: username already taken", domain.ErrUserExists)
		}
	}

	hash, err := HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}

	user := &domain.User{
		Email:                     email,
		Username:                  username,
		Name:                      name,
		PasswordHash:              hash,
		Verified:                  false,
		VerificationCode:          code,
		VerificationCodeExpiresAt: time.Now().Add(verificationCodeTTL),
		Active:                    true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.mailer.SendVerificationCode(ctx, email, code); err != nil {
		s.logger.Error("failed to send verification email", "email", email, "error", err)
		return "", fmt.Errorf("%w: could not send verification email", domain.ErrExternalService)
	}

	s.logger.Info("user registered", "user_id", user.ID, "email", email)
	return user.ID, nil
}

func (s *AuthService) VerifyEmail(ctx context.Context, email, code string) error {
	user, err := s.getByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.Verified {
		return nil
	}

	if user.VerificationCode == "" || user.VerificationCode != code {
		return domain.ErrInvalidCode
	}
	if time.Now().After(user.VerificationCodeExpiresAt) {
		return domain.ErrCodeExpired
	}

	user.Verified = true
	user.VerificationCode = ""
	user.VerificationCodeExpiresAt = time.Time{}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("email verified", "user_id", user.ID)
	return nil
}

func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.getByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.Verified {
		// Nothing to do; do not leak verification state.
		return nil
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}

	user.VerificationCode = code
	user.VerificationCodeExpiresAt = time.Now().Add(verificationCodeTTL)

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	if err := s.mailer.SendVerificationCode(ctx, user.Email, code); err != nil {
		s.logger.Error("failed to send verification email", "email", user.Email, "error", err)
		return fmt.Errorf("%w: could not send verification email", domain.ErrExternalService)
	}
	return nil
}

func (s *AuthService) Login(ctx context.Context, emailOrUsername, password string) (*domain.AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(emailOrUsername)))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		user, err = s.userRepo.GetByUsername(ctx, strings.TrimSpace(emailOrUsername))
		if err != nil {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
	}
	if user == nil || user.PasswordHash == "" || !VerifyPassword(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.Verified {
		return nil, domain.ErrEmailNotVerified
	}

	return s.issuePair(user)
}

func (s *AuthService) LoginWithGoogle(ctx context.Context, idToken string) (*domain.AuthResult, error) {
	payload, err := s.googleVerifier.Verify(ctx, idToken, s.googleClientID)
	if err != nil {
		s.logger.Warn("google token rejected", "error", err)
		return nil, fmt.Errorf("%w: invalid google token", domain.ErrUnauthorized)
	}
	if payload.Subject == "" || payload.Email == "" {
		return nil, fmt.Errorf("%w: google token missing required claims", domain.ErrUnauthorized)
	}

	user, err := s.userRepo.GetByGoogleID(ctx, payload.Subject)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user == nil {
		// Link an existing email account before creating a fresh one.
		user, err = s.userRepo.GetByEmail(ctx, strings.ToLower(payload.Email))
		if err != nil {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		if user != nil {
			user.GoogleID = payload.Subject
			if payload.Name != "" {
				user.Name = payload.Name
			}
			if payload.Picture != "" {
				user.Picture = payload.Picture
			}
			user.Verified = true
			if err := s.userRepo.Update(ctx, user); err != nil {
				return nil, fmt.Errorf("failed to update user: %w", err)
			}
		} else {
			user = &domain.User{
				Email:    strings.ToLower(payload.Email),
				GoogleID: payload.Subject,
				Name:     payload.Name,
				Picture:  payload.Picture,
				Verified: true,
				Active:   true,
			}
			if err := s.userRepo.Create(ctx, user); err != nil {
				return nil, fmt.Errorf("failed to create user: %w", err)
			}
			s.logger.Info("user created from google login", "user_id", user.ID)
		}
	}

	return s.issuePair(user)
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
	subject, err := s.tokens.Verify(refreshToken, domain.TokenKindRefresh)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !user.Active {
		return nil, domain.ErrUserNotFound
	}

	return s.issuePair(user)
}

func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		// Do not leak whether the address is registered.
		return nil
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("failed to generate reset code: %w", err)
	}

	user.ResetCode = code
	user.ResetCodeExpiresAt = time.Now().Add(verificationCodeTTL)

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	if err := s.mailer.SendPasswordResetCode(ctx, user.Email, code); err != nil {
		s.logger.Error("failed to send reset email", "email", user.Email, "error", err)
		return fmt.Errorf("%w: could not send reset email", domain.ErrExternalService)
	}
	return nil
}

func (s *AuthService) ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLen)
	}

	user, err := s.getByEmail(ctx, email)
	if err != nil {
		return err
	}

	if user.ResetCode == "" || user.ResetCode != code {
		return domain.ErrInvalidCode
	}
	if time.Now().After(user.ResetCodeExpiresAt) {
		return domain.ErrCodeExpired
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = hash
	user.ResetCode = ""
	user.ResetCodeExpiresAt = time.Time{}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("password reset", "user_id", user.ID)
	return nil
}

func (s *AuthService) VerifyAccessToken(ctx context.Context, token string) (*domain.User, error) {
	subject, err := s.tokens.Verify(token, domain.TokenKindAccess)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !user.Active {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *AuthService) getByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *AuthService) issuePair(user *domain.User) (*domain.AuthResult, error) {
	access, err := s.tokens.Issue(user.ID, domain.TokenKindAccess)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	refresh, err := s.tokens.Issue(user.ID, domain.TokenKindRefresh)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	return &domain.AuthResult{
		TokenPair: domain.TokenPair{
			AccessToken:  access,
			RefreshToken: refresh,
			TokenType:    "bearer",
		},
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	}, nil
}

// generateCode returns a 6-digit numeric code for email verification and
// password reset.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

var _ ports.AuthService = (*AuthService)(nil)
