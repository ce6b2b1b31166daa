package http

import (
	"net/http"

	"github.com/aicompanion/api/internal/core/domain"
	"github.com/aicompanion/api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	debug       bool
}

func NewAuthHandler(authService ports.AuthService, debug bool) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		debug:       debug,
	}
}

type googleAuthRequest struct {
	Token string `json:"token"`
}

func (h *AuthHandler) Google(w http.ResponseWriter, r *http.Request) {
	var req googleAuthRequest
	if err := decodeJSON(r, &req); err != nil || req.Token == "" {
		writeError(w, domain.ErrValidation, h.debug)
		return
	}

	result, err := h.authService.LoginWithGoogle(r.Context(), req.Token)
	if err != nil {
		writeError(w, err, h.debug)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.debug)
		return
	}

	userID, err := h.authService.Register(r.Context(), req.Email, req.Username, req.Password, req.Name)
	if err != nil {
		writeError(w, err, h.debug)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "Registration successful. Please check your email for verification.",
		"user_id": userID,
	})
}

type loginRequest struct {
	EmailOrUsername string `json:"email_or_username"`
	Password        string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.debug)
		return
	}

	result, err := h.authService.Login(r.Context(), req.EmailOrUsername, req.Password)
	if err != nil {
		writeError(w, err, h.debug)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil || req.RefreshToken == "" {
		writeError(w, domain.ErrValidation, h.debug)
		return
	}

	result, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, err, h.debug)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// VerifyToken validates the bearer token and echoes the identity it
// belongs to.
func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, domain.ErrInvalidToken, h.debug)
		return
	}

	user, err := h.authService.VerifyAccessToken(r.Context(), token)
	if err != nil {
		writeError(w, err, h.debug)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
		"valid":   true,
	})
}

type verifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.debug)
		return
	}

	if err := h.authService.VerifyEmail(r.Context(), req.Email, req.Code); err != nil {
		writeError(w, err, h.debug)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Email verified successfully. You can now log in.",
		"verified": true,
	})
}

type resendVerificationRequest struct {
	Email string `json:"email"`
}

func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req resendVerificationRequest
	if err := decodeJSON(r, &req); err != nil || req.Email == "" {
		writeError(w, domain.ErrValidation, h.debug)
		return
	}

	if err := h.authService.ResendVerification(r.Context(), req.Email); err != nil {
		writeError(w, err, h.debug)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Verification code sent."})
}

type requestResetRequest struct {
	Email string `json:"email"`
}

func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req requestResetRequest
	if err := decodeJSON(r, &req); err != nil || req.Email == "" {
		writeError(w, domain.ErrValidation, h.debug)
		return
	}

	if err := h.authService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeError(w, err, h.debug)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "If the address is registered, a reset code has been sent."})
}

type confirmResetRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

func (h *AuthHandler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req confirmResetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.debug)
		return
	}

	if err := h.authService.ConfirmPasswordReset(r.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		writeError(w, err, h.debug)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset successfully."})
}
