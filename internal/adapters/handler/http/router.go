package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aicompanion/api/internal/core/ports"
)

func NewHandler(
	authHandler *AuthHandler,
	assistantHandler *AssistantHandler,
	authService ports.AuthService,
	debug bool,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/google", authHandler.Google)
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.Post("/verify-token", authHandler.VerifyToken)
		r.Post("/verify-email", authHandler.VerifyEmail)
		r.Post("/resend-verification", authHandler.ResendVerification)
		r.Post("/request-password-reset", authHandler.RequestPasswordReset)
		r.Post("/confirm-password-reset", authHandler.ConfirmPasswordReset)
	})

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(authService, debug))
		r.Post("/assistant", assistantHandler.Ask)
		r.Get("/conversations", assistantHandler.Conversations)
	})

	return r
}
