package main

import (
	"context"
	"errors"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/aicompanion/api/internal/adapters/ai/anthropic"
	"github.com/aicompanion/api/internal/adapters/email/smtp"
	"github.com/aicompanion/api/internal/adapters/handler/http"
	"github.com/aicompanion/api/internal/adapters/oauth/google"
	mongorepo "github.com/aicompanion/api/internal/adapters/repository/mongo"
	"github.com/aicompanion/api/internal/config"
	"github.com/aicompanion/api/internal/core/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Error("failed to connect to mongodb", "error", err)
		os.Exit(1)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			logger.Error("failed to disconnect from mongodb", "error", err)
		}
	}()

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		logger.Error("mongodb is unreachable", "error", err)
		os.Exit(1)
	}

	db := client.Database(cfg.MongoDB)

	userRepo := mongorepo.NewUserRepository(db)
	contextRepo := mongorepo.NewContextRepository(db)
	conversationRepo := mongorepo.NewConversationRepository(db)

	indexCtx, cancelIndex := context.WithTimeout(ctx, 30*time.Second)
	defer cancelIndex()
	for _, ensure := range []func(context.Context) error{
		userRepo.EnsureIndexes,
		contextRepo.EnsureIndexes,
		conversationRepo.EnsureIndexes,
	} {
		if err := ensure(indexCtx); err != nil {
			logger.Error("failed to create mongodb indexes", "error", err)
			os.Exit(1)
		}
	}

	tokenService := services.NewTokenService([]byte(cfg.JWTSecret), cfg.AccessTokenTTL, cfg.RefreshTTL)
	mailer := smtp.NewSender(smtp.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.FromEmail,
	}, logger)

	authService := services.NewAuthService(
		userRepo,
		tokenService,
		google.NewVerifier(),
		mailer,
		cfg.GoogleClientID,
		logger,
	)

	contextService := services.NewContextService(contextRepo, cfg.ContextMaxFacts, logger)
	conversationService := services.NewConversationService(conversationRepo)
	provider := anthropic.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, logger)

	assistantService := services.NewAssistantService(
		conversationService,
		contextService,
		provider,
		services.DefaultPromptBudget(),
		cfg.ContextMaxFacts,
		logger,
	)

	handler := http.NewHandler(
		http.NewAuthHandler(authService, cfg.Debug),
		http.NewAssistantHandler(assistantService, cfg.Debug),
		authService,
		cfg.Debug,
	)

	server := &stdhttp.Server{Addr: cfg.HTTPAddr, Handler: handler}

	go func() {
		logger.Info("server listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("gracefully shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
