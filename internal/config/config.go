package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting, loaded from the environment with an
// optional .env file for local development.
type Config struct {
	HTTPAddr string

	MongoURI string
	MongoDB  string

	JWTSecret      string
	AccessTokenTTL time.Duration
	RefreshTTL     time.Duration

	GoogleClientID string

	AnthropicAPIKey string
	AnthropicModel  string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string

	ContextMaxFacts int

	LogLevel slog.Level
	Debug    bool
}

func Load() (*Config, error) {
	// A missing .env is fine, real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:       getenv("HTTP_ADDR", "0.0.0.0:8080"),
		MongoURI:       getenv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:        getenv("MONGODB_DB", "aicompanion"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),

		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  os.Getenv("ANTHROPIC_MODEL"),

		SMTPHost:     getenv("SMTP_SERVER", "smtp.gmail.com"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		FromEmail:    os.Getenv("FROM_EMAIL"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	accessSeconds, err := getint("ACCESS_TOKEN_EXPIRE_SECONDS", 3600)
	if err != nil {
		return nil, err
	}
	cfg.AccessTokenTTL = time.Duration(accessSeconds) * time.Second

	refreshDays, err := getint("REFRESH_TOKEN_EXPIRE_DAYS", 7)
	if err != nil {
		return nil, err
	}
	cfg.RefreshTTL = time.Duration(refreshDays) * 24 * time.Hour

	if cfg.SMTPPort, err = getint("SMTP_PORT", 587); err != nil {
		return nil, err
	}
	if cfg.ContextMaxFacts, err = getint("CONTEXT_MAX_FACTS", 30); err != nil {
		return nil, err
	}

	switch getenv("LOG_LEVEL", "info") {
	case "debug":
		cfg.LogLevel = slog.LevelDebug
	case "warn":
		cfg.LogLevel = slog.LevelWarn
	case "error":
		cfg.LogLevel = slog.LevelError
	default:
		cfg.LogLevel = slog.LevelInfo
	}

	cfg.Debug, _ = strconv.ParseBool(os.Getenv("DEBUG"))

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
