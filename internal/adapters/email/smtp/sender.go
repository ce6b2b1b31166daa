package smtp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"

	"github.com/aicompanion/api/internal/core/ports"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Sender delivers verification and password-reset codes over SMTP. When no
// credentials are configured it logs and reports success so local
// development is not blocked on a mail server.
type Sender struct {
	cfg    Config
	logger *slog.Logger
}

func NewSender(cfg Config, logger *slog.Logger) *Sender {
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &Sender{cfg: cfg, logger: logger}
}

func (s *Sender) SendVerificationCode(ctx context.Context, to, code string) error {
	body := fmt.Sprintf(`<html><body>
<h2>Welcome to AICompanion!</h2>
<p>Please use the following verification code to verify your email address:</p>
<div style="background-color:#f0f0f0;padding:20px;text-align:center;margin:20px 0;border-radius:5px;">
<h1 style="font-size:32px;color:#2196F3;letter-spacing:5px;margin:0;">%s</h1>
</div>
<p>Enter this code in the app to complete your email verification.</p>
<p><strong>This code will expire in 30 minutes.</strong></p>
<p>If you didn't create an account, please ignore this email.</p>
</body></html>`, code)

	return s.send(ctx, to, "Verify your email address - AICompanion", body)
}

func (s *Sender) SendPasswordResetCode(ctx context.Context, to, code string) error {
	body := fmt.Sprintf(`<html><body>
<h2>Password Reset Request</h2>
<p>Please use the following code to reset your password:</p>
<div style="background-color:#f0f0f0;padding:20px;text-align:center;margin:20px 0;border-radius:5px;">
<h1 style="font-size:32px;color:#FF5722;letter-spacing:5px;margin:0;">%s</h1>
</div>
<p>Enter this code in the app along with your new password.</p>
<p><strong>This code will expire in 30 minutes.</strong></p>
<p>If you didn't request a password reset, please ignore this email.</p>
</body></html>`, code)

	return s.send(ctx, to, "Reset your password - AICompanion", body)
}

func (s *Sender) send(ctx context.Context, to, subject, body string) error {
	if s.cfg.Username == "" || s.cfg.Password == "" {
		s.logger.Warn("smtp credentials not configured, skipping email", "to", to, "subject", subject)
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, body)

	client, err := mail.NewClient(s.cfg.Host,
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.Username),
		mail.WithPassword(s.cfg.Password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("email sent", "to", to, "subject", subject)
	return nil
}

var _ ports.Mailer = (*Sender)(nil)
