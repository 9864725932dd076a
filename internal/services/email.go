package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"conferencereg/internal/domain"
)

// TestEmailSender sends the fixed connectivity test message.
type TestEmailSender struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewTestEmailSender returns a sender that uses the given Mailer and template renderer.
func NewTestEmailSender(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) *TestEmailSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &TestEmailSender{mailer: mailer, renderer: renderer, logger: logger}
}

// Send delivers the "test_email" template to the given address.
func (s *TestEmailSender) Send(ctx context.Context, to, name string) error {
	to = strings.TrimSpace(to)
	if !validEmail(to) {
		return domain.NewValidationError(domain.ReasonEmail, "Invalid email address format")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("test_email", domain.TestEmailData{Name: strings.TrimSpace(name)})
	if err != nil {
		return fmt.Errorf("failed to render test_email template: %w", err)
	}
	msg := &domain.Message{
		To:       domain.Address{Email: to, Name: strings.TrimSpace(name)},
		Subject:  subject,
		HTMLBody: htmlBody,
		TextBody: textBody,
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send test email: %w", err)
	}
	s.logger.InfoContext(ctx, "test email sent", "to", to)
	return nil
}
