package email

import (
	"context"
	"log/slog"

	"conferencereg/internal/domain"
)

// Providers accepted by NewMailer.
const (
	ProviderSMTP = "smtp"
	ProviderSES  = "ses"
	ProviderNoop = "noop"
)

// MailerConfig holds configuration for creating a mailer.
type MailerConfig struct {
	Provider    string
	FromAddress string
	FromName    string
	SMTP        SMTPConfig
	SES         SESConfig
}

// NewMailer creates a mailer from config. Provider "smtp" dials the configured server,
// "ses" uses AWS SES raw sends and "noop" only logs. Unknown providers fall back to noop.
func NewMailer(config MailerConfig, logger *slog.Logger) (domain.Mailer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	from := domain.Address{Email: config.FromAddress, Name: config.FromName}
	switch config.Provider {
	case ProviderSMTP, "":
		return newSMTPMailer(config.SMTP, from, logger)
	case ProviderSES:
		return newSESMailer(config.SES, from, logger), nil
	case ProviderNoop:
		return &noopMailer{logger: logger}, nil
	default:
		logger.Warn("unknown email provider, using noop", "provider", config.Provider)
		return &noopMailer{logger: logger}, nil
	}
}

type noopMailer struct {
	logger *slog.Logger
}

func (n *noopMailer) Send(ctx context.Context, msg *domain.Message) error {
	n.logger.InfoContext(ctx, "email would be sent (noop)", "to", msg.To.Email, "cc", len(msg.Cc), "subject", msg.Subject)
	return nil
}
