package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"time"

	mail "github.com/go-mail/mail"

	"conferencereg/internal/domain"
)

// Security modes for SMTPConfig.Security.
const (
	SecurityTLS  = "tls"  // STARTTLS upgrade when offered
	SecuritySSL  = "ssl"  // implicit TLS from connection start
	SecurityNone = "none" // plaintext, trusted relays only
)

// SMTPConfig holds configuration for the SMTP provider.
type SMTPConfig struct {
	Host               string
	Port               int
	Username           string
	Password           string
	Security           string
	DebugLevel         int
	InsecureSkipVerify bool
	Timeout            time.Duration
}

type smtpMailer struct {
	dialer *mail.Dialer
	cfg    SMTPConfig
	from   domain.Address
	logger *slog.Logger
}

func newSMTPMailer(cfg SMTPConfig, from domain.Address, logger *slog.Logger) (*smtpMailer, error) {
	if cfg.Host == "" || cfg.Port <= 0 {
		return nil, fmt.Errorf("smtp host and port are required")
	}
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{
		ServerName:         cfg.Host,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		MinVersion:         tls.VersionTLS12,
	}
	if cfg.Timeout > 0 {
		d.Timeout = cfg.Timeout
	}
	switch cfg.Security {
	case SecuritySSL:
		d.SSL = true
	case SecurityNone:
		d.StartTLSPolicy = mail.NoStartTLS
	case SecurityTLS, "":
		d.StartTLSPolicy = mail.OpportunisticStartTLS
	default:
		return nil, fmt.Errorf("unknown smtp security mode %q", cfg.Security)
	}
	if cfg.InsecureSkipVerify {
		logger.Warn("TLS certificate verification is disabled for SMTP. Use only in development.")
	}
	return &smtpMailer{dialer: d, cfg: cfg, from: from, logger: logger}, nil
}

func (s *smtpMailer) Send(ctx context.Context, msg *domain.Message) error {
	log := s.logger.With(
		"component", "smtp_mailer",
		"host", s.cfg.Host,
		"port", s.cfg.Port,
		"secure", s.cfg.Security,
	)
	m, err := buildMessage(s.from, msg)
	if err != nil {
		return domain.NewMailError(DiagMessage, err)
	}
	if s.cfg.DebugLevel > 0 {
		log.DebugContext(ctx, "sending email",
			"username", maskSecret(s.cfg.Username),
			"from", s.from.Email,
			"to", msg.To.Email,
			"cc", len(msg.Cc),
			"subject", msg.Subject,
			"attachments", len(msg.Attachments),
		)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		code := DiagnoseSMTP(err)
		log.ErrorContext(ctx, "smtp send failed",
			"username", maskSecret(s.cfg.Username),
			"from", s.from.Email,
			"to", msg.To.Email,
			"diag", code,
			"err", err,
		)
		return domain.NewMailError(code, err)
	}
	log.InfoContext(ctx, "email sent", "to", msg.To.Email)
	return nil
}

// maskSecret hides a credential while still showing whether it is set.
func maskSecret(s string) string {
	if s == "" {
		return "not set"
	}
	return "***"
}
