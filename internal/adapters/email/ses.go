package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"conferencereg/internal/domain"
)

// SESConfig holds configuration for AWS SES.
type SESConfig struct {
	Region             string
	AccessKeyID        string
	SecretAccessKey    string
	InsecureSkipVerify bool
}

// rawEmailSender is the subset of *ses.Client used to deliver MIME messages.
type rawEmailSender interface {
	SendRawEmail(ctx context.Context, params *ses.SendRawEmailInput, optFns ...func(*ses.Options)) (*ses.SendRawEmailOutput, error)
}

// sesMailer sends the same MIME message the SMTP provider would, through SendRawEmail,
// so CC recipients and attachments survive.
type sesMailer struct {
	client rawEmailSender
	from   domain.Address
	logger *slog.Logger
}

// newSESMailer builds an SES client from static credentials. The HTTP transport keeps
// the default proxy and pooling settings and only overrides TLS.
func newSESMailer(cfg SESConfig, from domain.Address, logger *slog.Logger) *sesMailer {
	if cfg.InsecureSkipVerify {
		logger.Warn("TLS certificate verification is disabled for SES. Use only in development.")
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		MinVersion:         tls.VersionTLS12,
	}
	awsCfg := aws.Config{
		Region:      cfg.Region,
		Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		HTTPClient:  &http.Client{Transport: transport},
	}
	return &sesMailer{client: ses.NewFromConfig(awsCfg), from: from, logger: logger}
}

func (s *sesMailer) Send(ctx context.Context, msg *domain.Message) error {
	m, err := buildMessage(s.from, msg)
	if err != nil {
		return domain.NewMailError(DiagMessage, err)
	}
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return domain.NewMailError(DiagMessage, err)
	}

	input := &ses.SendRawEmailInput{
		Source:       aws.String(m.FormatAddress(s.from.Email, s.from.Name)),
		Destinations: recipients(msg),
		RawMessage:   &types.RawMessage{Data: buf.Bytes()},
	}
	result, err := s.client.SendRawEmail(ctx, input)
	if err != nil {
		s.logger.ErrorContext(ctx, "ses send failed", "to", msg.To.Email, "err", err)
		return domain.NewMailError(DiagnoseSMTP(err), err)
	}
	s.logger.InfoContext(ctx, "email sent via SES", "to", msg.To.Email, "message_id", aws.ToString(result.MessageId))
	return nil
}
