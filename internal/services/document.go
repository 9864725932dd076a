package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"os"
	"strings"

	"conferencereg/internal/domain"
	"conferencereg/internal/metrics"
)

// DefaultRecipientName is used when a send request carries no name.
const DefaultRecipientName = "User"

// DocumentConfig holds the settings the send pipeline reads from configuration.
type DocumentConfig struct {
	UploadDir         string
	AllowedExtensions []string
	MaxBytes          int64
	SenderName        string
	CC                []domain.Address
}

type documentService struct {
	uploads  domain.UploadValidator
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	cfg      DocumentConfig
	logger   *slog.Logger
}

// NewDocumentService returns a DocumentService that stores the upload, mails it with the
// configured CC list and removes the stored file afterwards.
func NewDocumentService(uploads domain.UploadValidator, mailer domain.Mailer, renderer domain.EmailTemplateRenderer, cfg DocumentConfig, logger *slog.Logger) domain.DocumentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &documentService{uploads: uploads, mailer: mailer, renderer: renderer, cfg: cfg, logger: logger}
}

func (s *documentService) Send(ctx context.Context, kind domain.DocumentKind, req domain.SendDocumentRequest) (string, error) {
	to, err := s.send(ctx, kind, req)
	metrics.DocumentsSent.WithLabelValues(string(kind), resultLabel(err)).Inc()
	if err != nil && !errors.Is(err, domain.ErrValidation) && !errors.Is(err, domain.ErrUpload) {
		s.logger.ErrorContext(ctx, "document send failed", "kind", kind, "to", req.Email, "err", err)
	}
	return to, err
}

func (s *documentService) send(ctx context.Context, kind domain.DocumentKind, req domain.SendDocumentRequest) (string, error) {
	if kind != domain.DocumentInvoice && kind != domain.DocumentReceipt {
		return "", fmt.Errorf("unknown document kind %q", kind)
	}
	email := strings.TrimSpace(req.Email)
	var missing []string
	if email == "" {
		missing = append(missing, "email")
	}
	if req.File == nil {
		missing = append(missing, "pdf")
	}
	if len(missing) > 0 {
		return "", domain.NewValidationError(domain.ReasonMissingFields, "Missing required fields: "+strings.Join(missing, ", "))
	}

	stored, err := s.uploads.Accept(req.File, domain.UploadConstraints{
		MaxBytes:          s.cfg.MaxBytes,
		AllowedExtensions: s.cfg.AllowedExtensions,
		TargetDirectory:   s.cfg.UploadDir,
		Prefix:            string(kind),
	})
	if err != nil {
		return "", err
	}
	defer s.discard(ctx, stored.Path)

	if !validEmail(email) {
		return "", domain.NewValidationError(domain.ReasonEmail, "Invalid email address format")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = DefaultRecipientName
	}

	subject, htmlBody, textBody, err := s.renderer.Render(string(kind), domain.DocumentEmailData{
		Name:       name,
		SenderName: s.cfg.SenderName,
	})
	if err != nil {
		return "", fmt.Errorf("render %s template: %w", kind, err)
	}
	msg := &domain.Message{
		To:       domain.Address{Email: email, Name: name},
		Cc:       s.cfg.CC,
		Subject:  subject,
		HTMLBody: htmlBody,
		TextBody: textBody,
		Attachments: []domain.Attachment{{
			Path:     stored.Path,
			Filename: fmt.Sprintf("conference_%s.%s", kind, stored.Extension),
		}},
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return "", err
	}
	s.logger.InfoContext(ctx, "document sent", "kind", kind, "to", email, "cc", len(s.cfg.CC))
	return email, nil
}

// discard removes the stored upload. It runs on success and on failure.
func (s *documentService) discard(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.WarnContext(ctx, "could not remove uploaded file", "path", path, "err", err)
	}
}

// validEmail accepts a bare RFC 5322 address, rejecting display-name forms.
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	return at > 0 && strings.Contains(email[at+1:], ".")
}
