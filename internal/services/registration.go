package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"conferencereg/internal/domain"
	"conferencereg/internal/metrics"
)

type registrationService struct {
	store     domain.RegistrationStore
	validator domain.RecordValidator
	logger    *slog.Logger
}

// NewRegistrationService returns a RegistrationService over store. validator may be nil,
// in which case only the email rules of the store apply.
func NewRegistrationService(store domain.RegistrationStore, validator domain.RecordValidator, logger *slog.Logger) domain.RegistrationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &registrationService{store: store, validator: validator, logger: logger}
}

// List returns every record. A corrupt store file reads as empty so the listing page
// keeps working; mutations still refuse to overwrite it.
func (s *registrationService) List(ctx context.Context) ([]domain.Record, error) {
	recs, err := s.store.List(ctx)
	if errors.Is(err, domain.ErrCorruptStore) {
		s.logger.ErrorContext(ctx, "registrations file is corrupt, listing as empty", "err", err)
		return []domain.Record{}, nil
	}
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []domain.Record{}
	}
	return recs, nil
}

func (s *registrationService) Submit(ctx context.Context, rec domain.Record) error {
	err := s.submit(ctx, rec)
	metrics.RegistrationsSubmitted.WithLabelValues(resultLabel(err)).Inc()
	switch {
	case err == nil:
		s.logger.InfoContext(ctx, "registration saved", "type", rec.Type())
	case errors.Is(err, domain.ErrConflict):
		s.logger.InfoContext(ctx, "registration rejected", "err", err)
	case errors.Is(err, domain.ErrStorage):
		s.logger.ErrorContext(ctx, "registration not saved", "err", err)
	}
	return err
}

func (s *registrationService) submit(ctx context.Context, rec domain.Record) error {
	if len(rec) == 0 {
		return domain.NewValidationError(domain.ReasonNoData, "No data received")
	}
	// email rules first: they carry the precise reasons clients rely on
	if _, err := rec.Emails(); err != nil {
		return err
	}
	if s.validator != nil {
		if err := s.validator.Validate(rec); err != nil {
			return err
		}
	}
	return s.store.Append(ctx, rec)
}

// Lookup returns the first registrant whose email matches, flattened with the owning
// record's created_at and the registrant's role.
func (s *registrationService) Lookup(ctx context.Context, email string) (map[string]any, error) {
	want := domain.NormalizeEmail(email)
	if want == "" {
		return nil, domain.NewValidationError(domain.ReasonMissingFields, "Email is required.")
	}
	recs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		for _, reg := range rec.Registrants() {
			if domain.NormalizeEmail(reg.Email()) == want {
				return reg.Flatten(rec["created_at"]), nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

func (s *registrationService) UpdatePaymentStatus(ctx context.Context, email, status string) error {
	err := s.updatePaymentStatus(ctx, email, status)
	metrics.PaymentStatusUpdates.WithLabelValues(resultLabel(err)).Inc()
	if errors.Is(err, domain.ErrStorage) {
		s.logger.ErrorContext(ctx, "payment status not saved", "email", email, "err", err)
	} else if err == nil {
		s.logger.InfoContext(ctx, "payment status updated", "email", email, "status", status)
	}
	return err
}

func (s *registrationService) updatePaymentStatus(ctx context.Context, email, status string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(status) == "" {
		return domain.NewValidationError(domain.ReasonMissingFields, "Missing required fields")
	}
	return s.store.UpdateStatus(ctx, email, status)
}

// resultLabel maps an operation error to a metrics result label.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrUpload):
		return metrics.ResultInvalid
	case errors.Is(err, domain.ErrConflict):
		return metrics.ResultConflict
	case errors.Is(err, domain.ErrNotFound):
		return metrics.ResultNotFound
	default:
		return metrics.ResultError
	}
}
