// Package jsonfile stores registration records in a single pretty-printed JSON file.
//
// Every mutation reads the whole file, changes it in memory and atomically replaces
// the file. No lock is held across the read-modify-write cycle: two concurrent
// mutations race and the last rename wins, so one of them can be lost. Readers always
// observe a complete file.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"conferencereg/internal/domain"
)

const filePerm = 0o644

type registrationStore struct {
	path      string
	logger    *slog.Logger
	now       func() time.Time
	location  *time.Location
	writeTemp tempWriter
}

// Option configures the store.
type Option func(*registrationStore)

// WithClock overrides the clock used to stamp created_at.
func WithClock(now func() time.Time) Option {
	return func(s *registrationStore) { s.now = now }
}

// WithLocation sets the time zone of created_at stamps.
func WithLocation(loc *time.Location) Option {
	return func(s *registrationStore) {
		if loc != nil {
			s.location = loc
		}
	}
}

// withTempWriter replaces how bytes reach the temporary file. Tests use it to fail
// a write midway.
func withTempWriter(w tempWriter) Option {
	return func(s *registrationStore) { s.writeTemp = w }
}

// NewRegistrationStore returns a RegistrationStore backed by the JSON file at path.
// The file need not exist yet.
func NewRegistrationStore(path string, logger *slog.Logger, opts ...Option) domain.RegistrationStore {
	if logger == nil {
		logger = slog.Default()
	}
	s := &registrationStore{
		path:      path,
		logger:    logger,
		now:       time.Now,
		location:  time.UTC,
		writeTemp: writeAll,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *registrationStore) List(ctx context.Context) ([]domain.Record, error) {
	return s.load()
}

func (s *registrationStore) Append(ctx context.Context, rec domain.Record) error {
	submitted, err := rec.Emails()
	if err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(submitted))
	for _, e := range submitted {
		if _, dup := seen[e]; dup {
			return domain.NewValidationError(domain.ReasonDuplicateInSubmission,
				"Duplicate emails found within this submission. Each participant must have a unique email.")
		}
		seen[e] = struct{}{}
	}

	records, err := s.load()
	if err != nil {
		return err
	}

	existing := make(map[string]struct{})
	for _, r := range records {
		for _, e := range r.StoredEmails() {
			existing[e] = struct{}{}
		}
	}
	var already []string
	for _, e := range submitted {
		if _, ok := existing[e]; ok {
			already = append(already, e)
		}
	}
	if len(already) > 0 {
		return &domain.ConflictError{Emails: already}
	}

	rec["created_at"] = s.now().In(s.location).Format(domain.CreatedAtLayout)
	records = append(records, rec)
	if err := s.save(records); err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "registration appended", "emails", len(submitted), "records", len(records))
	return nil
}

func (s *registrationStore) UpdateStatus(ctx context.Context, email, status string) error {
	records, err := s.load()
	if err != nil {
		return err
	}
	updated := false
	for _, r := range records {
		if r.SetPaymentStatus(email, status) {
			updated = true
			break
		}
	}
	if !updated {
		return domain.ErrNotFound
	}
	if err := s.save(records); err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "payment status updated", "status", status)
	return nil
}

// load reads the whole store. A missing, empty or null file is an empty store.
func (s *registrationStore) load() ([]domain.Record, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []domain.Record{}, nil
		}
		return nil, domain.NewStorageError("read registrations", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return []domain.Record{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var records []domain.Record
	if err := dec.Decode(&records); err != nil {
		return nil, domain.NewStorageError("decode registrations", fmt.Errorf("%w: %v", domain.ErrCorruptStore, err))
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, domain.NewStorageError("decode registrations", fmt.Errorf("%w: trailing data", domain.ErrCorruptStore))
	}
	if records == nil {
		records = []domain.Record{}
	}
	return records, nil
}

func (s *registrationStore) save(records []domain.Record) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(records); err != nil {
		return domain.NewStorageError("encode registrations", err)
	}
	if err := atomicWriteFile(s.path, buf.Bytes(), filePerm, s.writeTemp); err != nil {
		s.logger.Error("persist registrations failed", "path", s.path, "err", err)
		return domain.NewStorageError("persist registrations", err)
	}
	return nil
}
