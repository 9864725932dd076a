package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"conferencereg/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger so tests don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeStore implements domain.RegistrationStore in memory.
type fakeStore struct {
	records   []domain.Record
	listErr   error
	appendErr error
	updateErr error

	appended   []domain.Record
	lastEmail  string
	lastStatus string
}

func (f *fakeStore) List(ctx context.Context) ([]domain.Record, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.records, nil
}

func (f *fakeStore) Append(ctx context.Context, rec domain.Record) error {
	f.appended = append(f.appended, rec)
	return f.appendErr
}

func (f *fakeStore) UpdateStatus(ctx context.Context, email, status string) error {
	f.lastEmail, f.lastStatus = email, status
	return f.updateErr
}

// fakeValidator implements domain.RecordValidator.
type fakeValidator struct {
	err    error
	called bool
}

func (f *fakeValidator) Validate(rec domain.Record) error {
	f.called = true
	return f.err
}

// fakeMailer records messages and checks every attachment exists at send time.
type fakeMailer struct {
	err                error
	sent               []*domain.Message
	attachmentsPresent bool
}

func (f *fakeMailer) Send(ctx context.Context, msg *domain.Message) error {
	f.sent = append(f.sent, msg)
	f.attachmentsPresent = true
	for _, a := range msg.Attachments {
		if _, err := os.Stat(a.Path); err != nil {
			f.attachmentsPresent = false
		}
	}
	return f.err
}

// fakeRenderer implements domain.EmailTemplateRenderer.
type fakeRenderer struct {
	err      error
	lastName string
	lastData any
}

func (f *fakeRenderer) Render(name string, data any) (string, string, string, error) {
	f.lastName, f.lastData = name, data
	if f.err != nil {
		return "", "", "", f.err
	}
	return "subject:" + name, "<p>" + name + "</p>", "", nil
}

// fileHeader builds a parsed multipart file part the way net/http would.
func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("pdf", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	t.Cleanup(func() { _ = req.MultipartForm.RemoveAll() })
	return req.MultipartForm.File["pdf"][0]
}
