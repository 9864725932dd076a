package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"conferencereg/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeRegistrationService implements domain.RegistrationService for handler tests.
type fakeRegistrationService struct {
	listResult   []domain.Record
	listErr      error
	submitErr    error
	lookupResult map[string]any
	lookupErr    error
	updateErr    error

	lastSubmitted   domain.Record
	lastLookupEmail string
	lastEmail       string
	lastStatus      string
}

func (f *fakeRegistrationService) List(ctx context.Context) ([]domain.Record, error) {
	return f.listResult, f.listErr
}

func (f *fakeRegistrationService) Submit(ctx context.Context, rec domain.Record) error {
	f.lastSubmitted = rec
	return f.submitErr
}

func (f *fakeRegistrationService) Lookup(ctx context.Context, email string) (map[string]any, error) {
	f.lastLookupEmail = email
	return f.lookupResult, f.lookupErr
}

func (f *fakeRegistrationService) UpdatePaymentStatus(ctx context.Context, email, status string) error {
	f.lastEmail, f.lastStatus = email, status
	return f.updateErr
}

type fakeExportService struct {
	data []byte
	err  error
}

func (f *fakeExportService) ExportXLSX(ctx context.Context) ([]byte, error) { return f.data, f.err }

// fakeDocumentService implements domain.DocumentService.
type fakeDocumentService struct {
	err      error
	lastKind domain.DocumentKind
	lastReq  domain.SendDocumentRequest
}

func (f *fakeDocumentService) Send(ctx context.Context, kind domain.DocumentKind, req domain.SendDocumentRequest) (string, error) {
	f.lastKind, f.lastReq = kind, req
	if f.err != nil {
		return "", f.err
	}
	return strings.TrimSpace(req.Email), nil
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body
}

func TestRegistrationController_List(t *testing.T) {
	svc := &fakeRegistrationService{listResult: []domain.Record{}}
	c := NewRegistrationController(testLogger, svc, nil, false)

	rr := httptest.NewRecorder()
	c.List(rr, httptest.NewRequest(http.MethodGet, "/registrations", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rr.Body.String()))

	svc.listResult = []domain.Record{{"type": "single", "email": "a@x.com", "name": "Zoë"}}
	rr = httptest.NewRecorder()
	c.List(rr, httptest.NewRequest(http.MethodGet, "/registrations", nil))
	assert.Contains(t, rr.Body.String(), `"name":"Zoë"`)
}

func TestRegistrationController_Submit(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
		wantBody   map[string]any
	}{
		{
			name:       "created",
			body:       `{"type":"single","email":"A@x.com","name":"Ann","age":30}`,
			wantStatus: http.StatusCreated,
			wantBody:   map[string]any{"success": true, "message": "Registration saved successfully!"},
		},
		{
			name:       "empty body",
			body:       ``,
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]any{"success": false, "error": "No data received"},
		},
		{
			name:       "empty object",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]any{"success": false, "error": "No data received"},
		},
		{
			name:       "not an object",
			body:       `[1,2]`,
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]any{"success": false, "error": "No data received"},
		},
		{
			name:       "duplicate in submission",
			body:       `{"type":"multiple","primary":{"email":"a@x.com"},"additional":[{"email":"A@x.com"}]}`,
			serviceErr: domain.NewValidationError(domain.ReasonDuplicateInSubmission, "Duplicate emails found within this submission."),
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]any{"success": false, "error": "Duplicate emails found within this submission."},
		},
		{
			name:       "conflict",
			body:       `{"type":"single","email":"a@x.com","name":"Ann2"}`,
			serviceErr: &domain.ConflictError{Emails: []string{"a@x.com"}},
			wantStatus: http.StatusConflict,
			wantBody:   map[string]any{"success": false, "error": "The following email(s) are already registered: a@x.com"},
		},
		{
			name:       "storage failure",
			body:       `{"type":"single","email":"a@x.com"}`,
			serviceErr: domain.NewStorageError("rename", errors.New("read-only file system")),
			wantStatus: http.StatusInternalServerError,
			wantBody:   map[string]any{"success": false, "error": "Failed to save registration. Please try again."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeRegistrationService{submitErr: tt.serviceErr}
			c := NewRegistrationController(testLogger, svc, nil, false)
			rr := httptest.NewRecorder()
			c.Submit(rr, httptest.NewRequest(http.MethodPost, "/registrations", strings.NewReader(tt.body)))

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantBody, decodeBody(t, rr))
		})
	}
}

func TestRegistrationController_SubmitKeepsNumbers(t *testing.T) {
	svc := &fakeRegistrationService{}
	c := NewRegistrationController(testLogger, svc, nil, false)
	rr := httptest.NewRecorder()
	c.Submit(rr, httptest.NewRequest(http.MethodPost, "/registrations", strings.NewReader(`{"type":"single","email":"a@x.com","ticket":12345678901234567890}`)))

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, json.Number("12345678901234567890"), svc.lastSubmitted["ticket"])
}

func TestRegistrationController_Lookup(t *testing.T) {
	svc := &fakeRegistrationService{lookupResult: map[string]any{"email": "a@x.com", "role": "single"}}
	c := NewRegistrationController(testLogger, svc, nil, false)

	rr := httptest.NewRecorder()
	c.Lookup(rr, httptest.NewRequest(http.MethodGet, "/registrations/lookup?email=A%40x.com", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "A@x.com", svc.lastLookupEmail)
	assert.Equal(t, map[string]any{
		"success":    true,
		"registrant": map[string]any{"email": "a@x.com", "role": "single"},
	}, decodeBody(t, rr))

	svc.lookupErr = domain.ErrNotFound
	rr = httptest.NewRecorder()
	c.Lookup(rr, httptest.NewRequest(http.MethodGet, "/registrations/lookup?email=b%40x.com", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "No registration found for this email.", decodeBody(t, rr)["error"])

	svc.lookupErr = domain.NewValidationError(domain.ReasonMissingFields, "Email is required.")
	rr = httptest.NewRecorder()
	c.Lookup(rr, httptest.NewRequest(http.MethodGet, "/registrations/lookup", nil))
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRegistrationController_UpdatePaymentStatus(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
		wantBody   map[string]any
	}{
		{"ok", `{"email":"a@x.com","status":"paid"}`, nil, http.StatusOK, map[string]any{"success": true}},
		{"missing status", `{"email":"a@x.com"}`, nil, http.StatusBadRequest, map[string]any{"success": false, "error": "Missing required fields"}},
		{"not found", `{"email":"zz@x.com","status":"paid"}`, domain.ErrNotFound, http.StatusNotFound, map[string]any{"success": false, "error": "Registration not found"}},
		{"storage", `{"email":"a@x.com","status":"paid"}`, domain.NewStorageError("write", errors.New("disk full")), http.StatusInternalServerError, map[string]any{"success": false, "error": "Failed to update registration."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeRegistrationService{updateErr: tt.serviceErr}
			c := NewRegistrationController(testLogger, svc, nil, false)
			rr := httptest.NewRecorder()
			c.UpdatePaymentStatus(rr, httptest.NewRequest(http.MethodPost, "/registrations/payment-status", strings.NewReader(tt.body)))

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantBody, decodeBody(t, rr))
		})
	}
}

func TestRegistrationController_Export(t *testing.T) {
	c := NewRegistrationController(testLogger, &fakeRegistrationService{}, &fakeExportService{data: []byte("PK\x03\x04xlsx")}, false)
	rr := httptest.NewRecorder()
	c.Export(rr, httptest.NewRequest(http.MethodGet, "/registrations/export", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rr.Header().Get("Content-Type"))
	assert.Regexp(t, `^attachment; filename="registrations_\d{8}\.xlsx"$`, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, "PK\x03\x04xlsx", rr.Body.String())

	c.Exporter = &fakeExportService{err: errors.New("boom")}
	rr = httptest.NewRecorder()
	c.Export(rr, httptest.NewRequest(http.MethodGet, "/registrations/export", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

// multipartRequest builds a POST with the given form fields and an optional pdf part.
func multipartRequest(t *testing.T, target string, fields map[string]string, file []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != nil {
		part, err := w.CreateFormFile("pdf", "doc.pdf")
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestDocumentController_Send(t *testing.T) {
	svc := &fakeDocumentService{}
	c := NewDocumentController(testLogger, svc, 5<<20, false)

	rr := httptest.NewRecorder()
	c.SendInvoice(rr, multipartRequest(t, "/invoices/send", map[string]string{"email": "ann@x.com", "name": "Ann"}, []byte("%PDF-1.4")))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]any{"success": true, "message": "Invoice sent successfully to ann@x.com"}, decodeBody(t, rr))
	assert.Equal(t, domain.DocumentInvoice, svc.lastKind)
	assert.Equal(t, "Ann", svc.lastReq.Name)
	require.NotNil(t, svc.lastReq.File)
	assert.Equal(t, "doc.pdf", svc.lastReq.File.Filename)

	rr = httptest.NewRecorder()
	c.SendReceipt(rr, multipartRequest(t, "/receipts/send", map[string]string{"email": "bo@x.com"}, []byte("%PDF-1.4")))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Receipt sent successfully to bo@x.com", decodeBody(t, rr)["message"])
	assert.Equal(t, domain.DocumentReceipt, svc.lastKind)
}

func TestDocumentController_NoFilePart(t *testing.T) {
	svc := &fakeDocumentService{err: domain.NewValidationError(domain.ReasonMissingFields, "Missing required fields: pdf")}
	c := NewDocumentController(testLogger, svc, 5<<20, false)

	rr := httptest.NewRecorder()
	c.SendInvoice(rr, multipartRequest(t, "/invoices/send", map[string]string{"email": "ann@x.com"}, nil))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Nil(t, svc.lastReq.File)
	assert.Equal(t, "Missing required fields: pdf", decodeBody(t, rr)["error"])

	req := httptest.NewRequest(http.MethodPost, "/invoices/send", strings.NewReader("email=ann%40x.com"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr = httptest.NewRecorder()
	c.SendInvoice(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "ann@x.com", svc.lastReq.Email)
}

func TestDocumentController_BodyTooLarge(t *testing.T) {
	svc := &fakeDocumentService{}
	c := NewDocumentController(testLogger, svc, 1024, false)

	rr := httptest.NewRecorder()
	c.SendInvoice(rr, multipartRequest(t, "/invoices/send", map[string]string{"email": "ann@x.com"}, bytes.Repeat([]byte("x"), 2<<20)))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "File upload failed: The uploaded file exceeds the server upload limit", decodeBody(t, rr)["error"])
	assert.Empty(t, svc.lastKind, "service not reached")
}

func TestDocumentController_MailFailure(t *testing.T) {
	mailErr := domain.NewMailError("auth", errors.New("535 5.7.8 bad credentials for user@x.com"))

	for _, debug := range []bool{false, true} {
		c := NewDocumentController(testLogger, &fakeDocumentService{err: mailErr}, 5<<20, debug)
		rr := httptest.NewRecorder()
		c.SendInvoice(rr, multipartRequest(t, "/invoices/send", map[string]string{"email": "ann@x.com"}, []byte("%PDF-1.4")))

		require.Equal(t, http.StatusInternalServerError, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, "Failed to send invoice. Please try again later.", body["error"])
		if debug {
			dbg := body["debug"].(map[string]any)
			assert.Contains(t, dbg["message"], "535 5.7.8")
			assert.NotEmpty(t, dbg["file"])
		} else {
			assert.NotContains(t, body, "debug")
			assert.NotContains(t, rr.Body.String(), "535")
		}
	}
}

func TestDocumentController_MethodNotAllowed(t *testing.T) {
	c := NewDocumentController(testLogger, &fakeDocumentService{}, 5<<20, false)
	rr := httptest.NewRecorder()
	c.MethodNotAllowed(rr, httptest.NewRequest(http.MethodGet, "/invoices/send", nil))

	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, map[string]any{"success": false, "error": "Invalid request method. Use POST."}, decodeBody(t, rr))
}

func TestHealth(t *testing.T) {
	rr := httptest.NewRecorder()
	Health(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]any{"success": true, "status": "ok"}, decodeBody(t, rr))
}
