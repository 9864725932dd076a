package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conferencereg/internal/adapters/schema"
	"conferencereg/internal/delivery/http/controllers"
	"conferencereg/internal/delivery/http/middleware"
	"conferencereg/internal/domain"
	"conferencereg/internal/repository/jsonfile"
	"conferencereg/internal/services"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

type stubDocumentService struct{}

func (stubDocumentService) Send(ctx context.Context, kind domain.DocumentKind, req domain.SendDocumentRequest) (string, error) {
	return req.Email, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := jsonfile.NewRegistrationStore(filepath.Join(t.TempDir(), "registrations.json"), testLogger)
	validator, err := schema.NewRecordValidator()
	require.NoError(t, err)
	regSvc := services.NewRegistrationService(store, validator, testLogger)
	reg := controllers.NewRegistrationController(testLogger, regSvc, services.NewExportService(regSvc, testLogger), false)
	docs := controllers.NewDocumentController(testLogger, stubDocumentService{}, 5<<20, false)
	metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "# metrics\n")
	})

	srv := httptest.NewServer(NewHandler(NewRouter(reg, docs, metricsHandler), testLogger, nil, false))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	_ = json.Unmarshal(raw, &out)
	return resp, out
}

func TestRouter_RegistrationFlow(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/registrations",
		`{"type":"multiple","primary":{"email":"Lead@x.com","name":"Lead"},"additional":[{"email":"guest@x.com","name":"Guest"}]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, "Registration saved successfully!", body["message"])
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))

	resp, body = do(t, http.MethodPost, srv.URL+"/registrations", `{"type":"single","email":" GUEST@x.com "}`)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "The following email(s) are already registered: guest@x.com", body["error"])

	resp, body = do(t, http.MethodGet, srv.URL+"/registrations/lookup?email=guest%40X.com", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	registrant := body["registrant"].(map[string]any)
	assert.Equal(t, "additional", registrant["role"])
	assert.Equal(t, "Guest", registrant["name"])
	assert.NotEmpty(t, registrant["created_at"])

	resp, body = do(t, http.MethodPost, srv.URL+"/registrations/payment-status", `{"email":"guest@x.com","status":"paid"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	resp, _ = do(t, http.MethodGet, srv.URL+"/registrations/lookup?email=guest@x.com", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/registrations", nil)
	require.NoError(t, err)
	listResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer listResp.Body.Close()
	var recs []map[string]any
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&recs))
	require.Len(t, recs, 1)
	additional := recs[0]["additional"].([]any)
	assert.Equal(t, "paid", additional[0].(map[string]any)["payment_status"])

	resp, _ = do(t, http.MethodGet, srv.URL+"/registrations/export", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "registrations_")
}

func TestRouter_Routes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"health", http.MethodGet, "/healthz", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK},
		{"empty list", http.MethodGet, "/registrations", http.StatusOK},
		{"invoice wrong method", http.MethodGet, "/invoices/send", http.StatusMethodNotAllowed},
		{"receipt wrong method", http.MethodPut, "/receipts/send", http.StatusMethodNotAllowed},
		{"preflight", http.MethodOptions, "/invoices/send", http.StatusNoContent},
		{"lookup without email", http.MethodGet, "/registrations/lookup", http.StatusBadRequest},
		{"unknown", http.MethodGet, "/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := do(t, tt.method, srv.URL+tt.path, "")
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestRouter_MethodNotAllowedBody(t *testing.T) {
	srv := newTestServer(t)
	resp, body := do(t, http.MethodGet, srv.URL+"/receipts/send", "")
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "Invalid request method. Use POST.", body["error"])
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
