package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"conferencereg/internal/delivery/http/helpers"
	"conferencereg/internal/domain"
)

// maxRegistrationBody bounds a JSON registration submission.
const maxRegistrationBody = 1 << 20

// UpdatePaymentStatusRequest is the request body for POST /registrations/payment-status.
type UpdatePaymentStatusRequest struct {
	Email  string `json:"email"`
	Status string `json:"status"`
}

// Validate implements Validator.
func (r UpdatePaymentStatusRequest) Validate() []string {
	if strings.TrimSpace(r.Email) == "" || strings.TrimSpace(r.Status) == "" {
		return []string{"Missing required fields"}
	}
	return nil
}

// LookupResponse is the success body for GET /registrations/lookup (200).
type LookupResponse struct {
	Success    bool           `json:"success"`
	Registrant map[string]any `json:"registrant"`
}

type RegistrationController struct {
	Logger   *slog.Logger
	Service  domain.RegistrationService
	Exporter domain.ExportService
	Debug    bool
}

func NewRegistrationController(logger *slog.Logger, svc domain.RegistrationService, export domain.ExportService, debug bool) *RegistrationController {
	return &RegistrationController{
		Logger:   logger,
		Service:  svc,
		Exporter: export,
		Debug:    debug,
	}
}

// List godoc
// @Summary List registrations
// @Description Returns every stored registration record in store order. An empty or missing store yields [].
// @Tags registrations
// @Produce json
// @Success 200 {array} domain.Record
// @Failure 500 {object} helpers.APIResponse
// @Router /registrations [get]
func (c *RegistrationController) List(w http.ResponseWriter, r *http.Request) {
	recs, err := c.Service.List(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteError(w, err, "Failed to load registrations.", c.Debug)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, recs)
}

// Submit godoc
// @Summary Submit a registration
// @Description Stores a single or multiple registration. Emails must be unique within the submission and across the store; created_at is set by the server.
// @Tags registrations
// @Accept json
// @Produce json
// @Param registration body domain.Record true "Registration record (type single or multiple)"
// @Success 201 {object} helpers.APIResponse "message: Registration saved successfully!"
// @Failure 400 {object} helpers.APIResponse "no data, missing type or email, duplicate emails in submission"
// @Failure 409 {object} helpers.APIResponse "one or more emails already registered"
// @Failure 500 {object} helpers.APIResponse
// @Router /registrations [post]
func (c *RegistrationController) Submit(w http.ResponseWriter, r *http.Request) {
	rec, err := decodeRecord(http.MaxBytesReader(w, r.Body, maxRegistrationBody))
	if err != nil {
		helpers.WriteError(w, err, "", c.Debug)
		return
	}
	if err := c.Service.Submit(r.Context(), rec); err != nil {
		if helpers.StatusFor(err) == http.StatusInternalServerError {
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		}
		helpers.WriteError(w, err, "Failed to save registration. Please try again.", c.Debug)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, "Registration saved successfully!")
}

// decodeRecord reads a JSON object, keeping numbers verbatim. Anything that is not a
// non-empty object counts as no data.
func decodeRecord(body io.Reader) (domain.Record, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, domain.NewValidationError(domain.ReasonNoData, "Registration data is too large")
		}
		return nil, domain.NewValidationError(domain.ReasonNoData, "No data received")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var rec domain.Record
	if err := dec.Decode(&rec); err != nil || len(rec) == 0 {
		return nil, domain.NewValidationError(domain.ReasonNoData, "No data received")
	}
	return rec, nil
}

// Lookup godoc
// @Summary Look up a registrant by email
// @Description Returns the first registrant (single, primary or additional) whose email matches case-insensitively, with the record's created_at and the registrant's role.
// @Tags registrations
// @Produce json
// @Param email query string true "Registrant email"
// @Success 200 {object} controllers.LookupResponse
// @Failure 400 {object} helpers.APIResponse "email missing"
// @Failure 404 {object} helpers.APIResponse "No registration found for this email."
// @Failure 500 {object} helpers.APIResponse
// @Router /registrations/lookup [get]
func (c *RegistrationController) Lookup(w http.ResponseWriter, r *http.Request) {
	registrant, err := c.Service.Lookup(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, "No registration found for this email.")
			return
		}
		if helpers.StatusFor(err) == http.StatusInternalServerError {
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		}
		helpers.WriteError(w, err, "Failed to load registrations.", c.Debug)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, LookupResponse{Success: true, Registrant: registrant})
}

// UpdatePaymentStatus godoc
// @Summary Update a registrant's payment status
// @Description Sets payment_status on the first registrant whose email matches (single, then primary, then each additional).
// @Tags registrations
// @Accept json
// @Produce json
// @Param body body UpdatePaymentStatusRequest true "Email and new status"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "Missing required fields"
// @Failure 404 {object} helpers.APIResponse "Registration not found"
// @Failure 500 {object} helpers.APIResponse
// @Router /registrations/payment-status [post]
func (c *RegistrationController) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdatePaymentStatusRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.UpdatePaymentStatus(r.Context(), req.Email, req.Status); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, "Registration not found")
			return
		}
		if helpers.StatusFor(err) == http.StatusInternalServerError {
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		}
		helpers.WriteError(w, err, "Failed to update registration.", c.Debug)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, helpers.APIResponse{Success: true})
}

// Export godoc
// @Summary Export registrations as XLSX
// @Description One row per registrant: created_at, type, role, name, email, payment_status, then every other field sorted by name.
// @Tags registrations
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Failure 500 {object} helpers.APIResponse
// @Router /registrations/export [get]
func (c *RegistrationController) Export(w http.ResponseWriter, r *http.Request) {
	data, err := c.Exporter.ExportXLSX(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteError(w, err, "Failed to export registrations.", c.Debug)
		return
	}
	name := fmt.Sprintf("registrations_%s.xlsx", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
