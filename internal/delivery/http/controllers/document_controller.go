package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"conferencereg/internal/adapters/upload"
	"conferencereg/internal/delivery/http/helpers"
	"conferencereg/internal/domain"
)

const (
	// multipartMemory is how much of a form net/http keeps in memory before spilling
	// file parts to disk.
	multipartMemory = 8 << 20
	// multipartOverhead allows form fields and boundaries on top of the file ceiling.
	multipartOverhead = 1 << 20
)

type DocumentController struct {
	Logger   *slog.Logger
	Service  domain.DocumentService
	MaxBytes int64
	Debug    bool
}

func NewDocumentController(logger *slog.Logger, svc domain.DocumentService, maxBytes int64, debug bool) *DocumentController {
	return &DocumentController{
		Logger:   logger,
		Service:  svc,
		MaxBytes: maxBytes,
		Debug:    debug,
	}
}

// SendInvoice godoc
// @Summary Email an invoice to a registrant
// @Description Accepts a PDF (or configured image type), emails it to the given address with the configured CC recipients and deletes the upload afterwards.
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param email formData string true "Recipient email"
// @Param name formData string false "Recipient display name (default User)"
// @Param pdf formData file true "Invoice document"
// @Success 200 {object} helpers.APIResponse "message: Invoice sent successfully to <email>"
// @Failure 400 {object} helpers.APIResponse "missing fields, invalid email, bad size or type, failed transfer"
// @Failure 405 {object} helpers.APIResponse "Invalid request method. Use POST."
// @Failure 500 {object} helpers.APIResponse "debug block only in debug mode"
// @Router /invoices/send [post]
func (c *DocumentController) SendInvoice(w http.ResponseWriter, r *http.Request) {
	c.send(w, r, domain.DocumentInvoice)
}

// SendReceipt godoc
// @Summary Email a payment receipt to a registrant
// @Description Same pipeline as /invoices/send with receipt wording and attachment name.
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param email formData string true "Recipient email"
// @Param name formData string false "Recipient display name (default User)"
// @Param pdf formData file true "Receipt document"
// @Success 200 {object} helpers.APIResponse "message: Receipt sent successfully to <email>"
// @Failure 400 {object} helpers.APIResponse
// @Failure 405 {object} helpers.APIResponse
// @Failure 500 {object} helpers.APIResponse
// @Router /receipts/send [post]
func (c *DocumentController) SendReceipt(w http.ResponseWriter, r *http.Request) {
	c.send(w, r, domain.DocumentReceipt)
}

// MethodNotAllowed answers non-POST requests to the send endpoints.
func (c *DocumentController) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", "POST, OPTIONS")
	helpers.WriteJSONError(w, http.StatusMethodNotAllowed, "Invalid request method. Use POST.")
}

func (c *DocumentController) send(w http.ResponseWriter, r *http.Request, kind domain.DocumentKind) {
	req, err := c.parseForm(w, r)
	if err != nil {
		helpers.WriteError(w, err, "", c.Debug)
		return
	}
	to, err := c.Service.Send(r.Context(), kind, req)
	if err != nil {
		if helpers.StatusFor(err) == http.StatusInternalServerError {
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "kind", kind, "err", err)
		}
		helpers.WriteError(w, err, fmt.Sprintf("Failed to send %s. Please try again later.", kind), c.Debug)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, fmt.Sprintf("%s sent successfully to %s", documentTitle(kind), to))
}

// parseForm reads email, name and the pdf part. A non-multipart body yields a request
// without a file so the pipeline reports the missing fields.
func (c *DocumentController) parseForm(w http.ResponseWriter, r *http.Request) (domain.SendDocumentRequest, error) {
	if c.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, 2*c.MaxBytes+multipartOverhead)
	}
	err := r.ParseMultipartForm(multipartMemory)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return domain.SendDocumentRequest{}, upload.TransferError(err)
	}
	req := domain.SendDocumentRequest{
		Email: r.FormValue("email"),
		Name:  r.FormValue("name"),
	}
	if r.MultipartForm != nil {
		if files := r.MultipartForm.File["pdf"]; len(files) > 0 {
			req.File = files[0]
		}
	}
	return req, nil
}

func documentTitle(kind domain.DocumentKind) string {
	s := string(kind)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
