package helpers

import (
	"encoding/json"
	"errors"
	"net/http"

	"conferencereg/internal/domain"
)

// DebugInfo is attached to error responses only when debug mode is on.
// swagger:model DebugInfo
type DebugInfo struct {
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

// APIResponse is the envelope for every non-list response.
// On success: Success is true and Message may be set. On error: Error is set.
// swagger:model APIResponse
type APIResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	Error   string     `json:"error,omitempty"`
	Debug   *DebugInfo `json:"debug,omitempty"`
}

// WriteJSON sets Content-Type to application/json, writes statusCode and encodes v.
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(statusCode)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// WriteJSONSuccess writes {success:true, message}.
func WriteJSONSuccess(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, APIResponse{Success: true, Message: message})
}

// WriteJSONError writes {success:false, error}.
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, APIResponse{Success: false, Error: message})
}

// StatusFor maps an error from the domain taxonomy to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrUpload):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// WriteError translates err into a JSON error response. Client errors carry their own
// message. Everything else is reported as internalMessage, with the underlying error
// and its source location added only when debug is true.
func WriteError(w http.ResponseWriter, err error, internalMessage string, debug bool) {
	status := StatusFor(err)
	if status != http.StatusInternalServerError {
		WriteJSONError(w, status, err.Error())
		return
	}
	resp := APIResponse{Success: false, Error: internalMessage}
	if debug {
		resp.Debug = &DebugInfo{Message: err.Error()}
		if loc, ok := domain.ErrorLocation(err); ok {
			resp.Debug.File = loc.File
			resp.Debug.Line = loc.Line
		}
	}
	WriteJSON(w, status, resp)
}
