package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"conferencereg/internal/delivery/http/helpers"
)

// Recover converts a panic into a generic 500 JSON response. The panic value and stack
// are always logged; they reach the client only when debug is true.
func Recover(logger *slog.Logger, debugMode bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			stack := string(debug.Stack())
			logger.ErrorContext(r.Context(), "panic recovered",
				"path", r.URL.Path,
				"method", r.Method,
				"panic", fmt.Sprint(rec),
				"stack", stack,
			)
			resp := helpers.APIResponse{Success: false, Error: "An unexpected error occurred"}
			if debugMode {
				resp.Debug = &helpers.DebugInfo{Message: fmt.Sprint(rec), Stack: stack}
			}
			helpers.WriteJSON(w, http.StatusInternalServerError, resp)
		}()
		next.ServeHTTP(w, r)
	})
}
