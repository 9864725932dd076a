package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"conferencereg/internal/delivery/http/controllers"
	"conferencereg/internal/delivery/http/middleware"
)

// NewRouter initializes the HTTP router with all application routes.
// metricsHandler serves /metrics when non-nil.
func NewRouter(registrations *controllers.RegistrationController, documents *controllers.DocumentController, metricsHandler http.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	// Registrations
	mux.HandleFunc("GET /registrations", registrations.List)
	mux.HandleFunc("POST /registrations", registrations.Submit)
	mux.HandleFunc("GET /registrations/lookup", registrations.Lookup)
	mux.HandleFunc("GET /registrations/export", registrations.Export)
	mux.HandleFunc("POST /registrations/payment-status", registrations.UpdatePaymentStatus)

	// Documents
	mux.HandleFunc("POST /invoices/send", documents.SendInvoice)
	mux.HandleFunc("/invoices/send", documents.MethodNotAllowed)
	mux.HandleFunc("POST /receipts/send", documents.SendReceipt)
	mux.HandleFunc("/receipts/send", documents.MethodNotAllowed)

	// Ops
	mux.HandleFunc("GET /healthz", controllers.Health)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// NewHandler wraps the router in the middleware chain, outermost first: request ID,
// access log, metrics, CORS, panic recovery.
func NewHandler(mux http.Handler, logger *slog.Logger, allowedOrigins []string, debug bool) http.Handler {
	var h http.Handler = mux
	h = middleware.Recover(logger, debug, h)
	h = middleware.CORS(allowedOrigins, h)
	h = middleware.Metrics(h)
	h = middleware.LoggingMiddleware(logger, h)
	return middleware.RequestID(h)
}
