// Package metrics holds the service's Prometheus collectors. They live in a standalone
// package so services and HTTP middleware can share them without import cycles.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Result label values.
const (
	ResultOK       = "ok"
	ResultInvalid  = "invalid"
	ResultConflict = "conflict"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

var (
	RegistrationsSubmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "registrations_submitted_total",
		Help: "Registration submissions by outcome",
	}, []string{"result"})

	PaymentStatusUpdates = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_status_updates_total",
		Help: "Payment status updates by outcome",
	}, []string{"result"})

	DocumentsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "documents_sent_total",
		Help: "Invoice and receipt emails by kind and outcome",
	}, []string{"kind", "result"})

	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method and status code",
	}, []string{"method", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
)

// Register registers every collector on the given registry (or default if nil).
// Collectors already registered are left in place.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{
		RegistrationsSubmitted,
		PaymentStatusUpdates,
		DocumentsSent,
		HTTPRequests,
		HTTPRequestDuration,
	} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
