package email

import (
	"errors"
	"net"
	"strings"
)

// Diagnosis codes attached to domain.MailError.
const (
	DiagAuth             = "auth"
	DiagTLS              = "tls"
	DiagDial             = "dial"
	DiagTimeout          = "timeout"
	DiagRateLimited      = "rate_limited"
	DiagInvalidRecipient = "invalid_recipient"
	DiagRejected         = "rejected"
	DiagNetwork          = "network"
	DiagMessage          = "message"
	DiagUnknown          = "unknown"
)

// DiagnoseSMTP classifies a send failure from its type and reply text.
func DiagnoseSMTP(err error) string {
	if err == nil {
		return DiagUnknown
	}
	s := strings.ToLower(err.Error())

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return DiagTimeout
	}
	if strings.Contains(s, "timeout") {
		return DiagTimeout
	}

	if strings.Contains(s, "connection refused") ||
		strings.Contains(s, "no such host") ||
		strings.Contains(s, "dial tcp") {
		return DiagDial
	}

	if strings.Contains(s, "x509:") ||
		strings.Contains(s, "tls") && (strings.Contains(s, "handshake") || strings.Contains(s, "certificate")) ||
		strings.Contains(s, "starttls") {
		return DiagTLS
	}

	if strings.Contains(s, "5.7.8") || strings.Contains(s, "535") ||
		strings.Contains(s, "username and password not accepted") ||
		strings.Contains(s, "unencrypted connection") ||
		strings.Contains(s, "auth") && strings.Contains(s, "failed") {
		return DiagAuth
	}

	if strings.Contains(s, "4.7.0") ||
		strings.Contains(s, "rate limit") ||
		strings.Contains(s, "try again later") ||
		strings.Contains(s, "451") || strings.Contains(s, "421") {
		return DiagRateLimited
	}

	if strings.Contains(s, "5.1.1") || strings.Contains(s, "user unknown") ||
		strings.Contains(s, "mailbox not found") {
		return DiagInvalidRecipient
	}

	if strings.Contains(s, "5.7.1") ||
		strings.Contains(s, "message rejected") ||
		strings.Contains(s, "policy") {
		return DiagRejected
	}

	if errors.As(err, &ne) {
		return DiagNetwork
	}
	return DiagUnknown
}
