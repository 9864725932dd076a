package domain

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// Sentinel errors. Every typed error below matches its sentinel via errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrUpload     = errors.New("upload failed")
	ErrStorage    = errors.New("storage failure")
	ErrMail       = errors.New("mail delivery failed")

	// ErrCorruptStore means the store file exists but does not hold a JSON array.
	ErrCorruptStore = errors.New("registrations file is not a JSON array")
)

// Validation reasons.
const (
	ReasonNoData                = "no-data"
	ReasonMissingType           = "type-missing"
	ReasonMissingEmail          = "email-missing"
	ReasonDuplicateInSubmission = "duplicate-in-submission"
	ReasonMissingFields         = "missing-fields"
	ReasonSize                  = "size"
	ReasonFileType              = "type"
	ReasonEmail                 = "email"
	ReasonSchema                = "schema"
)

// Upload reasons.
const (
	UploadMissing  = "missing"
	UploadTransfer = "transfer"
)

// ValidationError reports malformed or missing client input.
type ValidationError struct {
	Reason  string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError returns a ValidationError with the given reason and message.
func NewValidationError(reason, message string) *ValidationError {
	return &ValidationError{Reason: reason, Message: message}
}

// ConflictError lists the normalized emails that are already registered.
type ConflictError struct {
	Emails []string
}

func (e *ConflictError) Error() string {
	return "The following email(s) are already registered: " + strings.Join(e.Emails, ", ")
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// UploadError reports a transport-level upload failure.
type UploadError struct {
	Reason  string
	Message string
	Err     error
}

func (e *UploadError) Error() string { return e.Message }

func (e *UploadError) Unwrap() error { return e.Err }

func (e *UploadError) Is(target error) bool { return target == ErrUpload }

// Location is the source position at which an infrastructure error was raised.
type Location struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

func callerLocation(skip int) Location {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return Location{}
	}
	return Location{File: filepath.Base(file), Line: line}
}

// StorageError reports a local disk failure while persisting the store or an upload.
type StorageError struct {
	Op  string
	Err error
	At  Location
}

// NewStorageError wraps err and records the caller's location.
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err, At: callerLocation(1)}
}

func (e *StorageError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// MailError reports an SMTP (or provider) failure. Code is a coarse diagnosis such as
// auth, dial, tls, timeout, rate_limited, invalid_recipient, rejected or unknown.
type MailError struct {
	Code string
	Err  error
	At   Location
}

// NewMailError wraps err and records the caller's location.
func NewMailError(code string, err error) *MailError {
	return &MailError{Code: code, Err: err, At: callerLocation(1)}
}

func (e *MailError) Error() string { return fmt.Sprintf("send mail (%s): %v", e.Code, e.Err) }

func (e *MailError) Unwrap() error { return e.Err }

func (e *MailError) Is(target error) bool { return target == ErrMail }

// ErrorLocation returns the recorded location of a storage or mail error in err's chain.
func ErrorLocation(err error) (Location, bool) {
	var se *StorageError
	if errors.As(err, &se) {
		return se.At, se.At.File != ""
	}
	var me *MailError
	if errors.As(err, &me) {
		return me.At, me.At.File != ""
	}
	return Location{}, false
}
