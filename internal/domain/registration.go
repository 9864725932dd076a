package domain

import (
	"context"
	"strings"
)

// CreatedAtLayout is the textual format of a record's created_at stamp.
const CreatedAtLayout = "2006-01-02 15:04:05"

// RecordType tags the shape of a Record.
type RecordType string

const (
	RecordSingle   RecordType = "single"
	RecordMultiple RecordType = "multiple"
)

// Registrant roles inside a record.
const (
	RoleSingle     = "single"
	RolePrimary    = "primary"
	RoleAdditional = "additional"
)

// Record is one registration entry exactly as submitted. Unknown fields are kept so the
// store can write them back verbatim; only created_at and payment_status are managed
// server-side.
//
// swagger:model Record
type Record map[string]any

// Type returns the record's type tag, or "" when missing or not a string.
func (r Record) Type() RecordType {
	t, _ := r["type"].(string)
	return RecordType(t)
}

// NormalizeEmail trims and lowercases an email for comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// participant returns the JSON object stored under key, if any.
func participant(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// Registrants returns the participant objects of the record in match order:
// the record itself for single, then primary followed by each additional entry
// for multiple. Records with an unrecognized type have no registrants.
func (r Record) Registrants() []Registrant {
	switch r.Type() {
	case RecordSingle:
		return []Registrant{{Role: RoleSingle, Fields: r}}
	case RecordMultiple:
		var out []Registrant
		if p, ok := participant(r["primary"]); ok {
			out = append(out, Registrant{Role: RolePrimary, Fields: p})
		}
		if list, ok := r["additional"].([]any); ok {
			for _, a := range list {
				if m, ok := participant(a); ok {
					out = append(out, Registrant{Role: RoleAdditional, Fields: m})
				}
			}
		}
		return out
	}
	return nil
}

// Emails extracts the normalized emails of a submitted record. It fails with a
// ValidationError when the type is missing or unrecognized, or when a participant
// has no email.
func (r Record) Emails() ([]string, error) {
	switch r.Type() {
	case RecordSingle:
		email := NormalizeEmail(stringField(r, "email"))
		if email == "" {
			return nil, NewValidationError(ReasonMissingEmail, "No email provided in submission.")
		}
		return []string{email}, nil
	case RecordMultiple:
		p, _ := participant(r["primary"])
		primary := NormalizeEmail(stringField(p, "email"))
		if primary == "" {
			return nil, NewValidationError(ReasonMissingEmail, "No email provided in submission.")
		}
		emails := []string{primary}
		if raw, present := r["additional"]; present && raw != nil {
			list, ok := raw.([]any)
			if !ok {
				return nil, NewValidationError(ReasonMissingEmail, "additional must be a list of registrants.")
			}
			for _, a := range list {
				m, _ := participant(a)
				email := NormalizeEmail(stringField(m, "email"))
				if email == "" {
					return nil, NewValidationError(ReasonMissingEmail, "Every additional registrant must have an email.")
				}
				emails = append(emails, email)
			}
		}
		return emails, nil
	case "":
		return nil, NewValidationError(ReasonMissingType, "Registration type is required.")
	default:
		return nil, NewValidationError(ReasonMissingType, "Registration type must be \"single\" or \"multiple\".")
	}
}

// StoredEmails returns the normalized emails of a record already in the store,
// skipping participants without an email instead of failing.
func (r Record) StoredEmails() []string {
	var out []string
	for _, reg := range r.Registrants() {
		if e := NormalizeEmail(reg.Email()); e != "" {
			out = append(out, e)
		}
	}
	return out
}

// SetPaymentStatus sets payment_status on the first participant whose email matches
// and reports whether one did. Matching is case-insensitive and ignores surrounding
// whitespace.
func (r Record) SetPaymentStatus(email, status string) bool {
	want := NormalizeEmail(email)
	if want == "" {
		return false
	}
	for _, reg := range r.Registrants() {
		if NormalizeEmail(reg.Email()) == want {
			reg.Fields["payment_status"] = status
			return true
		}
	}
	return false
}

// Registrant is one participant of a record.
type Registrant struct {
	Role   string
	Fields map[string]any
}

// Email returns the registrant's email as stored.
func (r Registrant) Email() string { return stringField(r.Fields, "email") }

// Flatten returns the registrant's fields merged with the owning record's created_at
// and the registrant's role. For single records the type tag is dropped.
func (r Registrant) Flatten(createdAt any) map[string]any {
	out := make(map[string]any, len(r.Fields)+2)
	for k, v := range r.Fields {
		if r.Role == RoleSingle && k == "type" {
			continue
		}
		out[k] = v
	}
	if createdAt != nil {
		out["created_at"] = createdAt
	}
	out["role"] = r.Role
	return out
}

// RegistrationStore is the persistence port for registration records.
type RegistrationStore interface {
	// List returns every stored record in store order.
	List(ctx context.Context) ([]Record, error)
	// Append stamps created_at on rec and persists it after uniqueness checks.
	Append(ctx context.Context, rec Record) error
	// UpdateStatus sets payment_status on the first participant matching email.
	UpdateStatus(ctx context.Context, email, status string) error
}

// RecordValidator checks the structural shape of a submitted record.
type RecordValidator interface {
	Validate(rec Record) error
}

// RegistrationService defines the registration use cases exposed over HTTP.
type RegistrationService interface {
	List(ctx context.Context) ([]Record, error)
	Submit(ctx context.Context, rec Record) error
	Lookup(ctx context.Context, email string) (map[string]any, error)
	UpdatePaymentStatus(ctx context.Context, email, status string) error
}

// ExportService renders the store as a spreadsheet.
type ExportService interface {
	ExportXLSX(ctx context.Context) ([]byte, error)
}
