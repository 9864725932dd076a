package domain

import "context"

// Address is a mailbox with an optional display name.
type Address struct {
	Email string `json:"email" yaml:"email"`
	Name  string `json:"name" yaml:"name"`
}

// Attachment is a file on disk sent under a display filename.
type Attachment struct {
	Path     string
	Filename string
}

// Message is a single outbound email. TextBody is derived from HTMLBody when empty.
type Message struct {
	To          Address
	Cc          []Address
	Subject     string
	HTMLBody    string
	TextBody    string
	Attachments []Attachment
}

// Mailer defines the contract for sending emails (infrastructure port).
// Implementations do not retry; failures are returned as *MailError.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// DocumentEmailData holds data for the invoice and receipt templates.
type DocumentEmailData struct {
	Name       string
	SenderName string
}

// TestEmailData holds data for the connectivity test email.
type TestEmailData struct {
	Name string
}
