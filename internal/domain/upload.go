package domain

import (
	"context"
	"mime/multipart"
)

// UploadConstraints bound what an upload may be and where it is stored.
type UploadConstraints struct {
	MaxBytes          int64
	AllowedExtensions []string
	TargetDirectory   string
	// Prefix is the fixed leading part of the generated filename.
	Prefix string
}

// StoredFile is an upload relocated into the managed uploads directory.
type StoredFile struct {
	Path      string
	Extension string
	Size      int64
}

// UploadValidator validates an inbound file and moves it into durable storage.
type UploadValidator interface {
	Accept(fh *multipart.FileHeader, c UploadConstraints) (*StoredFile, error)
}

// DocumentKind selects the presentation of a document email.
type DocumentKind string

const (
	DocumentInvoice DocumentKind = "invoice"
	DocumentReceipt DocumentKind = "receipt"
)

// SendDocumentRequest is the parsed form of an invoice or receipt send.
type SendDocumentRequest struct {
	Email string
	Name  string
	File  *multipart.FileHeader
}

// DocumentService emails an uploaded document to a registrant.
type DocumentService interface {
	// Send delivers the document and returns the recipient email on success.
	// The stored upload is removed on every path.
	Send(ctx context.Context, kind DocumentKind, req SendDocumentRequest) (string, error)
}
