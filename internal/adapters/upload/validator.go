// Package upload validates multipart file uploads and moves them into the managed
// uploads directory.
package upload

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"syscall"

	"conferencereg/internal/domain"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
	sniffLen = 512
)

// mimeToExt maps detected content types to canonical extensions.
var mimeToExt = map[string]string{
	"application/pdf": "pdf",
	"image/png":       "png",
	"image/jpeg":      "jpg",
	"image/jpg":       "jpg",
}

// NormalizeExt lowercases and trims the dot from a file extension. "jpeg" folds into "jpg".
func NormalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if ext == "jpeg" {
		return "jpg"
	}
	return ext
}

type validator struct{}

// NewValidator returns the filesystem-backed UploadValidator.
func NewValidator() domain.UploadValidator {
	return &validator{}
}

// Accept validates fh against c and moves it to c.TargetDirectory under a random name.
func (v *validator) Accept(fh *multipart.FileHeader, c domain.UploadConstraints) (*domain.StoredFile, error) {
	if fh == nil {
		return nil, &domain.UploadError{Reason: domain.UploadMissing, Message: "No file received in the request"}
	}
	if fh.Size <= 0 || fh.Size > c.MaxBytes {
		return nil, domain.NewValidationError(domain.ReasonSize,
			fmt.Sprintf("File size must be between 1 byte and %s MB", formatMB(c.MaxBytes)))
	}

	src, err := fh.Open()
	if err != nil {
		return nil, TransferError(err)
	}
	defer src.Close()

	ext, err := detectExtension(src, c.AllowedExtensions)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(c.TargetDirectory, dirPerm); err != nil {
		return nil, domain.NewStorageError("create upload directory", err)
	}
	name, err := randomName(c.Prefix, ext)
	if err != nil {
		return nil, domain.NewStorageError("generate upload name", err)
	}
	target := filepath.Join(c.TargetDirectory, name)

	if err := relocate(src, target); err != nil {
		return nil, domain.NewStorageError("save uploaded file", err)
	}
	if err := os.Chmod(target, filePerm); err != nil {
		_ = os.Remove(target)
		return nil, domain.NewStorageError("chmod uploaded file", err)
	}
	return &domain.StoredFile{Path: target, Extension: ext, Size: fh.Size}, nil
}

// detectExtension sniffs the leading bytes of src and rewinds it.
func detectExtension(src multipart.File, allowed []string) (string, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", TransferError(err)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", TransferError(err)
	}

	mime := http.DetectContentType(head[:n])
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	ext, ok := mimeToExt[mime]
	normalized := make([]string, 0, len(allowed))
	for _, a := range allowed {
		normalized = append(normalized, NormalizeExt(a))
	}
	if !ok || !slices.Contains(normalized, ext) {
		return "", domain.NewValidationError(domain.ReasonFileType,
			fmt.Sprintf("Invalid file type. Allowed types: %s", strings.Join(allowed, ", ")))
	}
	return ext, nil
}

// relocate moves an on-disk multipart part into place, falling back to a copy when the
// part is held in memory or lives on another filesystem. The source is consumed.
func relocate(src multipart.File, target string) error {
	if f, ok := src.(*os.File); ok {
		if err := os.Rename(f.Name(), target); err == nil {
			return nil
		}
	}
	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(target)
		return err
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(target)
		return err
	}
	if f, ok := src.(*os.File); ok {
		_ = os.Remove(f.Name())
	}
	return nil
}

// randomName returns prefix_<16 hex digits>.ext.
func randomName(prefix, ext string) (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	if prefix == "" {
		prefix = "upload"
	}
	return fmt.Sprintf("%s_%s.%s", prefix, hex.EncodeToString(b), ext), nil
}

// formatMB renders a byte count in MB rounded to one decimal, without a trailing ".0".
func formatMB(b int64) string {
	mb := math.Round(float64(b)/(1024*1024)*10) / 10
	return strconv.FormatFloat(mb, 'f', -1, 64)
}

// TransferError maps a failed multipart transfer to an UploadError with a readable reason.
func TransferError(err error) *domain.UploadError {
	var maxBytes *http.MaxBytesError
	var reason string
	switch {
	case errors.As(err, &maxBytes), errors.Is(err, multipart.ErrMessageTooLarge):
		reason = "The uploaded file exceeds the server upload limit"
	case errors.Is(err, io.ErrUnexpectedEOF):
		reason = "The uploaded file was only partially uploaded"
	case errors.Is(err, os.ErrNotExist):
		reason = "Missing a temporary folder"
	case errors.Is(err, syscall.ENOSPC), errors.Is(err, os.ErrPermission):
		reason = "Failed to write file to disk"
	default:
		reason = "Unknown file upload error"
	}
	return &domain.UploadError{
		Reason:  domain.UploadTransfer,
		Message: "File upload failed: " + reason,
		Err:     err,
	}
}
