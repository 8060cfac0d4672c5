package domain

import (
	"fmt"
	"mime"
	"strings"
)

// Accepted attachment MIME types
const (
	MIMETypeText = "text/plain"
	MIMETypePDF  = "application/pdf"
)

// MaxFileBytes is the attachment size ceiling (10 MiB)
const MaxFileBytes = 10 * 1024 * 1024

// AcceptedMIMETypes lists the types a client may attach
var AcceptedMIMETypes = []string{MIMETypeText, MIMETypePDF}

// UploadedFile is a transient attachment held until a request is sent
type UploadedFile struct {
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
	MIMEType  string `json:"mime_type"`
	Bytes     []byte `json:"-"`
}

// ValidateAttachment checks size and type before a file may become an UploadedFile
func ValidateAttachment(sizeBytes int64, mimeType string) error {
	if sizeBytes > MaxFileBytes {
		return ErrFileTooLarge
	}
	switch MediaType(mimeType) {
	case MIMETypeText, MIMETypePDF:
		return nil
	}
	return ErrUnsupportedFileType
}

// MediaType lower-cases mimeType and strips any parameters
func MediaType(mimeType string) string {
	mediaType := strings.ToLower(strings.TrimSpace(mimeType))
	if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
		return parsed
	}
	return mediaType
}

// Kind returns the short label used in user-facing prompts
func (f *UploadedFile) Kind() string {
	if MediaType(f.MIMEType) == MIMETypePDF {
		return "PDF"
	}
	return "text"
}

// AnalyzePrompt is the pending text suggested when a file is attached
func (f *UploadedFile) AnalyzePrompt() string {
	return fmt.Sprintf("Please analyze this %s document (%.1fKB): %s",
		f.Kind(), float64(f.SizeBytes)/1024, f.Name)
}
