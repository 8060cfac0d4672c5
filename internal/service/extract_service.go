package service

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dslipak/pdf"
	"github.com/gabriel-vasile/mimetype"
	"github.com/kaiva-ai/kaiva/internal/domain"
)

// Extraction limits
const (
	MaxExtractedChars = 5000
	TruncationMarker  = "... (content truncated)"
)

// PDFTextFunc converts raw PDF bytes into plain text
type PDFTextFunc func(data []byte) (string, error)

// Extractor converts uploaded files into prompt-ready text
type Extractor struct {
	pdfText PDFTextFunc
}

// NewExtractor creates an extractor backed by the PDF reader
func NewExtractor() *Extractor {
	return &Extractor{pdfText: ReadPDFText}
}

// NewExtractorWithPDF creates an extractor with a custom PDF text source
func NewExtractorWithPDF(fn PDFTextFunc) *Extractor {
	return &Extractor{pdfText: fn}
}

// Extract returns normalized, bounded text for file.
// Unrecognized MIME types produce empty content and no error.
func (e *Extractor) Extract(file *domain.UploadedFile) (string, error) {
	raw, expected, err := e.RawText(file)
	if err != nil {
		return "", err
	}
	if !expected {
		return "", nil
	}

	content := Truncate(NormalizeWhitespace(raw), MaxExtractedChars)
	if content == "" {
		return "", domain.ErrNoContentExtracted
	}
	return content, nil
}

// RawText decodes file without normalization. expected is false when the
// MIME type carries no text the extractor understands.
func (e *Extractor) RawText(file *domain.UploadedFile) (text string, expected bool, err error) {
	switch ResolveMIMEType(file.MIMEType, file.Bytes) {
	case domain.MIMETypeText:
		return strings.ToValidUTF8(string(file.Bytes), string(utf8.RuneError)), true, nil
	case domain.MIMETypePDF:
		text, err := e.pdfText(file.Bytes)
		if err != nil {
			return "", true, fmt.Errorf("%w: %v", domain.ErrUnreadablePDF, err)
		}
		return text, true, nil
	default:
		return "", false, nil
	}
}

// ResolveMIMEType strips parameters from declared and sniffs the content
// when no usable type was declared.
func ResolveMIMEType(declared string, data []byte) string {
	mediaType := domain.MediaType(declared)
	if mediaType != "" && mediaType != "application/octet-stream" {
		return mediaType
	}

	detected := mimetype.Detect(data)
	switch {
	case detected.Is(domain.MIMETypePDF):
		return domain.MIMETypePDF
	case detected.Is(domain.MIMETypeText):
		return domain.MIMETypeText
	}
	return domain.MediaType(detected.String())
}

// NormalizeWhitespace trims s and collapses whitespace runs to one space
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate cuts s to limit characters and appends TruncationMarker when it does
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + TruncationMarker
}

// ReadPDFText extracts plain text from every page of a PDF
func ReadPDFText(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}
