package apiutil

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kaiva-ai/kaiva/internal/domain"
)

// WriteError renders err as { "error": string } with a matching status
func WriteError(c *gin.Context, err error) {
	status, message := Describe(err)
	c.JSON(status, domain.ErrorResponse{Error: message})
}

// Describe maps an error to an HTTP status and a user-facing message
func Describe(err error) (int, string) {
	var upErr *domain.UpstreamError

	switch {
	case errors.Is(err, domain.ErrUnreadablePDF):
		return http.StatusBadRequest, domain.ErrUnreadablePDF.Error()
	case errors.Is(err, domain.ErrNoContentExtracted):
		return http.StatusBadRequest, domain.ErrNoContentExtracted.Error()
	case domain.IsValidation(err),
		errors.Is(err, domain.ErrNothingToSend),
		errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "file not found"
	case errors.Is(err, domain.ErrUnconfigured),
		errors.Is(err, domain.ErrAbstractUnparseable),
		errors.Is(err, domain.ErrAbstractFormat),
		errors.As(err, &upErr):
		return http.StatusInternalServerError, err.Error()
	default:
		return http.StatusInternalServerError, "Failed to process request: " + err.Error()
	}
}

// ReadUpload reads the multipart "file" field. It returns nil, nil when
// the field is absent.
func ReadUpload(c *gin.Context) (*domain.UploadedFile, error) {
	header, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}

	if header.Size > domain.MaxFileBytes {
		return nil, domain.ErrFileTooLarge
	}

	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, domain.MaxFileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	return &domain.UploadedFile{
		Name:      header.Filename,
		SizeBytes: int64(len(data)),
		MIMEType:  header.Header.Get("Content-Type"),
		Bytes:     data,
	}, nil
}
