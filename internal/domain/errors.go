package domain

import "errors"

var (
	// ErrFileTooLarge indicates an attachment over MaxFileBytes
	ErrFileTooLarge = errors.New("File size must be less than 10MB")
	// ErrUnsupportedFileType indicates an attachment that is neither PDF nor text
	ErrUnsupportedFileType = errors.New("Please upload a PDF or TXT file")

	// ErrUnreadablePDF indicates a malformed or password-protected PDF
	ErrUnreadablePDF = errors.New("Could not read the PDF. It may be corrupted or password protected.")
	// ErrNoContentExtracted indicates a PDF or text file with no usable text
	ErrNoContentExtracted = errors.New("No text content could be extracted from the file.")

	// ErrUnconfigured indicates no completion credential is set
	ErrUnconfigured = errors.New("OpenAI API key is not configured")

	// ErrAbstractUnparseable indicates a completion that is not valid JSON
	ErrAbstractUnparseable = errors.New("Could not parse GPT response into dictionary")
	// ErrAbstractFormat indicates a completion that parsed but is not an object
	ErrAbstractFormat = errors.New("GPT response is not in the correct format")

	// ErrNotFound indicates resource not found
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidRequest indicates invalid request
	ErrInvalidRequest = errors.New("invalid request")
	// ErrBusy indicates a submission while another is in flight
	ErrBusy = errors.New("a request is already in flight")
	// ErrNothingToSend indicates an empty message with no attachment
	ErrNothingToSend = errors.New("message or file is required")
)

// UpstreamError carries a failed completion call's detail verbatim
type UpstreamError struct {
	StatusCode int
	Detail     string
}

func (e *UpstreamError) Error() string {
	return "OpenAI API error: " + e.Detail
}

// IsValidation reports whether err is an attachment validation failure
func IsValidation(err error) bool {
	return errors.Is(err, ErrFileTooLarge) || errors.Is(err, ErrUnsupportedFileType)
}

// IsExtraction reports whether err is a text extraction failure
func IsExtraction(err error) bool {
	return errors.Is(err, ErrUnreadablePDF) || errors.Is(err, ErrNoContentExtracted)
}
