package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/kaiva-ai/kaiva/internal/domain"
)

// Client talks to the chat endpoint and the lease backend
type Client struct {
	baseURL       string
	uploadBaseURL string
	httpClient    *http.Client
}

// New creates a client. baseURL serves /api/chat, uploadBaseURL serves /upload.
func New(baseURL, uploadBaseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		uploadBaseURL: strings.TrimRight(uploadBaseURL, "/"),
		httpClient:    httpClient,
	}
}

// Chat posts message, the prior history and an optional file to /api/chat
func (c *Client) Chat(ctx context.Context, message string, history []domain.Message, file *domain.UploadedFile) (string, error) {
	if history == nil {
		history = []domain.Message{}
	}
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return "", fmt.Errorf("failed to encode history: %w", err)
	}

	body, contentType, err := encodeForm(map[string]string{
		"message": message,
		"history": string(historyJSON),
	}, file)
	if err != nil {
		return "", err
	}

	resp, err := c.post(ctx, c.baseURL+"/api/chat", body, contentType)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e domain.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err == nil && e.Error != "" {
			return "", errors.New(e.Error)
		}
		return "", fmt.Errorf("Server error: %d", resp.StatusCode)
	}

	var out domain.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("invalid chat response: %w", err)
	}
	if out.Message == "" {
		return domain.FallbackReply, nil
	}
	return out.Message, nil
}

// UploadLease posts file to the lease backend. A backend-reported failure is
// returned in LeaseResult.Error verbatim; err is reserved for transport failures.
func (c *Client) UploadLease(ctx context.Context, file *domain.UploadedFile) (*domain.LeaseResult, error) {
	body, contentType, err := encodeForm(nil, file)
	if err != nil {
		return nil, err
	}

	resp, err := c.post(ctx, c.uploadBaseURL+"/upload", body, contentType)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out domain.UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("invalid upload response (status %d): %w", resp.StatusCode, err)
	}

	switch {
	case out.DownloadURL != "":
		return &domain.LeaseResult{DownloadURL: c.absolute(out.DownloadURL)}, nil
	case out.Error != "":
		return &domain.LeaseResult{Error: out.Error}, nil
	default:
		return nil, fmt.Errorf("unexpected upload response (status %d)", resp.StatusCode)
	}
}

func (c *Client) absolute(link string) string {
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	if !strings.HasPrefix(link, "/") {
		link = "/" + link
	}
	return c.uploadBaseURL + link
}

func (c *Client) post(ctx context.Context, url string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	return c.httpClient.Do(req)
}

func encodeForm(fields map[string]string, file *domain.UploadedFile) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}

	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Name))
		h.Set("Content-Type", file.MIMEType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(file.Bytes); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
