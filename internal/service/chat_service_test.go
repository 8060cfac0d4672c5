package service

import (
	"context"
	"errors"
	"testing"

	"github.com/kaiva-ai/kaiva/internal/domain"
	"go.uber.org/zap"
)

// stubCompleter records the last call and returns a canned reply
type stubCompleter struct {
	reply    string
	err      error
	calls    int
	messages []domain.Message
	opts     domain.CompletionOptions
}

func (s *stubCompleter) Complete(ctx context.Context, messages []domain.Message, opts domain.CompletionOptions) (string, error) {
	s.calls++
	s.messages = messages
	s.opts = opts
	return s.reply, s.err
}

func TestChatService_SummarizeLease(t *testing.T) {
	completer := &stubCompleter{reply: "**Rent:** $5000/mo"}
	svc := NewChatService(testConfig("", "sk-test"), NewExtractor(), completer, zap.NewNop())

	lease := "Rent: $5000/mo, Term: 5 years"
	resp, err := svc.Chat(context.Background(), &ChatRequest{
		Message: "Summarize this lease",
		File:    textFile(lease),
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if resp.Message != "**Rent:** $5000/mo" {
		t.Errorf("Message = %q", resp.Message)
	}

	if len(completer.messages) != 2 {
		t.Fatalf("sent %d messages, want 2", len(completer.messages))
	}
	if completer.messages[0].Content != SystemPrompt {
		t.Error("first message is not the system prompt")
	}
	want := "Summarize this lease\n\nDocument content:\nRent: $5000/mo, Term: 5 years"
	if got := completer.messages[1].Content; got != want {
		t.Errorf("user message = %q, want %q", got, want)
	}
	if completer.opts != chatOptions {
		t.Errorf("options = %+v, want %+v", completer.opts, chatOptions)
	}
}

func TestChatService_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     *ChatRequest
		wantErr error
	}{
		{
			name:    "empty message without file",
			req:     &ChatRequest{Message: "   "},
			wantErr: domain.ErrNothingToSend,
		},
		{
			name: "oversized file",
			req: &ChatRequest{Message: "hi", File: &domain.UploadedFile{
				Name: "big.txt", SizeBytes: domain.MaxFileBytes + 1, MIMEType: domain.MIMETypeText,
			}},
			wantErr: domain.ErrFileTooLarge,
		},
		{
			name:    "blank text file",
			req:     &ChatRequest{Message: "hi", File: textFile("\n\n")},
			wantErr: domain.ErrNoContentExtracted,
		},
		{
			name: "unknown history role",
			req: &ChatRequest{Message: "hi", History: []domain.Message{
				{Role: "tool", Content: "x"},
			}},
			wantErr: domain.ErrInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &stubCompleter{reply: "unused"}
			svc := NewChatService(testConfig("", "sk-test"), NewExtractor(), completer, zap.NewNop())

			_, err := svc.Chat(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Chat() error = %v, want %v", err, tt.wantErr)
			}
			if completer.calls != 0 {
				t.Errorf("completer called %d times, want 0", completer.calls)
			}
		})
	}
}

func TestChatService_FileOnly(t *testing.T) {
	completer := &stubCompleter{reply: "ok"}
	svc := NewChatService(testConfig("", "sk-test"), NewExtractor(), completer, zap.NewNop())

	if _, err := svc.Chat(context.Background(), &ChatRequest{File: textFile("Term: 5 years")}); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if got := completer.messages[1].Content; got != "\n\nDocument content:\nTerm: 5 years" {
		t.Errorf("user message = %q", got)
	}
}

func TestChatService_PropagatesUpstreamError(t *testing.T) {
	completer := &stubCompleter{err: &domain.UpstreamError{StatusCode: 500, Detail: "boom"}}
	svc := NewChatService(testConfig("", "sk-test"), NewExtractor(), completer, zap.NewNop())

	_, err := svc.Chat(context.Background(), &ChatRequest{Message: "hi"})
	var upErr *domain.UpstreamError
	if !errors.As(err, &upErr) || upErr.Detail != "boom" {
		t.Errorf("Chat() error = %v, want upstream boom", err)
	}
}
