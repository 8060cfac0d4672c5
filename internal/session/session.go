package session

import (
	"context"
	"strings"
	"sync"

	"github.com/kaiva-ai/kaiva/internal/domain"
)

// ChatClient relays one submission to the chat endpoint
type ChatClient interface {
	Chat(ctx context.Context, message string, history []domain.Message, file *domain.UploadedFile) (string, error)
}

// LeaseClient sends a lease to the abstract backend
type LeaseClient interface {
	UploadLease(ctx context.Context, file *domain.UploadedFile) (*domain.LeaseResult, error)
}

// Session holds one user's conversation, pending attachment and draft text.
// A single submission may be in flight at a time.
type Session struct {
	chat  ChatClient
	lease LeaseClient

	mu         sync.Mutex
	history    []domain.Message
	attachment *domain.UploadedFile
	draft      string
	fileError  string
	inFlight   bool
	generation uint64

	leaseBusy   bool
	leaseResult domain.LeaseResult

	listening bool
	speechGen uint64
}

// New creates an empty session
func New(chat ChatClient, lease LeaseClient) *Session {
	return &Session{chat: chat, lease: lease}
}

// Submit sends text with any pending attachment. The user turn is appended
// before the round trip; exactly one assistant turn follows it, carrying the
// reply or an "Error: " message. Empty text with no attachment is a no-op.
func (s *Session) Submit(ctx context.Context, text string) error {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return domain.ErrBusy
	}
	if strings.TrimSpace(text) == "" && s.attachment == nil {
		s.mu.Unlock()
		return domain.ErrNothingToSend
	}

	prior := make([]domain.Message, len(s.history))
	copy(prior, s.history)
	file := s.attachment
	gen := s.generation

	s.history = append(s.history, domain.Message{Role: domain.RoleUser, Content: text})
	s.inFlight = true
	s.mu.Unlock()

	reply, err := s.chat.Chat(ctx, text, prior, file)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false

	// the conversation was cleared while waiting
	if gen != s.generation {
		return err
	}

	if err != nil {
		s.history = append(s.history, domain.Message{Role: domain.RoleAssistant, Content: "Error: " + err.Error()})
		return err
	}

	if reply == "" {
		reply = domain.FallbackReply
	}
	s.history = append(s.history, domain.Message{Role: domain.RoleAssistant, Content: reply})
	s.draft = ""
	s.attachment = nil
	return nil
}

// AttachFile validates and stores file as the pending attachment. A rejected
// file sets FileError and leaves any earlier attachment in place.
func (s *Session) AttachFile(file *domain.UploadedFile) error {
	if file == nil {
		return domain.ErrNothingToSend
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := domain.ValidateAttachment(file.SizeBytes, file.MIMEType); err != nil {
		s.fileError = err.Error()
		return err
	}

	s.attachment = file
	s.fileError = ""
	s.draft = file.AnalyzePrompt()
	return nil
}

// Clear starts a new chat
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = nil
	s.attachment = nil
	s.draft = ""
	s.fileError = ""
	s.leaseResult = domain.LeaseResult{}
	s.generation++
}

// History returns a copy of the conversation
func (s *Session) History() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make([]domain.Message, len(s.history))
	copy(cp, s.history)
	return cp
}

// Attachment returns the pending attachment, if any
func (s *Session) Attachment() *domain.UploadedFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attachment
}

// FileError returns the last attachment rejection message
func (s *Session) FileError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fileError
}

// Draft returns the pending message text
func (s *Session) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// SetDraft replaces the pending message text
func (s *Session) SetDraft(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = text
}

// InFlight reports whether a submission is awaiting its reply
func (s *Session) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}
