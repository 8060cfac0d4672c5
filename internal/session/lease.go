package session

import (
	"context"

	"github.com/kaiva-ai/kaiva/internal/domain"
)

// LeaseFailurePrefix starts the message shown when the lease backend is unreachable
const LeaseFailurePrefix = "Failed to process the lease: "

// UploadLease sends file to the lease backend and records the outcome.
// Backend errors are surfaced verbatim; transport failures are also logged
// into the conversation.
func (s *Session) UploadLease(ctx context.Context, file *domain.UploadedFile) (domain.LeaseResult, error) {
	if file == nil {
		return domain.LeaseResult{}, domain.ErrNothingToSend
	}

	s.mu.Lock()
	if err := domain.ValidateAttachment(file.SizeBytes, file.MIMEType); err != nil {
		s.leaseResult = domain.LeaseResult{Error: err.Error()}
		s.mu.Unlock()
		return s.LeaseResult(), err
	}
	if s.leaseBusy {
		s.mu.Unlock()
		return domain.LeaseResult{}, domain.ErrBusy
	}
	s.leaseBusy = true
	s.leaseResult = domain.LeaseResult{}
	gen := s.generation
	s.mu.Unlock()

	res, err := s.lease.UploadLease(ctx, file)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaseBusy = false

	if err != nil {
		message := LeaseFailurePrefix + err.Error()
		s.leaseResult = domain.LeaseResult{Error: message}
		if gen == s.generation {
			s.history = append(s.history, domain.Message{Role: domain.RoleAssistant, Content: message})
		}
		return s.leaseResult, err
	}

	s.leaseResult = *res
	return s.leaseResult, nil
}

// LeaseResult returns the outcome of the last lease upload
func (s *Session) LeaseResult() domain.LeaseResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leaseResult
}
