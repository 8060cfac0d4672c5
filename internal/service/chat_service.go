package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/kaiva-ai/kaiva/internal/config"
	"github.com/kaiva-ai/kaiva/internal/domain"
	"go.uber.org/zap"
)

// ChatRequest is a decoded /api/chat submission
type ChatRequest struct {
	Message string
	History []domain.Message
	File    *domain.UploadedFile
}

// ChatService handles the chat-analysis flow
type ChatService struct {
	cfg       *config.Config
	extractor *Extractor
	completer Completer
	logger    *zap.Logger
}

// NewChatService creates a new chat service
func NewChatService(
	cfg *config.Config,
	extractor *Extractor,
	completer Completer,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		cfg:       cfg,
		extractor: extractor,
		completer: completer,
		logger:    logger,
	}
}

// Chat extracts any attached document, assembles the prompt and relays it
func (s *ChatService) Chat(ctx context.Context, req *ChatRequest) (*domain.ChatResponse, error) {
	if strings.TrimSpace(req.Message) == "" && req.File == nil {
		return nil, domain.ErrNothingToSend
	}

	for i, m := range req.History {
		if !m.Role.Valid() {
			return nil, fmt.Errorf("%w: history[%d] has role %q", domain.ErrInvalidRequest, i, m.Role)
		}
	}

	// Extract document text
	var extracted string
	if req.File != nil {
		if req.File.SizeBytes > domain.MaxFileBytes {
			return nil, domain.ErrFileTooLarge
		}

		var err error
		extracted, err = s.extractor.Extract(req.File)
		if err != nil {
			s.logger.Warn("File extraction failed",
				zap.String("filename", req.File.Name),
				zap.String("mime_type", req.File.MIMEType),
				zap.Error(err),
			)
			return nil, err
		}
		s.logger.Debug("File extracted",
			zap.String("filename", req.File.Name),
			zap.Int("chars", len([]rune(extracted))),
		)
	}

	messages := AssemblePrompt(SystemPrompt, req.History, req.Message, extracted)

	answer, err := s.completer.Complete(ctx, messages, domain.CompletionOptions{
		Model:           s.cfg.LLM.Model,
		Temperature:     s.cfg.LLM.Temperature,
		MaxOutputTokens: s.cfg.LLM.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	return &domain.ChatResponse{Message: answer}, nil
}
