package service

import (
	"bytes"
	"context"
	"errors"

	"github.com/kaiva-ai/kaiva/internal/config"
	"github.com/kaiva-ai/kaiva/internal/domain"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
)

// Completer relays an ordered message list to a chat-completion API
type Completer interface {
	Complete(ctx context.Context, messages []domain.Message, opts domain.CompletionOptions) (string, error)
}

// CompletionService calls an OpenAI-compatible chat-completion endpoint
type CompletionService struct {
	client     openai.Client
	configured bool
	logger     *zap.Logger
}

// NewCompletionService creates a completion relay from LLM configuration
func NewCompletionService(cfg *config.Config, logger *zap.Logger) *CompletionService {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.LLM.APIKey),
		// exactly one attempt per request
		option.WithMaxRetries(0),
	}
	if cfg.LLM.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.LLM.BaseURL))
	}

	return &CompletionService{
		client:     openai.NewClient(opts...),
		configured: cfg.HasCredential(),
		logger:     logger,
	}
}

// Configured reports whether a credential is available
func (s *CompletionService) Configured() bool {
	return s.configured
}

// Complete sends messages and returns the first choice's text
func (s *CompletionService) Complete(ctx context.Context, messages []domain.Message, opts domain.CompletionOptions) (string, error) {
	if !s.configured {
		return "", domain.ErrUnconfigured
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(opts.Model),
		Messages:    toCompletionMessages(messages),
		Temperature: openai.Float(opts.Temperature),
	}
	if opts.MaxOutputTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxOutputTokens))
	}

	completion, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		s.logger.Error("Chat completion failed", zap.String("model", opts.Model), zap.Error(err))
		return "", upstreamError(err)
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		s.logger.Warn("Chat completion returned no content", zap.String("model", opts.Model))
		return domain.FallbackReply, nil
	}

	return completion.Choices[0].Message.Content, nil
}

func toCompletionMessages(messages []domain.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case domain.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case domain.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

func upstreamError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		detail := apiErr.Message
		if detail == "" {
			detail = responseBody(apiErr)
		}
		if detail == "" {
			detail = apiErr.Error()
		}
		return &domain.UpstreamError{StatusCode: apiErr.StatusCode, Detail: detail}
	}
	return &domain.UpstreamError{Detail: err.Error()}
}

// responseBody returns the raw error body for upstreams that do not reply
// with a JSON error object
func responseBody(apiErr *openai.Error) string {
	if apiErr.Response == nil {
		return ""
	}
	dump := apiErr.DumpResponse(true)
	if i := bytes.Index(dump, []byte("\r\n\r\n")); i >= 0 {
		return string(bytes.TrimSpace(dump[i+4:]))
	}
	return ""
}
