package chat

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kaiva-ai/kaiva/internal/api/apiutil"
	"github.com/kaiva-ai/kaiva/internal/domain"
	"github.com/kaiva-ai/kaiva/internal/service"
	"go.uber.org/zap"
)

// ConfigResponse tells a browser client where to upload leases and what it may attach
type ConfigResponse struct {
	UploadBaseURL string   `json:"upload_base_url"`
	MaxFileBytes  int64    `json:"max_file_bytes"`
	AcceptedTypes []string `json:"accepted_types"`
}

// Handler handles chat API requests
type Handler struct {
	chatService   *service.ChatService
	uploadBaseURL string
	logger        *zap.Logger
}

// NewHandler creates a new chat handler
func NewHandler(chatService *service.ChatService, uploadBaseURL string, logger *zap.Logger) *Handler {
	return &Handler{
		chatService:   chatService,
		uploadBaseURL: uploadBaseURL,
		logger:        logger,
	}
}

// RegisterRoutes registers chat routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/config", h.GetConfig)
	r.POST("/chat", h.Chat)
}

// GetConfig returns client configuration
func (h *Handler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, ConfigResponse{
		UploadBaseURL: h.uploadBaseURL,
		MaxFileBytes:  domain.MaxFileBytes,
		AcceptedTypes: domain.AcceptedMIMETypes,
	})
}

// Chat handles a multipart chat submission
func (h *Handler) Chat(c *gin.Context) {
	req := &service.ChatRequest{
		Message: c.PostForm("message"),
	}

	if raw := c.PostForm("history"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.History); err != nil {
			apiutil.WriteError(c, fmt.Errorf("%w: history must be a JSON array of messages", domain.ErrInvalidRequest))
			return
		}
	}

	file, err := apiutil.ReadUpload(c)
	if err != nil {
		apiutil.WriteError(c, err)
		return
	}
	req.File = file

	resp, err := h.chatService.Chat(c.Request.Context(), req)
	if err != nil {
		status, _ := apiutil.Describe(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("Chat request failed", zap.Error(err))
		}
		apiutil.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
