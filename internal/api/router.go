package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kaiva-ai/kaiva/internal/api/chat"
	"github.com/kaiva-ai/kaiva/internal/api/lease"
	"github.com/kaiva-ai/kaiva/internal/api/middleware"
	"github.com/kaiva-ai/kaiva/internal/service"
	"go.uber.org/zap"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	AllowOrigins  []string
	UploadBaseURL string
}

// SetupRouter sets up the Gin router wrapped in CORS handling
func SetupRouter(
	chatService *service.ChatService,
	abstractService *service.AbstractService,
	cfg RouterConfig,
	logger *zap.Logger,
) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Chat API
	chatHandler := chat.NewHandler(chatService, cfg.UploadBaseURL, logger)
	chatHandler.RegisterRoutes(r.Group("/api"))

	// Lease abstract upload and download
	leaseHandler := lease.NewHandler(abstractService, logger)
	leaseHandler.RegisterRoutes(r)

	return middleware.CORS(cfg.AllowOrigins)(r)
}
