package lease

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kaiva-ai/kaiva/internal/api/apiutil"
	"github.com/kaiva-ai/kaiva/internal/domain"
	"github.com/kaiva-ai/kaiva/internal/service"
	"go.uber.org/zap"
)

// Handler handles lease abstract requests
type Handler struct {
	abstractService *service.AbstractService
	logger          *zap.Logger
}

// NewHandler creates a new lease handler
func NewHandler(abstractService *service.AbstractService, logger *zap.Logger) *Handler {
	return &Handler{
		abstractService: abstractService,
		logger:          logger,
	}
}

// RegisterRoutes registers lease routes
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/upload", h.Upload)
	r.GET("/download/:filename", h.Download)
}

// Upload generates an abstract from the uploaded lease
func (h *Handler) Upload(c *gin.Context) {
	file, err := apiutil.ReadUpload(c)
	if err != nil {
		apiutil.WriteError(c, err)
		return
	}
	if file == nil {
		c.JSON(http.StatusBadRequest, domain.UploadResponse{Error: "file is required"})
		return
	}

	abstract, err := h.abstractService.Generate(c.Request.Context(), file)
	if err != nil {
		status, message := apiutil.Describe(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("Lease abstract failed", zap.String("filename", file.Name), zap.Error(err))
		}
		c.JSON(status, domain.UploadResponse{Error: message})
		return
	}

	c.JSON(http.StatusOK, domain.UploadResponse{DownloadURL: service.DownloadPath(abstract.Filename)})
}

// Download streams a stored abstract workbook
func (h *Handler) Download(c *gin.Context) {
	filename := c.Param("filename")

	abstract, err := h.abstractService.Get(c.Request.Context(), filename)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			h.logger.Error("Abstract lookup failed", zap.String("filename", filename), zap.Error(err))
		}
		apiutil.WriteError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+abstract.Filename+`"`)
	c.Data(http.StatusOK, domain.XLSXContentType, abstract.Content)
}
