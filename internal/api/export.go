package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipe-remix/backend/internal/metrics"
	"github.com/pageza/recipe-remix/backend/internal/model"
	"github.com/pageza/recipe-remix/backend/internal/service"
)

// Export destinations reported to metrics
const (
	exportDownload = "download"
	exportS3       = "s3"
)

// ExportHandler turns recipes into PDF documents
type ExportHandler struct {
	exporter *service.Exporter
	metrics  *metrics.Collector
	logger   *zap.Logger
}

// NewExportHandler creates an ExportHandler
func NewExportHandler(exporter *service.Exporter, m *metrics.Collector, log *zap.Logger) *ExportHandler {
	return &ExportHandler{exporter: exporter, metrics: m, logger: log}
}

func (h *ExportHandler) RegisterRoutes(router *gin.RouterGroup) {
	export := router.Group("/export")
	{
		export.POST("", h.Download)
		export.POST("/publish", h.Publish)
	}
}

// Download renders the posted recipe and returns it as a PDF attachment
func (h *ExportHandler) Download(c *gin.Context) {
	var recipe model.Recipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.writePDF(c, recipe)
}

// Publish uploads the rendered recipe and returns a time-limited link to it
func (h *ExportHandler) Publish(c *gin.Context) {
	var recipe model.Recipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	link, err := h.exporter.Publish(c.Request.Context(), recipe)
	if errors.Is(err, service.ErrExportStorageDisabled) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	h.metrics.ObservePDFExport(exportS3, err)
	if err != nil {
		h.logger.Error("[ExportHandler] failed to publish recipe",
			zap.String("title", recipe.Title),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to publish recipe"})
		return
	}

	c.JSON(http.StatusOK, PublishResponse{URL: link})
}

func (h *ExportHandler) writePDF(c *gin.Context, recipe model.Recipe) {
	data, err := h.exporter.RenderPDF(recipe)
	h.metrics.ObservePDFExport(exportDownload, err)
	if err != nil {
		h.logger.Error("[ExportHandler] failed to render recipe",
			zap.String("title", recipe.Title),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render recipe"})
		return
	}

	c.Header("Content-Disposition", contentDisposition(service.FileName(recipe)))
	c.Data(http.StatusOK, "application/pdf", data)
}

// contentDisposition builds an attachment header carrying both an ASCII
// fallback and the RFC 5987 UTF-8 file name
func contentDisposition(name string) string {
	fallback := make([]rune, 0, len(name))
	for _, r := range name {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			r = '_'
		}
		fallback = append(fallback, r)
	}
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, string(fallback), url.PathEscape(name))
}
