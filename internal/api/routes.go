package api

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/chartcrime/chartcrime-go/internal/models"
)

// Handler serves the selection artifact produced by the batch run. The
// surface is read-only; the batch job is the only writer.
type Handler struct {
	outputPath string
	logger     *logrus.Logger
}

func NewHandler(outputPath string, logger *logrus.Logger) *Handler {
	return &Handler{outputPath: outputPath, logger: logger}
}

// SetupRoutes registers the HTTP surface.
func SetupRoutes(router *gin.Engine, h *Handler) {
	router.GET("/health", h.healthCheck)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/selection", h.getSelection)
	}
}

func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

// getSelection returns the latest published selection, or 404 until the
// first run of the day has published one.
func (h *Handler) getSelection(c *gin.Context) {
	data, err := os.ReadFile(h.outputPath)
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no selection published yet"})
			return
		}
		h.logger.WithError(err).Error("Failed to read selection artifact")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read selection"})
		return
	}

	var payload models.SelectionPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		h.logger.WithError(err).Error("Selection artifact is corrupt")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "selection artifact is corrupt"})
		return
	}

	c.JSON(http.StatusOK, payload)
}
