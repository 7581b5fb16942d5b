package health

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	version   string
	startedAt time.Time
}

func NewHandler(version string) *Handler {
	return &Handler{version: version, startedAt: time.Now()}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/health", h.Health)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
		"uptime":  time.Since(h.startedAt).String(),
	})
}
