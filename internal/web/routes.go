package web

import (
	"github.com/PizzaHomicide/rotv/internal/metrics"
	"github.com/gin-gonic/gin"
)

// SetupPageRoutes registers the browser UI
func SetupPageRoutes(r *gin.RouterGroup, h *Handler) {
	r.GET("/", h.Index)
	r.POST("/select", h.Select)
	r.POST("/back", h.Back)
}

// SetupAPIRoutes registers the JSON API
func SetupAPIRoutes(r *gin.RouterGroup, h *Handler) {
	r.GET("/channels", h.Channels)
	r.GET("/stream", h.Stream)
}

// SetupOpsRoutes registers health and metrics endpoints
func SetupOpsRoutes(r *gin.RouterGroup) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
}
