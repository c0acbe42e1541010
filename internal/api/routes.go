package api

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/hyperifyio/cotizador/internal/telemetry"
)

// setupRoutes configures all API routes.
func setupRoutes(router *gin.Engine, h *handler, m *telemetry.Metrics, limiter *rate.Limiter) {
	router.GET("/health", h.health)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	v1 := router.Group("/api/v1", rateLimitMiddleware(limiter))
	{
		v1.POST("/classify", h.classify)            // POST /api/v1/classify
		v1.POST("/classify/debug", h.classifyDebug) // POST /api/v1/classify/debug
		v1.POST("/quote", h.quote)                  // POST /api/v1/quote
		v1.GET("/quotes", h.listQuotes)             // GET /api/v1/quotes
		v1.GET("/quotes/:id", h.getQuote)           // GET /api/v1/quotes/:id
		v1.GET("/stats", h.stats)                   // GET /api/v1/stats
		v1.GET("/rules", h.rules)                   // GET /api/v1/rules
	}
}
