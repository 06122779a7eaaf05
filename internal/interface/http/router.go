package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/faq-chatbot/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.CORS.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		faqGroup := api.Group("/faq")
		faqGroup.POST("/ask", handler.Ask)
		faqGroup.POST("/turns/:turnId/feedback", handler.Feedback)
		faqGroup.POST("/turns/:turnId/escalate", handler.Escalate)
		faqGroup.GET("/trending", handler.Trending)

		api.POST("/admin/login", handler.Login)
		admin := api.Group("/admin", authMiddleware(handler.authSvc))
		admin.POST("/reload", handler.Reload)
		admin.GET("/stats", handler.Stats)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, handler.logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
