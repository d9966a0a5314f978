// Package httpserver wires the gin router.
package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roadsight/plate-ad-service/internal/auth"
	"github.com/roadsight/plate-ad-service/internal/config"
	"github.com/roadsight/plate-ad-service/internal/engine"
	"github.com/roadsight/plate-ad-service/internal/handlers"
	"github.com/roadsight/plate-ad-service/internal/store"
)

// NewRouter wires public endpoints and the (optionally key-gated) API.
// Public: /health, /ready
// Gated: /readings, /metrics
func NewRouter(cfg config.Config, st *store.PostgresStore, eng *engine.Engine, log *zap.SugaredLogger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))

	// Liveness: confirms the process is running.
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Readiness: confirms the DB dependency is reachable.
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		if err := st.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	api := r.Group("/")
	api.Use(auth.APIKeyMiddleware(cfg.APIKeys))

	handlers.RegisterReadingRoutes(api, st, eng, log)
	handlers.RegisterMetricRoutes(api, st, log)

	return r
}

// requestLogger tags every request with an id and logs its outcome.
// The incoming X-Request-ID is honored so gateway-assigned ids survive.
func requestLogger(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header("X-Request-ID", reqID)

		start := time.Now()
		c.Next()

		log.Infow("request",
			"request_id", reqID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
