package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/roadsight/plate-ad-service/internal/models"
	"github.com/roadsight/plate-ad-service/internal/store"
)

const (
	defaultRecentExposures = 10
	maxRecentExposures     = 100
)

// RegisterMetricRoutes registers the read-only reporting endpoint.
//
// GET /metrics?limit=N
// - readings per checkpoint, ads per campaign, recent exposures
// - limit bounds recent_exposures only, clamped to [1, 100]
func RegisterMetricRoutes(r gin.IRoutes, st *store.PostgresStore, log *zap.SugaredLogger) {
	r.GET("/metrics", func(c *gin.Context) {
		limit := clampLimit(c.Query("limit"))
		ctx := c.Request.Context()

		byCheckpoint, err := st.ReadingsByCheckpoint(ctx)
		if err != nil {
			log.Errorw("readings report failed", "err", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
			return
		}

		byCampaign, err := st.ExposuresByCampaign(ctx)
		if err != nil {
			log.Errorw("exposures report failed", "err", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
			return
		}

		recent, err := st.RecentExposures(ctx, limit)
		if err != nil {
			log.Errorw("recent exposures report failed", "err", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
			return
		}

		c.JSON(http.StatusOK, models.MetricsResponse{
			ReadingsByCheckpoint: byCheckpoint,
			AdsByCampaign:        byCampaign,
			RecentExposures:      recent,
		})
	})
}

// clampLimit parses the limit query param, defaulting and clamping to the
// server ceiling. Bad values fall back to the default rather than erroring.
func clampLimit(s string) int {
	if s == "" {
		return defaultRecentExposures
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return defaultRecentExposures
	}
	if n > maxRecentExposures {
		return maxRecentExposures
	}
	return n
}
