package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/roadsight/plate-ad-service/internal/engine"
	"github.com/roadsight/plate-ad-service/internal/models"
	"github.com/roadsight/plate-ad-service/internal/store"
	"github.com/roadsight/plate-ad-service/internal/validate"
)

// RegisterReadingRoutes registers the ingestion-path endpoint.
//
// POST /readings
//   - validates the payload (field-named errors)
//   - persists the reading durably; a repeated reading_id is 409
//   - asks the engine for an eligible campaign; ad_served is null when
//     nothing matched or every matching campaign's cap is reached
func RegisterReadingRoutes(r gin.IRoutes, st *store.PostgresStore, eng *engine.Engine, log *zap.SugaredLogger) {
	r.POST("/readings", func(c *gin.Context) {
		var raw map[string]any
		if err := c.ShouldBindJSON(&raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
			return
		}

		reading, ferr := validate.Reading(raw)
		if ferr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": ferr.Message})
			return
		}

		if err := st.InsertReading(c.Request.Context(), reading); err != nil {
			if errors.Is(err, store.ErrDuplicateReading) {
				c.JSON(http.StatusConflict, gin.H{"error": "duplicate reading_id"})
				return
			}
			log.Errorw("reading insert failed", "reading_id", reading.ReadingID, "err", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
			return
		}

		// The reading is durable from here on. If exposure recording fails
		// it stays stored, and the failure is reported honestly rather than
		// returned as a fabricated ad_served:null success.
		exp, err := eng.Serve(c.Request.Context(), reading)
		if err != nil {
			serveFault(c, log, reading.ReadingID, err)
			return
		}

		resp := models.ReadingResponse{ReadingID: reading.ReadingID, Processed: true}
		if exp != nil {
			resp.AdServed = &models.AdServed{CampaignID: exp.CampaignID, AdContent: exp.AdContent}
		}

		c.JSON(http.StatusOK, resp)
	})
}

// serveFault maps engine failures onto the response taxonomy. Raw driver
// detail goes to the log, never into the body.
func serveFault(c *gin.Context, log *zap.SugaredLogger, readingID string, err error) {
	switch {
	case errors.Is(err, store.ErrDuplicateReading):
		// An exposure already references this reading; another request got
		// there first.
		c.JSON(http.StatusConflict, gin.H{"error": "reading already processed"})
	case errors.Is(err, store.ErrReadingMissing):
		log.Errorw("exposure referenced a missing reading", "reading_id", readingID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal consistency error"})
	default:
		log.Errorw("exposure recording failed", "reading_id", readingID, "err", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
	}
}
