// Package engine decides which campaign, if any, to serve for a reading.
// The engine itself holds no cross-request state; cap correctness under
// concurrency lives in the exposure ledger.
package engine

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/roadsight/plate-ad-service/internal/campaign"
	"github.com/roadsight/plate-ad-service/internal/models"
	"github.com/roadsight/plate-ad-service/internal/store"
)

// ExposureLedger records one exposure atomically against the per-plate cap.
// Implemented by store.PostgresStore.
type ExposureLedger interface {
	RecordExposure(ctx context.Context, r models.Reading, c *campaign.Definition) (models.Exposure, error)
}

// Engine matches readings against the campaign catalog.
type Engine struct {
	catalog *campaign.Catalog
	ledger  ExposureLedger
	log     *zap.SugaredLogger
}

// New returns an engine over an immutable catalog.
func New(catalog *campaign.Catalog, ledger ExposureLedger, log *zap.SugaredLogger) *Engine {
	return &Engine{catalog: catalog, ledger: ledger, log: log}
}

// Serve finds the first campaign eligible for the reading and records the
// exposure. Candidates are evaluated in catalog order; the window check is
// inclusive on both boundary minutes, in UTC.
//
// A candidate whose cap is already reached for this plate is skipped and the
// next candidate is tried — a plate that exhausted one campaign may still
// qualify for another. Returning (nil, nil) means no eligible campaign,
// which is a normal outcome. Any store failure other than the cap propagates
// typed; "no match" is never used to paper over a fault.
func (e *Engine) Serve(ctx context.Context, r models.Reading) (*models.Exposure, error) {
	t := r.Timestamp.UTC()
	minuteOfDay := t.Hour()*60 + t.Minute()

	for _, c := range e.catalog.For(r.CheckpointID) {
		if !c.InWindow(minuteOfDay) {
			continue
		}

		exp, err := e.ledger.RecordExposure(ctx, r, c)
		if err == nil {
			return &exp, nil
		}
		if errors.Is(err, store.ErrCapExceeded) {
			e.log.Debugw("cap reached, trying next campaign",
				"reading_id", r.ReadingID,
				"campaign_id", c.CampaignID)
			continue
		}

		return nil, err
	}

	return nil, nil
}
