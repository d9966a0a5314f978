package models

import "time"

// Reading is a validated checkpoint sighting. Immutable once stored;
// re-ingestion of the same reading_id is a conflict, not an update.
type Reading struct {
	ReadingID    string    `json:"reading_id"`
	Timestamp    time.Time `json:"timestamp"`
	LicensePlate string    `json:"license_plate"`
	CheckpointID string    `json:"checkpoint_id"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
}

// Exposure is one committed ad serving for a reading. At most one exposure
// ever references a given reading.
type Exposure struct {
	ID           int64     `json:"exposure_id"`
	ReadingID    string    `json:"reading_id"`
	CampaignID   string    `json:"campaign_id"`
	AdContent    string    `json:"ad_content"`
	ExposureTime time.Time `json:"exposure_timestamp"`
}

// AdServed is the serving outcome inside a submission response.
type AdServed struct {
	CampaignID string `json:"campaign_id"`
	AdContent  string `json:"ad_content"`
}

// ReadingResponse is returned by POST /readings.
// AdServed is null when no campaign was eligible — that is a success,
// not an error.
type ReadingResponse struct {
	ReadingID string    `json:"reading_id"`
	Processed bool      `json:"processed"`
	AdServed  *AdServed `json:"ad_served"`
}

// CheckpointCount is one row of the readings-per-checkpoint report.
type CheckpointCount struct {
	CheckpointID  string `json:"checkpoint_id"`
	TotalReadings int64  `json:"total_readings"`
}

// CampaignCount is one row of the exposures-per-campaign report.
type CampaignCount struct {
	CampaignID    string `json:"campaign_id"`
	TotalAdsShown int64  `json:"total_ads_shown"`
}

// RecentExposure is one row of the recent-exposures report, an exposure
// joined with its reading details.
type RecentExposure struct {
	ExposureID   int64     `json:"exposure_id"`
	CampaignID   string    `json:"campaign_id"`
	AdContent    string    `json:"ad_content"`
	Timestamp    time.Time `json:"timestamp"`
	ReadingID    string    `json:"reading_id"`
	LicensePlate string    `json:"license_plate"`
	CheckpointID string    `json:"checkpoint_id"`
}

// MetricsResponse is returned by GET /metrics.
type MetricsResponse struct {
	ReadingsByCheckpoint []CheckpointCount `json:"readings_by_checkpoint"`
	AdsByCampaign        []CampaignCount   `json:"ads_by_campaign"`
	RecentExposures      []RecentExposure  `json:"recent_exposures"`
}
