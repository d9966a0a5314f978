// Package store is the durable persistence layer: the reading store, the
// exposure ledger with atomic cap enforcement, and the reporting queries.
package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roadsight/plate-ad-service/internal/campaign"
	"github.com/roadsight/plate-ad-service/internal/models"
)

// schemaSQL is embedded so the service can self-bootstrap its database.
//
//go:embed schema.sql
var schemaSQL string

const (
	sqlstateUniqueViolation     = "23505"
	sqlstateForeignKeyViolation = "23503"
)

// PostgresStore persists readings and exposures. It holds no cross-request
// state beyond the connection pool, so any number of instances may run
// against the same database.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a connection pool and fails fast if the database
// is unreachable.
func NewPostgresStore(dbURL string) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema applies schema.sql. Safe to run multiple times.
func (p *PostgresStore) EnsureSchema() error {
	_, err := p.pool.Exec(context.Background(), schemaSQL)
	return err
}

// Ping is used by the readiness endpoint to validate DB connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (p *PostgresStore) Close() {
	p.pool.Close()
}

// InsertReading persists a validated reading. A second insert with the same
// reading_id fails with ErrDuplicateReading; nothing is ever overwritten.
func (p *PostgresStore) InsertReading(ctx context.Context, r models.Reading) error {
	// RETURNING 1 only when inserted; a conflict returns no rows.
	var one int
	err := p.pool.QueryRow(ctx, `
		INSERT INTO license_plate_readings
			(reading_id, timestamp, license_plate, checkpoint_id, latitude, longitude)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (reading_id) DO NOTHING
		RETURNING 1
	`, r.ReadingID, r.Timestamp, r.LicensePlate, r.CheckpointID, r.Latitude, r.Longitude).Scan(&one)

	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrDuplicateReading
	}

	return classify(err)
}

// RecordExposure commits one exposure of the reading's plate to the
// campaign, atomically enforcing max_exposures_per_plate.
//
// The naive count-then-insert is a check-then-act race: two concurrent
// requests can both see count < cap and both insert. Instead the cap check
// is a single conditional upsert on the per-(plate, campaign) counter row;
// Postgres row locking makes a second concurrent upsert on the same key wait
// and re-evaluate the WHERE clause against the committed value. The counter
// increment and the ad_exposures insert share one transaction, so they
// commit or vanish together — a caller aborting mid-flight can never leave
// an increment without its exposure row.
func (p *PostgresStore) RecordExposure(ctx context.Context, r models.Reading, c *campaign.Definition) (models.Exposure, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return models.Exposure{}, classify(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var n int
	err = tx.QueryRow(ctx, `
		INSERT INTO plate_campaign_exposure_counts (license_plate, campaign_id, exposures)
		VALUES ($1,$2,1)
		ON CONFLICT (license_plate, campaign_id) DO UPDATE
			SET exposures = plate_campaign_exposure_counts.exposures + 1
			WHERE plate_campaign_exposure_counts.exposures < $3
		RETURNING exposures
	`, r.LicensePlate, c.CampaignID, c.MaxExposuresPerPlate).Scan(&n)

	if errors.Is(err, pgx.ErrNoRows) {
		return models.Exposure{}, ErrCapExceeded
	}
	if err != nil {
		return models.Exposure{}, classify(err)
	}

	exp := models.Exposure{
		ReadingID:    r.ReadingID,
		CampaignID:   c.CampaignID,
		AdContent:    c.AdContent,
		ExposureTime: r.Timestamp,
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO ad_exposures (reading_id, campaign_id, ad_content, exposure_timestamp)
		VALUES ($1,$2,$3,$4)
		RETURNING id
	`, exp.ReadingID, exp.CampaignID, exp.AdContent, exp.ExposureTime).Scan(&exp.ID)
	if err != nil {
		return models.Exposure{}, classify(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Exposure{}, classify(err)
	}

	return exp, nil
}

// ReadingsByCheckpoint returns the total reading count per checkpoint.
func (p *PostgresStore) ReadingsByCheckpoint(ctx context.Context) ([]models.CheckpointCount, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT checkpoint_id, COUNT(*) AS total_readings
		FROM license_plate_readings
		GROUP BY checkpoint_id
		ORDER BY checkpoint_id
	`)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := []models.CheckpointCount{}
	for rows.Next() {
		var c models.CheckpointCount
		if err := rows.Scan(&c.CheckpointID, &c.TotalReadings); err != nil {
			return nil, classify(err)
		}
		out = append(out, c)
	}

	return out, classifyNil(rows.Err())
}

// ExposuresByCampaign returns the total ads shown per campaign.
func (p *PostgresStore) ExposuresByCampaign(ctx context.Context) ([]models.CampaignCount, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT campaign_id, COUNT(*) AS total_ads_shown
		FROM ad_exposures
		GROUP BY campaign_id
		ORDER BY campaign_id
	`)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := []models.CampaignCount{}
	for rows.Next() {
		var c models.CampaignCount
		if err := rows.Scan(&c.CampaignID, &c.TotalAdsShown); err != nil {
			return nil, classify(err)
		}
		out = append(out, c)
	}

	return out, classifyNil(rows.Err())
}

// RecentExposures returns the newest exposures joined with their reading
// details, newest first.
func (p *PostgresStore) RecentExposures(ctx context.Context, limit int) ([]models.RecentExposure, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT ae.id, ae.campaign_id, ae.ad_content, ae.exposure_timestamp,
		       lpr.reading_id, lpr.license_plate, lpr.checkpoint_id
		FROM ad_exposures ae
		JOIN license_plate_readings lpr ON ae.reading_id = lpr.reading_id
		ORDER BY ae.exposure_timestamp DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := []models.RecentExposure{}
	for rows.Next() {
		var e models.RecentExposure
		if err := rows.Scan(&e.ExposureID, &e.CampaignID, &e.AdContent, &e.Timestamp,
			&e.ReadingID, &e.LicensePlate, &e.CheckpointID); err != nil {
			return nil, classify(err)
		}
		out = append(out, e)
	}

	return out, classifyNil(rows.Err())
}

// classify maps a driver error into the store taxonomy. The original error
// is wrapped so it still reaches debug logs, but callers match on the
// sentinel only.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlstateUniqueViolation:
			return ErrDuplicateReading
		case sqlstateForeignKeyViolation:
			return ErrReadingMissing
		}
	}

	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func classifyNil(err error) error {
	if err == nil {
		return nil
	}
	return classify(err)
}
