package store

import "errors"

// Error taxonomy crossing the store boundary. Every pgx/pgconn failure is
// classified into one of these before it leaves this package; callers match
// with errors.Is and never see driver types.
var (
	// ErrDuplicateReading: the reading_id was already ingested, or an
	// exposure already references it. Idempotency conflict, not corruption.
	ErrDuplicateReading = errors.New("duplicate reading")

	// ErrCapExceeded: the plate already has max_exposures_per_plate
	// committed exposures for the campaign. A routine outcome, not a fault.
	ErrCapExceeded = errors.New("exposure cap exceeded")

	// ErrReadingMissing: an exposure referenced a reading_id that is not in
	// the reading store. Internal consistency fault; should never happen.
	ErrReadingMissing = errors.New("reading missing")

	// ErrUnavailable: transient infrastructure failure. Retryable by the
	// caller with backoff; the store never retries internally.
	ErrUnavailable = errors.New("store unavailable")
)
