// Package validate checks inbound reading payloads before anything touches
// the database. Validation is pure: no side effects, and malformed input is
// always reported as a FieldError, never a panic.
package validate

import (
	"fmt"
	"strings"
	"time"

	"github.com/roadsight/plate-ad-service/internal/models"
)

// FieldError reports the first failing check of a reading payload.
// Message always names the failing field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Message }

func fieldErr(field, format string, args ...any) *FieldError {
	return &FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// requiredFields in check order; first failure wins.
var requiredFields = []string{"reading_id", "timestamp", "license_plate", "checkpoint_id", "location"}

// Reading validates a decoded JSON object and returns the typed reading.
// Checks run in a fixed order: presence, string fields, location ranges,
// timestamp format. The timestamp is normalized to UTC.
func Reading(raw map[string]any) (models.Reading, *FieldError) {
	for _, f := range requiredFields {
		if _, ok := raw[f]; !ok {
			return models.Reading{}, fieldErr(f, "%s is required", f)
		}
	}

	readingID, ferr := stringField(raw, "reading_id")
	if ferr != nil {
		return models.Reading{}, ferr
	}
	plate, ferr := stringField(raw, "license_plate")
	if ferr != nil {
		return models.Reading{}, ferr
	}
	checkpoint, ferr := stringField(raw, "checkpoint_id")
	if ferr != nil {
		return models.Reading{}, ferr
	}

	loc, ok := raw["location"].(map[string]any)
	if !ok {
		return models.Reading{}, fieldErr("location", "location must be an object with latitude and longitude")
	}
	lat, ferr := numericField(loc, "latitude", -90, 90)
	if ferr != nil {
		return models.Reading{}, ferr
	}
	lng, ferr := numericField(loc, "longitude", -180, 180)
	if ferr != nil {
		return models.Reading{}, ferr
	}

	ts, ferr := timestampField(raw)
	if ferr != nil {
		return models.Reading{}, ferr
	}

	return models.Reading{
		ReadingID:    readingID,
		Timestamp:    ts,
		LicensePlate: plate,
		CheckpointID: checkpoint,
		Latitude:     lat,
		Longitude:    lng,
	}, nil
}

func stringField(raw map[string]any, field string) (string, *FieldError) {
	s, ok := raw[field].(string)
	if !ok {
		return "", fieldErr(field, "%s must be a string", field)
	}
	if s == "" {
		return "", fieldErr(field, "%s must be a non-empty string", field)
	}
	return s, nil
}

func numericField(loc map[string]any, field string, min, max float64) (float64, *FieldError) {
	v, ok := loc[field]
	if !ok {
		return 0, fieldErr(field, "location.%s is required", field)
	}
	// encoding/json decodes every JSON number into float64.
	n, ok := v.(float64)
	if !ok {
		return 0, fieldErr(field, "location.%s must be numeric", field)
	}
	if n < min || n > max {
		return 0, fieldErr(field, "location.%s must be between %g and %g", field, min, max)
	}
	return n, nil
}

func timestampField(raw map[string]any) (time.Time, *FieldError) {
	s, ok := raw["timestamp"].(string)
	if !ok {
		return time.Time{}, fieldErr("timestamp", "timestamp must be an ISO-8601 string")
	}

	// A trailing Z is the UTC offset. Offset-less timestamps are accepted
	// and interpreted as UTC.
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if !strings.ContainsAny(s, "Zz+") {
		if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fieldErr("timestamp", "timestamp must be a valid ISO-8601 timestamp")
}
