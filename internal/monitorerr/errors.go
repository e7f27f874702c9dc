package monitorerr

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to callers of the monitoring core.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidField     = errors.New("invalid field")
	ErrCollectionFailed = errors.New("metric collection failed")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// NotFound wraps ErrNotFound with the entity and id that could not be located.
func NotFound(entity string, id interface{}) error {
	return fmt.Errorf("%s %v: %w", entity, id, ErrNotFound)
}

// InvalidField wraps ErrInvalidField naming the offending field.
func InvalidField(field, reason string) error {
	return fmt.Errorf("field %q %s: %w", field, reason, ErrInvalidField)
}

// StoreUnavailable wraps a persistence failure as a retryable error.
func StoreUnavailable(op string, err error) error {
	return fmt.Errorf("store %s: %v: %w", op, err, ErrStoreUnavailable)
}
