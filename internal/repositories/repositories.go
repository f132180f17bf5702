// package repositories provides persistence layer implementations for all model types.
package repositories

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a lookup matches no rows.
var ErrNotFound = errors.New("record not found")

func notFound(kind, key string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, kind, key)
}
