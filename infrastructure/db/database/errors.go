package database

import "github.com/pkg/errors"

// ErrNotFound is returned, possibly wrapped, by reads of a key that is not
// in the database
var ErrNotFound = errors.New("not found")

// IsNotFoundError reports whether err is or wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
