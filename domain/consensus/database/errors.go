package database

import (
	"github.com/FranklinWaller/Rutile/infrastructure/db/database"
)

// ErrNotFound is re-exported so the stores can classify missing keys
// without importing the infrastructure package
var ErrNotFound = database.ErrNotFound

// IsNotFoundError reports whether err is or wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return database.IsNotFoundError(err)
}
