package storage

import "errors"

// Errors returned by every storage adapter. Driver errors are kept in the
// chain so callers can still inspect them with errors.As.
var (
	ErrNotFound         = errors.New("storage: not found")
	ErrDuplicate        = errors.New("storage: duplicate")
	ErrMissingReference = errors.New("storage: missing reference")
	ErrConnection       = errors.New("storage: connection unavailable")
	ErrQuery            = errors.New("storage: query failed")
)

func isStorageError(err error) bool {
	for _, target := range []error{ErrNotFound, ErrDuplicate, ErrMissingReference, ErrConnection, ErrQuery} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
