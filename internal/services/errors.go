package services

import (
	"errors"
	"fmt"

	"github.com/anonto42/daoplus/backend/internal/storage"
)

// Domain errors. They are returned as values; only storage failures
// (storage.ErrConnection, storage.ErrQuery) are fatal to a request.
var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadyLiked       = errors.New("post already liked by this user")
	ErrAlreadyFollowing   = errors.New("already following this user")
	ErrAlreadyFlagged     = errors.New("post is already flagged")
	ErrNotFlagged         = errors.New("post is not flagged")
	ErrSelfFollow         = errors.New("users cannot follow themselves")
	ErrDuplicateUser      = errors.New("username or email already registered")
	ErrUnauthorized       = errors.New("not permitted")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrInvalidAction      = errors.New("invalid moderation action")
	ErrInvalidInput       = errors.New("invalid input")
)

type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindConflict           Kind = "conflict"
	KindUnauthorized       Kind = "unauthorized"
	KindInsufficientPoints Kind = "insufficient_points"
	KindInvalidAction      Kind = "invalid_action"
	KindInvalidInput       Kind = "invalid_input"
	KindStorage            Kind = "storage"
)

// KindOf classifies err. Unknown errors are storage errors.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrAlreadyLiked), errors.Is(err, ErrAlreadyFollowing),
		errors.Is(err, ErrAlreadyFlagged), errors.Is(err, ErrNotFlagged),
		errors.Is(err, ErrSelfFollow), errors.Is(err, ErrDuplicateUser):
		return KindConflict
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrInsufficientPoints):
		return KindInsufficientPoints
	case errors.Is(err, ErrInvalidAction):
		return KindInvalidAction
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	default:
		return KindStorage
	}
}

// translate turns storage-level absence into ErrNotFound and leaves
// everything else untouched.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrMissingReference):
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	default:
		return err
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
