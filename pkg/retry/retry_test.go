package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anonto42/daoplus/backend/pkg/retry"
	"github.com/stretchr/testify/require"
)

var (
	errTransient = errors.New("transient")
	errFatal     = errors.New("fatal")

	onlyTransient = func(err error, _ int) bool { return errors.Is(err, errTransient) }
	fastPolicy    = retry.Policy{Attempts: 3, Backoff: time.Millisecond}
)

func TestWrapWithRetry(t *testing.T) {
	t.Parallel()

	t.Run("succeeds after transient errors", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := retry.Do(context.Background(), fastPolicy, onlyTransient, func(context.Context) error {
			calls++
			if calls < 3 {
				return errTransient
			}
			return nil
		})

		require.NoError(t, err)
		require.Equal(t, 3, calls)
	})

	t.Run("stops at attempt limit", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := retry.Do(context.Background(), fastPolicy, onlyTransient, func(context.Context) error {
			calls++
			return errTransient
		})

		require.ErrorIs(t, err, errTransient)
		require.Equal(t, 3, calls)
	})

	t.Run("does not retry fatal errors", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := retry.Do(context.Background(), fastPolicy, onlyTransient, func(context.Context) error {
			calls++
			return errFatal
		})

		require.ErrorIs(t, err, errFatal)
		require.Equal(t, 1, calls)
	})

	t.Run("stops when context is done", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		err := retry.Do(ctx, retry.Policy{Attempts: 10, Backoff: time.Hour}, onlyTransient, func(context.Context) error {
			calls++
			cancel()
			return errTransient
		})

		require.ErrorIs(t, err, errTransient)
		require.Equal(t, 1, calls)
	})

	t.Run("zero attempts runs once", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := retry.Do(context.Background(), retry.Policy{}, onlyTransient, func(context.Context) error {
			calls++
			return errTransient
		})

		require.Error(t, err)
		require.Equal(t, 1, calls)
	})
}
