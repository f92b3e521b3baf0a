package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/daoplus/backend/pkg/retry"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// OpenMongo connects to MongoDB and pings the primary. Multi-document
// transactions need a replica set deployment.
func OpenMongo(ctx context.Context, uri string, policy retry.Policy, logger *zap.Logger) (*mongo.Client, error) {
	logger = logger.With(zap.String("backend", "mongo"))

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}

	err = retry.Do(connectCtx, policy, func(err error, attempt int) bool {
		logger.Warn("mongo ping failed", zap.Int("attempt", attempt), zap.Error(err))
		return mongo.IsNetworkError(err) || mongo.IsTimeout(err)
	}, func(ctx context.Context) error {
		return client.Ping(ctx, nil)
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}

	logger.Info("connected to mongo")
	return client, nil
}

// WithMongoTransaction runs fn in a multi-document transaction. When ctx is
// already bound to a session, fn joins that transaction instead.
func WithMongoTransaction(ctx context.Context, client *mongo.Client, fn func(ctx context.Context) error) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	session, err := client.StartSession()
	if err != nil {
		return TranslateMongoError(err)
	}
	defer session.EndSession(ctx)

	var fnErr error
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		fnErr = fn(sc)
		return nil, fnErr
	})
	if err != nil {
		if fnErr != nil && errors.Is(err, fnErr) {
			return fnErr
		}
		return TranslateMongoError(err)
	}
	return nil
}

// TranslateMongoError maps driver errors onto the storage errors.
func TranslateMongoError(err error) error {
	if err == nil || isStorageError(err) {
		return err
	}

	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	case errors.Is(err, mongo.ErrClientDisconnected), mongo.IsNetworkError(err), mongo.IsTimeout(err):
		return fmt.Errorf("%w: %w", ErrConnection, err)
	default:
		return fmt.Errorf("%w: %w", ErrQuery, err)
	}
}
