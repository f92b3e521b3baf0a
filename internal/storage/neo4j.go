package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/anonto42/daoplus/backend/pkg/retry"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// Neo4jConfig holds the connection settings for OpenNeo4j.
type Neo4jConfig struct {
	URI      string
	Username string
	Password string
	Database string
}

// Neo4jGateway is a Gateway backed by neo4j-go-driver managed transactions.
type Neo4jGateway struct {
	driver   neo4j.DriverWithContext
	database string
	closed   atomic.Bool
	logger   *zap.Logger
}

// OpenNeo4j creates the driver and verifies connectivity.
func OpenNeo4j(ctx context.Context, cfg Neo4jConfig, policy retry.Policy, logger *zap.Logger) (*Neo4jGateway, error) {
	logger = logger.With(zap.String("backend", "neo4j"))

	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}

	err = retry.Do(ctx, policy, func(err error, attempt int) bool {
		logger.Warn("neo4j connectivity check failed", zap.Int("attempt", attempt), zap.Error(err))
		return neo4j.IsConnectivityError(err) || neo4j.IsRetryable(err)
	}, driver.VerifyConnectivity)
	if err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}

	logger.Info("connected to neo4j", zap.String("uri", cfg.URI))
	return &Neo4jGateway{driver: driver, database: cfg.Database, logger: logger}, nil
}

// NewNeo4jGateway wraps an existing driver. A nil driver yields a gateway
// that fails every call with ErrConnection.
func NewNeo4jGateway(driver neo4j.DriverWithContext, database string, logger *zap.Logger) *Neo4jGateway {
	return &Neo4jGateway{driver: driver, database: database, logger: logger}
}

func (g *Neo4jGateway) Close(ctx context.Context) error {
	if g.closed.Swap(true) || g.driver == nil {
		return nil
	}
	return g.driver.Close(ctx)
}

func (g *Neo4jGateway) ready() error {
	if g.driver == nil || g.closed.Load() {
		return fmt.Errorf("%w: neo4j driver is not open", ErrConnection)
	}
	return nil
}

func (g *Neo4jGateway) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: g.database})
}

func (g *Neo4jGateway) Query(ctx context.Context, statement string, params map[string]any) ([]Record, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}

	session := g.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return run(ctx, tx, statement, params)
	})
	if err != nil {
		return nil, TranslateNeo4jError(err)
	}
	return out.([]Record), nil
}

func (g *Neo4jGateway) Write(ctx context.Context, statement string, params map[string]any) ([]Record, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}

	session := g.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	out, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return run(ctx, tx, statement, params)
	})
	if err != nil {
		return nil, TranslateNeo4jError(err)
	}
	return out.([]Record), nil
}

// Transact runs fn inside one managed write transaction. The driver retries
// fn on transient failures, so fn must not have effects outside the store.
func (g *Neo4jGateway) Transact(ctx context.Context, fn func(ctx context.Context, gw Gateway) error) error {
	if err := g.ready(); err != nil {
		return err
	}

	session := g.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	var fnErr error
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		fnErr = fn(ctx, &neo4jTx{tx: tx})
		return nil, fnErr
	})
	if err != nil {
		if fnErr != nil && errors.Is(err, fnErr) {
			return fnErr
		}
		return TranslateNeo4jError(err)
	}
	return nil
}

// neo4jTx is the Gateway handed to Transact callbacks.
type neo4jTx struct {
	tx neo4j.ManagedTransaction
}

func (t *neo4jTx) Query(ctx context.Context, statement string, params map[string]any) ([]Record, error) {
	records, err := run(ctx, t.tx, statement, params)
	return records, TranslateNeo4jError(err)
}

func (t *neo4jTx) Write(ctx context.Context, statement string, params map[string]any) ([]Record, error) {
	records, err := run(ctx, t.tx, statement, params)
	return records, TranslateNeo4jError(err)
}

func (t *neo4jTx) Transact(ctx context.Context, fn func(ctx context.Context, gw Gateway) error) error {
	return fn(ctx, t)
}

func run(ctx context.Context, tx neo4j.ManagedTransaction, statement string, params map[string]any) ([]Record, error) {
	result, err := tx.Run(ctx, statement, params)
	if err != nil {
		return nil, err
	}

	rows, err := result.Collect(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.AsMap())
	}
	return records, nil
}

// TranslateNeo4jError maps driver errors onto the storage errors. Errors that
// already carry a storage error pass through unchanged.
func TranslateNeo4jError(err error) error {
	if err == nil || isStorageError(err) {
		return err
	}

	if neo4j.IsConnectivityError(err) {
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}

	var neoErr *neo4j.Neo4jError
	if errors.As(err, &neoErr) {
		switch {
		case neoErr.Code == "Neo.ClientError.Schema.ConstraintValidationFailed":
			return fmt.Errorf("%w: %w", ErrDuplicate, err)
		case strings.HasPrefix(neoErr.Code, "Neo.TransientError."):
			return fmt.Errorf("%w: %w", ErrConnection, err)
		case neoErr.Code == "Neo.ClientError.Security.Unauthorized":
			return fmt.Errorf("%w: %w", ErrConnection, err)
		}
	}

	return fmt.Errorf("%w: %w", ErrQuery, err)
}
