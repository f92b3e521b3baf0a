package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/daoplus/backend/internal/repositories"
	"github.com/anonto42/daoplus/backend/internal/storage"
	"github.com/anonto42/daoplus/backend/pkg/retry"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DB holds the selected backend's Store and what must be closed on exit.
type DB struct {
	Store   repositories.Store
	closers []func(ctx context.Context) error
	logger  *zap.Logger
}

// InitDB connects to the backend named by cfg.StorageBackend and makes sure
// its schema, constraints and indexes exist.
func InitDB(ctx context.Context, cfg *Config, logger *zap.Logger) (*DB, error) {
	policy := retry.Policy{Attempts: cfg.StorageRetries, Backoff: cfg.StorageBackoff}
	db := &DB{logger: logger}

	switch cfg.StorageBackend {
	case "postgres", "sqlite":
		var (
			gdb *gorm.DB
			err error
		)
		if cfg.StorageBackend == "postgres" {
			gdb, err = storage.OpenPostgres(ctx, cfg.PostgresConnStr, policy, logger)
		} else {
			gdb, err = storage.OpenSQLite(ctx, cfg.SQLitePath+"?_foreign_keys=on", logger)
		}
		if err != nil {
			return nil, err
		}
		db.Store = repositories.NewPostgresStore(gdb, policy)
		db.closers = append(db.closers, func(context.Context) error { return storage.CloseGorm(gdb) })

	case "neo4j":
		gw, err := storage.OpenNeo4j(ctx, storage.Neo4jConfig{
			URI:      cfg.Neo4jURI,
			Username: cfg.Neo4jUser,
			Password: cfg.Neo4jPassword,
			Database: cfg.Neo4jDatabase,
		}, policy, logger)
		if err != nil {
			return nil, err
		}
		db.Store = repositories.NewNeo4jStore(gw)
		db.closers = append(db.closers, gw.Close)

	case "mongo":
		client, err := storage.OpenMongo(ctx, cfg.MongoURI, policy, logger)
		if err != nil {
			return nil, err
		}
		db.Store = repositories.NewMongoStore(client, cfg.MongoDatabase)
		db.closers = append(db.closers, client.Disconnect)

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}

	if err := db.Store.EnsureSchema(ctx); err != nil {
		db.CloseDB()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	logger.Info("storage ready", zap.String("backend", cfg.StorageBackend))
	return db, nil
}

// CloseDB closes the database connections
func (db *DB) CloseDB() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs []error
	for _, closeFn := range db.closers {
		errs = append(errs, closeFn(ctx))
	}
	if err := errors.Join(errs...); err != nil {
		db.logger.Error("closing storage", zap.Error(err))
		return
	}
	db.logger.Info("storage closed")
}
