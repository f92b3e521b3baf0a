package storage

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/anonto42/daoplus/backend/pkg/retry"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenPostgres connects to PostgreSQL through gorm and verifies the
// connection, retrying transient failures.
func OpenPostgres(ctx context.Context, dsn string, policy retry.Policy, logger *zap.Logger) (*gorm.DB, error) {
	return openGorm(ctx, postgres.Open(dsn), policy, logger.With(zap.String("backend", "postgres")))
}

// OpenSQLite opens a sqlite database through gorm. Foreign keys must be
// enabled in the DSN for referential checks to apply.
func OpenSQLite(ctx context.Context, dsn string, logger *zap.Logger) (*gorm.DB, error) {
	db, err := openGorm(ctx, sqlite.Open(dsn), retry.Policy{Attempts: 1}, logger.With(zap.String("backend", "sqlite")))
	if err != nil {
		return nil, err
	}

	// sqlite serializes writers; one connection avoids SQLITE_BUSY.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

func openGorm(ctx context.Context, dialector gorm.Dialector, policy retry.Policy, logger *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}

	err = retry.Do(ctx, policy, func(err error, attempt int) bool {
		logger.Warn("database ping failed", zap.Int("attempt", attempt), zap.Error(err))
		return IsTransient(err)
	}, sqlDB.PingContext)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}

	logger.Info("connected to database")
	return db, nil
}

// CloseGorm releases the pool behind db.
func CloseGorm(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// TranslateGormError maps gorm and driver errors onto the storage errors.
func TranslateGormError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %w", ErrMissingReference, err)
	case IsTransient(err):
		return fmt.Errorf("%w: %w", ErrConnection, err)
	case isStorageError(err):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrQuery, err)
	}
}

// IsTransient reports whether err is a connection or serialization failure
// that is safe to retry.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || pgconn.SafeToRetry(err) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// serialization_failure, deadlock_detected
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
