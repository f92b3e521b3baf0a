package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/daoplus/backend/internal/models"
	"github.com/anonto42/daoplus/backend/internal/storage"
	"github.com/anonto42/daoplus/backend/pkg/retry"
	"gorm.io/gorm"
)

// PostgresStore is the gorm-backed Store. It serves PostgreSQL in
// production and sqlite in tests and local runs.
type PostgresStore struct {
	db     *gorm.DB
	policy retry.Policy
	inTx   bool
}

func NewPostgresStore(db *gorm.DB, policy retry.Policy) *PostgresStore {
	return &PostgresStore{db: db, policy: policy}
}

func (s *PostgresStore) Users() UserRepository       { return NewPostgresUserRepository(s.db) }
func (s *PostgresStore) Posts() PostRepository       { return NewPostgresPostRepository(s.db) }
func (s *PostgresStore) Comments() CommentRepository { return NewPostgresCommentRepository(s.db) }
func (s *PostgresStore) Likes() LikeRepository       { return NewPostgresLikeRepository(s.db) }
func (s *PostgresStore) Follows() FollowRepository   { return NewPostgresFollowRepository(s.db) }
func (s *PostgresStore) Rewards() RewardRepository   { return NewPostgresRewardRepository(s.db) }

func (s *PostgresStore) Notifications() NotificationRepository {
	return NewPostgresNotificationRepository(s.db)
}

// Transact runs fn in a database transaction. A root transaction that fails
// with a transient connection error is retried under the store's policy.
func (s *PostgresStore) Transact(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	var fnErr error
	run := func(ctx context.Context) error {
		fnErr = nil
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			fnErr = fn(ctx, &PostgresStore{db: tx, policy: s.policy, inTx: true})
			return fnErr
		})
	}

	var err error
	if s.inTx {
		err = run(ctx)
	} else {
		err = retry.Do(ctx, s.policy, func(err error, _ int) bool { return storage.IsTransient(err) }, run)
	}

	if err != nil && fnErr != nil && errors.Is(err, fnErr) {
		return fnErr
	}
	return storage.TranslateGormError(err)
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	return storage.TranslateGormError(s.db.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Follow{},
		&models.Notification{},
		&models.Reward{},
	))
}
