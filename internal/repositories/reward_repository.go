package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/daoplus/backend/internal/models"
	"github.com/anonto42/daoplus/backend/internal/storage"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RewardRepository holds the per-user point ledger.
type RewardRepository interface {
	// Award adds points to the user's row, creating it on first award.
	Award(ctx context.Context, userID string, points int64) error
	// Deduct subtracts points only when the balance covers them. ok is
	// false, with nothing changed, when it does not.
	Deduct(ctx context.Context, userID string, points int64) (ok bool, err error)
	// Balance is 0 for a user without a ledger row.
	Balance(ctx context.Context, userID string) (int64, error)
}

type PostgresRewardRepository struct {
	db *gorm.DB
}

func NewPostgresRewardRepository(db *gorm.DB) *PostgresRewardRepository {
	return &PostgresRewardRepository{db: db}
}

func (r *PostgresRewardRepository) Award(ctx context.Context, userID string, points int64) error {
	reward := &models.Reward{UserID: userID, Points: points}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"points": gorm.Expr("rewards.points + ?", points),
		}),
	}).Create(reward).Error
	return storage.TranslateGormError(err)
}

func (r *PostgresRewardRepository) Deduct(ctx context.Context, userID string, points int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Reward{}).
		Where("user_id = ? AND points >= ?", userID, points).
		UpdateColumn("points", gorm.Expr("points - ?", points))
	if res.Error != nil {
		return false, storage.TranslateGormError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *PostgresRewardRepository) Balance(ctx context.Context, userID string) (int64, error) {
	var reward models.Reward
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&reward).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, storage.TranslateGormError(err)
	}
	return reward.Points, nil
}
