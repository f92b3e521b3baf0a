package services

import (
	"context"

	"github.com/anonto42/daoplus/backend/internal/repositories"
	"go.uber.org/zap"
)

// Points awarded for each qualifying action. Each goes to the acting user
// except PointsLike.
const (
	PointsPost int64 = 10
	// PointsLike is paid to the author of the liked post. The liker earns
	// nothing.
	PointsLike    int64 = 5
	PointsComment int64 = 3
	PointsFollow  int64 = 2
)

// RewardLedger tracks point balances per user.
type RewardLedger struct {
	rewards repositories.RewardRepository
	logger  *zap.Logger

	// pending holds metric deltas until the surrounding transaction commits.
	// It is nil for a ledger that writes outside a transaction.
	pending map[string]int64
}

func NewRewardLedger(rewards repositories.RewardRepository, logger *zap.Logger) *RewardLedger {
	return &RewardLedger{rewards: rewards, logger: logger}
}

func (l *RewardLedger) deferMetrics() *RewardLedger {
	l.pending = map[string]int64{}
	return l
}

// flushMetrics publishes the deltas held back by deferMetrics.
func (l *RewardLedger) flushMetrics() {
	for direction, points := range l.pending {
		rewardPoints.WithLabelValues(direction).Add(float64(points))
	}
	l.pending = nil
}

func (l *RewardLedger) observe(direction string, points int64) {
	if l.pending != nil {
		l.pending[direction] += points
		return
	}
	rewardPoints.WithLabelValues(direction).Add(float64(points))
}

// Award adds points to the user's balance. points must be positive.
func (l *RewardLedger) Award(ctx context.Context, userID string, points int64) error {
	if points <= 0 {
		return invalid("award must be positive, got %d", points)
	}
	if err := l.rewards.Award(ctx, userID, points); err != nil {
		return translate(err)
	}

	l.observe("awarded", points)
	l.logger.Debug("points awarded", zap.String("user_id", userID), zap.Int64("points", points))
	return nil
}

// Deduct removes points when the balance covers them. It returns false,
// leaving the balance unchanged, when it does not.
func (l *RewardLedger) Deduct(ctx context.Context, userID string, points int64) (bool, error) {
	if points <= 0 {
		return false, invalid("deduction must be positive, got %d", points)
	}
	ok, err := l.rewards.Deduct(ctx, userID, points)
	if err != nil {
		return false, translate(err)
	}
	if ok {
		l.observe("deducted", points)
	}
	return ok, nil
}

// Balance returns 0 for users who were never awarded points.
func (l *RewardLedger) Balance(ctx context.Context, userID string) (int64, error) {
	points, err := l.rewards.Balance(ctx, userID)
	return points, translate(err)
}
