package repositories

import (
	"context"

	"github.com/anonto42/daoplus/backend/internal/storage"
)

// Neo4jRewardRepository stores the ledger as (:User)-[:HAS_REWARD]->(:Reward).
type Neo4jRewardRepository struct {
	gw storage.Gateway
}

func NewNeo4jRewardRepository(gw storage.Gateway) *Neo4jRewardRepository {
	return &Neo4jRewardRepository{gw: gw}
}

// Award merges on Reward.user_id, which is uniquely constrained, so the
// first concurrent awards cannot create two rows.
func (r *Neo4jRewardRepository) Award(ctx context.Context, userID string, points int64) error {
	records, err := r.gw.Write(ctx, `
		MATCH (u:User {id: $user_id})
		MERGE (rw:Reward {user_id: $user_id})
		ON CREATE SET rw.points = 0
		MERGE (u)-[:HAS_REWARD]->(rw)
		SET rw.points = rw.points + $points
		RETURN rw.points AS points`, map[string]any{"user_id": userID, "points": points})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return storage.ErrMissingReference
	}
	return nil
}

func (r *Neo4jRewardRepository) Deduct(ctx context.Context, userID string, points int64) (bool, error) {
	records, err := r.gw.Write(ctx, `
		MATCH (rw:Reward {user_id: $user_id})
		SET rw._lock = true
		REMOVE rw._lock
		WITH rw
		WHERE rw.points >= $points
		SET rw.points = rw.points - $points
		RETURN rw.points AS points`, map[string]any{"user_id": userID, "points": points})
	if err != nil {
		return false, err
	}
	return len(records) == 1, nil
}

func (r *Neo4jRewardRepository) Balance(ctx context.Context, userID string) (int64, error) {
	records, err := r.gw.Query(ctx, `MATCH (rw:Reward {user_id: $user_id}) RETURN rw.points AS points`,
		map[string]any{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return scalar[int64](records, "points")
}
