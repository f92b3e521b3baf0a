package repositories

import (
	"context"

	"github.com/anonto42/daoplus/backend/internal/models"
	"github.com/anonto42/daoplus/backend/internal/storage"
)

// Neo4jFollowRepository stores follows as (:User)-[:FOLLOWS {pair}]->(:User).
type Neo4jFollowRepository struct {
	gw storage.Gateway
}

func NewNeo4jFollowRepository(gw storage.Gateway) *Neo4jFollowRepository {
	return &Neo4jFollowRepository{gw: gw}
}

func (r *Neo4jFollowRepository) CreateFollow(ctx context.Context, follow *models.Follow) error {
	follow.CreatedAt = now()

	records, err := r.gw.Write(ctx, `
		MATCH (f:User {id: $follower_id})
		MATCH (t:User {id: $followed_id})
		WHERE f <> t
		CREATE (f)-[:FOLLOWS {pair: $pair, created_at: $created_at}]->(t)
		RETURN t.id AS id`, map[string]any{
		"follower_id": follow.FollowerID,
		"followed_id": follow.FollowedID,
		"pair":        edgePair(follow.FollowerID, follow.FollowedID),
		"created_at":  follow.CreatedAt,
	})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return storage.ErrMissingReference
	}
	return nil
}

func (r *Neo4jFollowRepository) DeleteFollow(ctx context.Context, followerID, followedID string) error {
	records, err := r.gw.Write(ctx, `
		MATCH (:User {id: $follower_id})-[f:FOLLOWS]->(:User {id: $followed_id})
		DELETE f
		RETURN count(*) AS deleted`, map[string]any{"follower_id": followerID, "followed_id": followedID})
	if err != nil {
		return err
	}
	return requireDeleted(records)
}

func (r *Neo4jFollowRepository) IsFollowing(ctx context.Context, followerID, followedID string) (bool, error) {
	records, err := r.gw.Query(ctx, `
		RETURN EXISTS { (:User {id: $follower_id})-[:FOLLOWS]->(:User {id: $followed_id}) } AS following`,
		map[string]any{"follower_id": followerID, "followed_id": followedID})
	if err != nil {
		return false, err
	}
	return scalar[bool](records, "following")
}

func (r *Neo4jFollowRepository) GetFollowers(ctx context.Context, userID string) ([]models.User, error) {
	records, err := r.gw.Query(ctx, `
		MATCH (u:User)-[:FOLLOWS]->(:User {id: $id})
		RETURN u {.*} AS u ORDER BY u.username ASC`, map[string]any{"id": userID})
	if err != nil {
		return nil, err
	}
	return usersFromRecords(records)
}

func (r *Neo4jFollowRepository) GetFollowing(ctx context.Context, userID string) ([]models.User, error) {
	records, err := r.gw.Query(ctx, `
		MATCH (:User {id: $id})-[:FOLLOWS]->(u:User)
		RETURN u {.*} AS u ORDER BY u.username ASC`, map[string]any{"id": userID})
	if err != nil {
		return nil, err
	}
	return usersFromRecords(records)
}

func (r *Neo4jFollowRepository) CountFollowers(ctx context.Context, userID string) (int64, error) {
	return r.count(ctx, `MATCH (:User)-[f:FOLLOWS]->(:User {id: $id}) RETURN count(f) AS n`, userID)
}

func (r *Neo4jFollowRepository) CountFollowing(ctx context.Context, userID string) (int64, error) {
	return r.count(ctx, `MATCH (:User {id: $id})-[f:FOLLOWS]->(:User) RETURN count(f) AS n`, userID)
}

func (r *Neo4jFollowRepository) count(ctx context.Context, statement, userID string) (int64, error) {
	records, err := r.gw.Query(ctx, statement, map[string]any{"id": userID})
	if err != nil {
		return 0, err
	}
	return scalar[int64](records, "n")
}
