package repositories

import (
	"context"

	"github.com/anonto42/daoplus/backend/internal/models"
	"github.com/anonto42/daoplus/backend/internal/storage"
)

// Neo4jLikeRepository stores likes as (:User)-[:LIKES {pair}]->(:Post).
// The pair property carries a uniqueness constraint, see Neo4jStore.EnsureSchema.
type Neo4jLikeRepository struct {
	gw storage.Gateway
}

func NewNeo4jLikeRepository(gw storage.Gateway) *Neo4jLikeRepository {
	return &Neo4jLikeRepository{gw: gw}
}

func edgePair(from, to string) string {
	return from + ":" + to
}

func (r *Neo4jLikeRepository) CreateLike(ctx context.Context, like *models.Like) error {
	like.CreatedAt = now()

	records, err := r.gw.Write(ctx, `
		MATCH (u:User {id: $user_id})
		MATCH (p:Post {id: $post_id})
		CREATE (u)-[:LIKES {pair: $pair, created_at: $created_at}]->(p)
		RETURN p.id AS id`, map[string]any{
		"user_id":    like.UserID,
		"post_id":    like.PostID,
		"pair":       edgePair(like.UserID, like.PostID),
		"created_at": like.CreatedAt,
	})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return storage.ErrMissingReference
	}
	return nil
}

func (r *Neo4jLikeRepository) DeleteLike(ctx context.Context, userID, postID string) error {
	records, err := r.gw.Write(ctx, `
		MATCH (:User {id: $user_id})-[l:LIKES]->(:Post {id: $post_id})
		DELETE l
		RETURN count(*) AS deleted`, map[string]any{"user_id": userID, "post_id": postID})
	if err != nil {
		return err
	}
	return requireDeleted(records)
}

func (r *Neo4jLikeRepository) HasUserLikedPost(ctx context.Context, userID, postID string) (bool, error) {
	records, err := r.gw.Query(ctx, `
		RETURN EXISTS { (:User {id: $user_id})-[:LIKES]->(:Post {id: $post_id}) } AS liked`,
		map[string]any{"user_id": userID, "post_id": postID})
	if err != nil {
		return false, err
	}
	return scalar[bool](records, "liked")
}

func (r *Neo4jLikeRepository) CountLikes(ctx context.Context, postID string) (int64, error) {
	records, err := r.gw.Query(ctx, `
		MATCH (:User)-[l:LIKES]->(:Post {id: $post_id})
		RETURN count(l) AS likes`, map[string]any{"post_id": postID})
	if err != nil {
		return 0, err
	}
	return scalar[int64](records, "likes")
}

func (r *Neo4jLikeRepository) ListLikesForPost(ctx context.Context, postID string) ([]models.Like, error) {
	records, err := r.gw.Query(ctx, `
		MATCH (u:User)-[l:LIKES]->(:Post {id: $post_id})
		RETURN u.id AS user_id, l.created_at AS created_at
		ORDER BY l.created_at ASC`, map[string]any{"post_id": postID})
	if err != nil {
		return nil, err
	}
	return decodeAll(records, func(rec storage.Record) (models.Like, error) {
		d := rec.Decode()
		like := models.Like{UserID: d.String("user_id"), PostID: postID, CreatedAt: d.Time("created_at")}
		return like, d.Err()
	})
}
