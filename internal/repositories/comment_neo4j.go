package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/daoplus/backend/internal/models"
	"github.com/anonto42/daoplus/backend/internal/storage"
)

// Neo4jCommentRepository stores comments as
// (:Comment)-[:COMMENTED_BY]->(:User) and (:Comment)-[:ON]->(:Post).
type Neo4jCommentRepository struct {
	gw storage.Gateway
}

func NewNeo4jCommentRepository(gw storage.Gateway) *Neo4jCommentRepository {
	return &Neo4jCommentRepository{gw: gw}
}

func commentFromRecord(rec storage.Record) (models.Comment, error) {
	d := rec.Decode()
	comment := models.Comment{
		ID:        d.String("id"),
		Content:   d.String("content"),
		AuthorID:  d.String("author_id"),
		PostID:    d.String("post_id"),
		CreatedAt: d.Time("created_at"),
	}
	return comment, d.Err()
}

func (r *Neo4jCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = newID()
	}
	comment.CreatedAt = now()

	records, err := r.gw.Write(ctx, `
		MATCH (u:User {id: $author_id})
		MATCH (p:Post {id: $post_id})
		CREATE (c:Comment {
			id: $id, content: $content, author_id: $author_id,
			post_id: $post_id, created_at: $created_at
		})
		CREATE (c)-[:COMMENTED_BY]->(u)
		CREATE (c)-[:ON]->(p)
		RETURN c.id AS id`, map[string]any{
		"id":         comment.ID,
		"content":    comment.Content,
		"author_id":  comment.AuthorID,
		"post_id":    comment.PostID,
		"created_at": comment.CreatedAt,
	})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return storage.ErrMissingReference
	}
	return nil
}

func (r *Neo4jCommentRepository) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	records, err := r.gw.Query(ctx, `MATCH (c:Comment {id: $id}) RETURN c {.*} AS c`, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, storage.ErrNotFound
	}
	comment, err := commentFromRecord(records[0].Decode().Map("c"))
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *Neo4jCommentRepository) ListCommentsForPost(ctx context.Context, postID string) ([]models.CommentView, error) {
	records, err := r.gw.Query(ctx, `
		MATCH (c:Comment)-[:ON]->(:Post {id: $post_id})
		MATCH (c)-[:COMMENTED_BY]->(u:User)
		RETURN c {.*} AS c, u.username AS author_name
		ORDER BY c.created_at ASC`, map[string]any{"post_id": postID})
	if err != nil {
		return nil, err
	}
	return decodeAll(records, func(rec storage.Record) (models.CommentView, error) {
		d := rec.Decode()
		comment, err := commentFromRecord(d.Map("c"))
		view := models.CommentView{Comment: comment, AuthorName: d.String("author_name")}
		return view, errors.Join(err, d.Err())
	})
}

func (r *Neo4jCommentRepository) UpdateComment(ctx context.Context, comment *models.Comment) error {
	comment.CreatedAt = now()
	records, err := r.gw.Write(ctx, `
		MATCH (c:Comment {id: $id})
		SET c.content = $content, c.created_at = $created_at
		RETURN c.id AS id`, map[string]any{
		"id":         comment.ID,
		"content":    comment.Content,
		"created_at": comment.CreatedAt,
	})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *Neo4jCommentRepository) DeleteComment(ctx context.Context, id string) error {
	records, err := r.gw.Write(ctx, `
		MATCH (c:Comment {id: $id})
		DETACH DELETE c
		RETURN count(*) AS deleted`, map[string]any{"id": id})
	if err != nil {
		return err
	}
	return requireDeleted(records)
}
