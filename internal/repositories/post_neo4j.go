package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/anonto42/daoplus/backend/internal/models"
	"github.com/anonto42/daoplus/backend/internal/storage"
)

// Neo4jPostRepository stores posts as (:Post)-[:CREATED_BY]->(:User).
type Neo4jPostRepository struct {
	gw storage.Gateway
}

func NewNeo4jPostRepository(gw storage.Gateway) *Neo4jPostRepository {
	return &Neo4jPostRepository{gw: gw}
}

const postViewReturn = `RETURN p {.*} AS p, u.username AS author_name`

func postFromRecord(rec storage.Record) (models.Post, error) {
	d := rec.Decode()
	post := models.Post{
		ID:        d.String("id"),
		Title:     d.String("title"),
		Content:   d.String("content"),
		AuthorID:  d.String("author_id"),
		CreatedAt: d.Time("created_at"),
		IsFlagged: d.Bool("is_flagged"),
	}
	return post, d.Err()
}

func postViewsFromRecords(records []storage.Record) ([]models.PostView, error) {
	return decodeAll(records, func(rec storage.Record) (models.PostView, error) {
		d := rec.Decode()
		post, err := postFromRecord(d.Map("p"))
		view := models.PostView{Post: post, AuthorName: d.String("author_name")}
		return view, errors.Join(err, d.Err())
	})
}

func (r *Neo4jPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = newID()
	}
	post.CreatedAt = now()
	post.IsFlagged = false

	records, err := r.gw.Write(ctx, `
		MATCH (u:User {id: $author_id})
		CREATE (p:Post {
			id: $id, title: $title, content: $content, author_id: $author_id,
			created_at: $created_at, is_flagged: false
		})-[:CREATED_BY]->(u)
		RETURN p.id AS id`, map[string]any{
		"id":         post.ID,
		"title":      post.Title,
		"content":    post.Content,
		"author_id":  post.AuthorID,
		"created_at": post.CreatedAt,
	})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return storage.ErrMissingReference
	}
	return nil
}

func (r *Neo4jPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	records, err := r.gw.Query(ctx, `MATCH (p:Post {id: $id}) RETURN p {.*} AS p`, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, storage.ErrNotFound
	}
	post, err := postFromRecord(records[0].Decode().Map("p"))
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *Neo4jPostRepository) GetPostView(ctx context.Context, id string) (*models.PostView, error) {
	views, err := r.views(ctx, `MATCH (p:Post {id: $id})-[:CREATED_BY]->(u:User)`, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, storage.ErrNotFound
	}
	return &views[0], nil
}

func (r *Neo4jPostRepository) views(ctx context.Context, match string, params map[string]any) ([]models.PostView, error) {
	records, err := r.gw.Query(ctx, match+"\n"+postViewReturn+"\nORDER BY p.created_at DESC", params)
	if err != nil {
		return nil, err
	}
	return postViewsFromRecords(records)
}

func (r *Neo4jPostRepository) ListPosts(ctx context.Context) ([]models.PostView, error) {
	return r.views(ctx, `MATCH (p:Post)-[:CREATED_BY]->(u:User)`, nil)
}

func (r *Neo4jPostRepository) GetPostsByAuthor(ctx context.Context, authorID string) ([]models.PostView, error) {
	return r.views(ctx, `MATCH (p:Post)-[:CREATED_BY]->(u:User {id: $author_id})`, map[string]any{"author_id": authorID})
}

func (r *Neo4jPostRepository) SearchPosts(ctx context.Context, query string) ([]models.PostView, error) {
	if strings.TrimSpace(query) == "" {
		return []models.PostView{}, nil
	}
	return r.views(ctx, `
		MATCH (p:Post)-[:CREATED_BY]->(u:User)
		WHERE toLower(p.title) CONTAINS $q OR toLower(p.content) CONTAINS $q`,
		map[string]any{"q": strings.ToLower(query)})
}

func (r *Neo4jPostRepository) ListFlaggedPosts(ctx context.Context) ([]models.PostView, error) {
	return r.views(ctx, `MATCH (p:Post {is_flagged: true})-[:CREATED_BY]->(u:User)`, nil)
}

func (r *Neo4jPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	records, err := r.gw.Write(ctx, `
		MATCH (p:Post {id: $id})
		SET p.title = $title, p.content = $content
		RETURN p.id AS id`, map[string]any{
		"id":      post.ID,
		"title":   post.Title,
		"content": post.Content,
	})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// SetFlagged takes the node's write lock before reading is_flagged, so two
// concurrent calls cannot both observe the old state.
func (r *Neo4jPostRepository) SetFlagged(ctx context.Context, id string, flagged bool) (bool, error) {
	records, err := r.gw.Write(ctx, `
		MATCH (p:Post {id: $id})
		SET p._lock = true
		REMOVE p._lock
		WITH p
		WHERE p.is_flagged <> $flagged
		SET p.is_flagged = $flagged
		RETURN p.id AS id`, map[string]any{"id": id, "flagged": flagged})
	if err != nil {
		return false, err
	}
	return len(records) == 1, nil
}

func (r *Neo4jPostRepository) DeletePost(ctx context.Context, id string) error {
	return r.gw.Transact(ctx, func(ctx context.Context, gw storage.Gateway) error {
		params := map[string]any{"id": id}

		if _, err := gw.Write(ctx, `MATCH (c:Comment)-[:ON]->(:Post {id: $id}) DETACH DELETE c`, params); err != nil {
			return err
		}
		if _, err := gw.Write(ctx, `MATCH (n:Notification {target_id: $id}) DETACH DELETE n`, params); err != nil {
			return err
		}

		// DETACH DELETE also drops the LIKES and CREATED_BY edges.
		records, err := gw.Write(ctx, `
			MATCH (p:Post {id: $id})
			DETACH DELETE p
			RETURN count(*) AS deleted`, params)
		if err != nil {
			return err
		}
		return requireDeleted(records)
	})
}
