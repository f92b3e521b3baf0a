package repositories

import (
	"context"
	"strings"

	"github.com/anonto42/daoplus/backend/internal/models"
	"github.com/anonto42/daoplus/backend/internal/storage"
	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetPostView(ctx context.Context, id string) (*models.PostView, error)
	ListPosts(ctx context.Context) ([]models.PostView, error)
	GetPostsByAuthor(ctx context.Context, authorID string) ([]models.PostView, error)
	// SearchPosts matches query as a case-insensitive substring of the
	// title or content. An empty query matches nothing.
	SearchPosts(ctx context.Context, query string) ([]models.PostView, error)
	ListFlaggedPosts(ctx context.Context) ([]models.PostView, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	// SetFlagged moves is_flagged to flagged only if it currently holds the
	// opposite value. changed is false when the post was already in that
	// state or does not exist.
	SetFlagged(ctx context.Context, id string, flagged bool) (changed bool, err error)
	// DeletePost removes the post with its comments, likes and the
	// notifications that target it.
	DeletePost(ctx context.Context, id string) error
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// CreatePost creates a new post in PostgreSQL
func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = newID()
	}
	post.CreatedAt = now()
	post.IsFlagged = false
	return storage.TranslateGormError(r.db.WithContext(ctx).Create(post).Error)
}

// GetPostByID retrieves a post by ID from PostgreSQL
func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&post).Error; err != nil {
		return nil, storage.TranslateGormError(err)
	}
	return &post, nil
}

func (r *PostgresPostRepository) views(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("posts").
		Select("posts.*, users.username AS author_name").
		Joins("JOIN users ON users.id = posts.author_id")
}

func (r *PostgresPostRepository) GetPostView(ctx context.Context, id string) (*models.PostView, error) {
	var view models.PostView
	if err := r.views(ctx).Where("posts.id = ?", id).Take(&view).Error; err != nil {
		return nil, storage.TranslateGormError(err)
	}
	return &view, nil
}

func (r *PostgresPostRepository) findViews(q *gorm.DB) ([]models.PostView, error) {
	var views []models.PostView
	if err := q.Order("posts.created_at DESC").Find(&views).Error; err != nil {
		return nil, storage.TranslateGormError(err)
	}
	return views, nil
}

// ListPosts retrieves all posts, newest first
func (r *PostgresPostRepository) ListPosts(ctx context.Context) ([]models.PostView, error) {
	return r.findViews(r.views(ctx))
}

// GetPostsByAuthor retrieves posts by a specific user, newest first
func (r *PostgresPostRepository) GetPostsByAuthor(ctx context.Context, authorID string) ([]models.PostView, error) {
	return r.findViews(r.views(ctx).Where("posts.author_id = ?", authorID))
}

func (r *PostgresPostRepository) SearchPosts(ctx context.Context, query string) ([]models.PostView, error) {
	if strings.TrimSpace(query) == "" {
		return []models.PostView{}, nil
	}
	pattern := containsPattern(query)
	return r.findViews(r.views(ctx).Where(
		`LOWER(posts.title) LIKE ? ESCAPE '\' OR LOWER(posts.content) LIKE ? ESCAPE '\'`, pattern, pattern,
	))
}

func (r *PostgresPostRepository) ListFlaggedPosts(ctx context.Context) ([]models.PostView, error) {
	return r.findViews(r.views(ctx).Where("posts.is_flagged = ?", true))
}

// UpdatePost updates the title and content of an existing post
func (r *PostgresPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", post.ID).Updates(map[string]any{
		"title":   post.Title,
		"content": post.Content,
	})
	if res.Error != nil {
		return storage.TranslateGormError(res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *PostgresPostRepository) SetFlagged(ctx context.Context, id string, flagged bool) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND is_flagged = ?", id, !flagged).
		Update("is_flagged", flagged)
	if res.Error != nil {
		return false, storage.TranslateGormError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

// DeletePost deletes a post by ID from PostgreSQL
func (r *PostgresPostRepository) DeletePost(ctx context.Context, id string) error {
	return storage.TranslateGormError(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("target_id = ?", id).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&models.Post{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return storage.ErrNotFound
		}
		return nil
	}))
}
