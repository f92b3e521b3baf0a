package repositories

import (
	"context"
	"regexp"
	"strings"

	"github.com/anonto42/daoplus/backend/internal/models"
	"github.com/anonto42/daoplus/backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{db: db, collection: db.Collection("posts")}
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	if err := requireDocument(ctx, r.db.Collection("users"), post.AuthorID); err != nil {
		return err
	}

	if post.ID == "" {
		post.ID = newID()
	}
	post.CreatedAt = now()
	post.IsFlagged = false
	_, err := r.collection.InsertOne(ctx, post)
	return storage.TranslateMongoError(err)
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		return nil, storage.TranslateMongoError(err)
	}
	return &post, nil
}

// views joins each matched post with its author's username, newest first.
func (r *MongoPostRepository) views(ctx context.Context, match bson.M) ([]models.PostView, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "author_id",
			"foreignField": "_id",
			"as":           "author",
		}}},
		{{Key: "$unwind", Value: "$author"}},
		{{Key: "$addFields", Value: bson.M{"author_name": "$author.username"}}},
		{{Key: "$project", Value: bson.M{"author": 0}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, storage.TranslateMongoError(err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		models.Post `bson:",inline"`
		AuthorName  string `bson:"author_name"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, storage.TranslateMongoError(err)
	}

	views := make([]models.PostView, 0, len(rows))
	for _, row := range rows {
		views = append(views, models.PostView{Post: row.Post, AuthorName: row.AuthorName})
	}
	return views, nil
}

func (r *MongoPostRepository) GetPostView(ctx context.Context, id string) (*models.PostView, error) {
	views, err := r.views(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, storage.ErrNotFound
	}
	return &views[0], nil
}

func (r *MongoPostRepository) ListPosts(ctx context.Context) ([]models.PostView, error) {
	return r.views(ctx, bson.M{})
}

// GetPostsByAuthor retrieves posts by a specific user from MongoDB
func (r *MongoPostRepository) GetPostsByAuthor(ctx context.Context, authorID string) ([]models.PostView, error) {
	return r.views(ctx, bson.M{"author_id": authorID})
}

func (r *MongoPostRepository) SearchPosts(ctx context.Context, query string) ([]models.PostView, error) {
	if strings.TrimSpace(query) == "" {
		return []models.PostView{}, nil
	}
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	return r.views(ctx, bson.M{"$or": bson.A{
		bson.M{"title": pattern},
		bson.M{"content": pattern},
	}})
}

func (r *MongoPostRepository) ListFlaggedPosts(ctx context.Context) ([]models.PostView, error) {
	return r.views(ctx, bson.M{"is_flagged": true})
}

// UpdatePost updates an existing post in MongoDB
func (r *MongoPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	update := bson.M{
		"$set": bson.M{
			"title":   post.Title,
			"content": post.Content,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": post.ID}, update)
	if err != nil {
		return storage.TranslateMongoError(err)
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *MongoPostRepository) SetFlagged(ctx context.Context, id string, flagged bool) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "is_flagged": !flagged},
		bson.M{"$set": bson.M{"is_flagged": flagged}},
	)
	if err != nil {
		return false, storage.TranslateMongoError(err)
	}
	return res.ModifiedCount == 1, nil
}

// DeletePost deletes a post by ID from MongoDB, with its comments, likes and
// notifications. Callers that need atomicity run it inside Store.Transact.
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storage.TranslateMongoError(err)
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}

	dependents := []struct {
		collection string
		filter     bson.M
	}{
		{"comments", bson.M{"post_id": id}},
		{"likes", bson.M{"post_id": id}},
		{"notifications", bson.M{"target_id": id}},
	}
	for _, dep := range dependents {
		if _, err := r.db.Collection(dep.collection).DeleteMany(ctx, dep.filter); err != nil {
			return storage.TranslateMongoError(err)
		}
	}
	return nil
}
