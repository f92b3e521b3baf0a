package repositories

import (
	"context"

	"github.com/anonto42/daoplus/backend/internal/models"
	"github.com/anonto42/daoplus/backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoLikeRepository relies on the unique (user_id, post_id) index created
// by MongoStore.EnsureSchema.
type MongoLikeRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
}

func NewMongoLikeRepository(db *mongo.Database) *MongoLikeRepository {
	return &MongoLikeRepository{db: db, collection: db.Collection("likes")}
}

func (r *MongoLikeRepository) CreateLike(ctx context.Context, like *models.Like) error {
	if err := requireDocument(ctx, r.db.Collection("users"), like.UserID); err != nil {
		return err
	}
	if err := requireDocument(ctx, r.db.Collection("posts"), like.PostID); err != nil {
		return err
	}

	like.CreatedAt = now()
	_, err := r.collection.InsertOne(ctx, like)
	return storage.TranslateMongoError(err)
}

func (r *MongoLikeRepository) DeleteLike(ctx context.Context, userID, postID string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID, "post_id": postID})
	if err != nil {
		return storage.TranslateMongoError(err)
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *MongoLikeRepository) HasUserLikedPost(ctx context.Context, userID, postID string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"user_id": userID, "post_id": postID}, options.Count().SetLimit(1))
	if err != nil {
		return false, storage.TranslateMongoError(err)
	}
	return n > 0, nil
}

func (r *MongoLikeRepository) CountLikes(ctx context.Context, postID string) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"post_id": postID})
	return n, storage.TranslateMongoError(err)
}

func (r *MongoLikeRepository) ListLikesForPost(ctx context.Context, postID string) ([]models.Like, error) {
	return findAll[models.Like](ctx, r.collection, bson.M{"post_id": postID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
}
