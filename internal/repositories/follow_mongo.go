package repositories

import (
	"context"

	"github.com/anonto42/daoplus/backend/internal/models"
	"github.com/anonto42/daoplus/backend/internal/storage"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoFollowRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
}

func NewMongoFollowRepository(db *mongo.Database) *MongoFollowRepository {
	return &MongoFollowRepository{db: db, collection: db.Collection("follows")}
}

func (r *MongoFollowRepository) CreateFollow(ctx context.Context, follow *models.Follow) error {
	if follow.FollowerID == follow.FollowedID {
		return storage.ErrQuery
	}
	users := r.db.Collection("users")
	if err := requireDocument(ctx, users, follow.FollowerID); err != nil {
		return err
	}
	if err := requireDocument(ctx, users, follow.FollowedID); err != nil {
		return err
	}

	follow.CreatedAt = now()
	_, err := r.collection.InsertOne(ctx, follow)
	return storage.TranslateMongoError(err)
}

func (r *MongoFollowRepository) DeleteFollow(ctx context.Context, followerID, followedID string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"follower_id": followerID, "followed_id": followedID})
	if err != nil {
		return storage.TranslateMongoError(err)
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *MongoFollowRepository) IsFollowing(ctx context.Context, followerID, followedID string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx,
		bson.M{"follower_id": followerID, "followed_id": followedID},
		options.Count().SetLimit(1))
	if err != nil {
		return false, storage.TranslateMongoError(err)
	}
	return n > 0, nil
}

func (r *MongoFollowRepository) usersByEdge(ctx context.Context, filter bson.M, field string) ([]models.User, error) {
	follows, err := findAll[models.Follow](ctx, r.collection, filter)
	if err != nil {
		return nil, err
	}
	ids := lo.Map(follows, func(f models.Follow, _ int) string {
		if field == "follower_id" {
			return f.FollowerID
		}
		return f.FollowedID
	})
	return findAll[models.User](ctx, r.db.Collection("users"),
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetSort(bson.D{{Key: "username", Value: 1}}))
}

func (r *MongoFollowRepository) GetFollowers(ctx context.Context, userID string) ([]models.User, error) {
	return r.usersByEdge(ctx, bson.M{"followed_id": userID}, "follower_id")
}

func (r *MongoFollowRepository) GetFollowing(ctx context.Context, userID string) ([]models.User, error) {
	return r.usersByEdge(ctx, bson.M{"follower_id": userID}, "followed_id")
}

func (r *MongoFollowRepository) CountFollowers(ctx context.Context, userID string) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"followed_id": userID})
	return n, storage.TranslateMongoError(err)
}

func (r *MongoFollowRepository) CountFollowing(ctx context.Context, userID string) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"follower_id": userID})
	return n, storage.TranslateMongoError(err)
}
