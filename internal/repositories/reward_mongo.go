package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/daoplus/backend/internal/models"
	"github.com/anonto42/daoplus/backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRewardRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
}

func NewMongoRewardRepository(db *mongo.Database) *MongoRewardRepository {
	return &MongoRewardRepository{db: db, collection: db.Collection("rewards")}
}

// Award upserts on the unique user_id index. When two first awards race,
// the loser sees a duplicate key and retries as a plain increment.
func (r *MongoRewardRepository) Award(ctx context.Context, userID string, points int64) error {
	if err := requireDocument(ctx, r.db.Collection("users"), userID); err != nil {
		return err
	}

	filter := bson.M{"user_id": userID}
	update := bson.M{"$inc": bson.M{"points": points}}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		_, err = r.collection.UpdateOne(ctx, filter, update)
	}
	return storage.TranslateMongoError(err)
}

func (r *MongoRewardRepository) Deduct(ctx context.Context, userID string, points int64) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"user_id": userID, "points": bson.M{"$gte": points}},
		bson.M{"$inc": bson.M{"points": -points}},
	)
	if err != nil {
		return false, storage.TranslateMongoError(err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *MongoRewardRepository) Balance(ctx context.Context, userID string) (int64, error) {
	var reward models.Reward
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&reward)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, storage.TranslateMongoError(err)
	}
	return reward.Points, nil
}
