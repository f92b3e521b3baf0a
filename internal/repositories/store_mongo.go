package repositories

import (
	"context"

	"github.com/anonto42/daoplus/backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore is the document-backed Store. Transactions are session based:
// repositories pick the session up from ctx, so one Store serves both root
// and transactional calls.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{client: client, db: client.Database(database)}
}

func (s *MongoStore) Users() UserRepository       { return NewMongoUserRepository(s.db) }
func (s *MongoStore) Posts() PostRepository       { return NewMongoPostRepository(s.db) }
func (s *MongoStore) Comments() CommentRepository { return NewMongoCommentRepository(s.db) }
func (s *MongoStore) Likes() LikeRepository       { return NewMongoLikeRepository(s.db) }
func (s *MongoStore) Follows() FollowRepository   { return NewMongoFollowRepository(s.db) }
func (s *MongoStore) Rewards() RewardRepository   { return NewMongoRewardRepository(s.db) }

func (s *MongoStore) Notifications() NotificationRepository {
	return NewMongoNotificationRepository(s.db)
}

func (s *MongoStore) Transact(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return storage.WithMongoTransaction(ctx, s.client, func(ctx context.Context) error {
		return fn(ctx, s)
	})
}

var mongoIndexes = map[string][]mongo.IndexModel{
	"users": {
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
	"posts": {
		{Keys: bson.D{{Key: "author_id", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "is_flagged", Value: 1}}},
	},
	"comments": {
		{Keys: bson.D{{Key: "post_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "author_id", Value: 1}}},
	},
	"likes": {
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "post_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "post_id", Value: 1}}},
	},
	"follows": {
		{Keys: bson.D{{Key: "follower_id", Value: 1}, {Key: "followed_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "followed_id", Value: 1}}},
	},
	"notifications": {
		{Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "target_id", Value: 1}}},
	},
	"rewards": {
		{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
}

// EnsureSchema creates the collections' indexes, including the unique ones
// behind like, follow and ledger-row uniqueness.
func (s *MongoStore) EnsureSchema(ctx context.Context) error {
	for collection, indexes := range mongoIndexes {
		if _, err := s.db.Collection(collection).Indexes().CreateMany(ctx, indexes); err != nil {
			return storage.TranslateMongoError(err)
		}
	}
	return nil
}
