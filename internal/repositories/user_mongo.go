package repositories

import (
	"context"

	"github.com/anonto42/daoplus/backend/internal/models"
	"github.com/anonto42/daoplus/backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{db: db, collection: db.Collection("users")}
}

func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = newID()
	}
	user.CreatedAt = now()
	_, err := r.collection.InsertOne(ctx, user)
	return storage.TranslateMongoError(err)
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, storage.TranslateMongoError(err)
	}
	return &user, nil
}

func (r *MongoUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoUserRepository) GetUsers(ctx context.Context) ([]models.User, error) {
	return findAll[models.User](ctx, r.collection, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
}

func (r *MongoUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{
		"$set": bson.M{
			"username":      user.Username,
			"email":         user.Email,
			"password_hash": user.PasswordHash,
			"is_moderator":  user.IsModerator,
		},
	})
	if err != nil {
		return storage.TranslateMongoError(err)
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) DeleteUser(ctx context.Context, id string) error {
	if _, err := r.GetUserByID(ctx, id); err != nil {
		return err
	}

	var postIDs []string
	posts, err := findAll[models.Post](ctx, r.db.Collection("posts"), bson.M{"author_id": id}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return err
	}
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
	}
	if postIDs == nil {
		postIDs = []string{}
	}

	steps := []struct {
		collection string
		filter     bson.M
	}{
		{"notifications", bson.M{"$or": bson.A{
			bson.M{"recipient_id": id},
			bson.M{"target_id": id},
			bson.M{"target_id": bson.M{"$in": postIDs}},
		}}},
		{"likes", bson.M{"$or": bson.A{bson.M{"user_id": id}, bson.M{"post_id": bson.M{"$in": postIDs}}}}},
		{"comments", bson.M{"$or": bson.A{bson.M{"author_id": id}, bson.M{"post_id": bson.M{"$in": postIDs}}}}},
		{"follows", bson.M{"$or": bson.A{bson.M{"follower_id": id}, bson.M{"followed_id": id}}}},
		{"rewards", bson.M{"user_id": id}},
		{"posts", bson.M{"author_id": id}},
		{"users", bson.M{"_id": id}},
	}
	for _, step := range steps {
		if _, err := r.db.Collection(step.collection).DeleteMany(ctx, step.filter); err != nil {
			return storage.TranslateMongoError(err)
		}
	}
	return nil
}

func findAll[T any](ctx context.Context, collection *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, storage.TranslateMongoError(err)
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err = cursor.All(ctx, &out); err != nil {
		return nil, storage.TranslateMongoError(err)
	}
	return out, nil
}

// requireDocument fails with storage.ErrMissingReference when no document
// in collection has the given _id.
func requireDocument(ctx context.Context, collection *mongo.Collection, id string) error {
	n, err := collection.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return storage.TranslateMongoError(err)
	}
	if n == 0 {
		return storage.ErrMissingReference
	}
	return nil
}
