package repositories

import (
	"context"

	"github.com/anonto42/daoplus/backend/internal/models"
	"github.com/anonto42/daoplus/backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoCommentRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
}

func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{db: db, collection: db.Collection("comments")}
}

func (r *MongoCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	if err := requireDocument(ctx, r.db.Collection("users"), comment.AuthorID); err != nil {
		return err
	}
	if err := requireDocument(ctx, r.db.Collection("posts"), comment.PostID); err != nil {
		return err
	}

	if comment.ID == "" {
		comment.ID = newID()
	}
	comment.CreatedAt = now()
	_, err := r.collection.InsertOne(ctx, comment)
	return storage.TranslateMongoError(err)
}

func (r *MongoCommentRepository) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&comment); err != nil {
		return nil, storage.TranslateMongoError(err)
	}
	return &comment, nil
}

func (r *MongoCommentRepository) ListCommentsForPost(ctx context.Context, postID string) ([]models.CommentView, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"post_id": postID}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: 1}}}},
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
		models.Comment `bson:",inline"`
		AuthorName     string `bson:"author_name"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, storage.TranslateMongoError(err)
	}

	comments := make([]models.CommentView, 0, len(rows))
	for _, row := range rows {
		comments = append(comments, models.CommentView{Comment: row.Comment, AuthorName: row.AuthorName})
	}
	return comments, nil
}

func (r *MongoCommentRepository) UpdateComment(ctx context.Context, comment *models.Comment) error {
	comment.CreatedAt = now()
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": comment.ID}, bson.M{
		"$set": bson.M{"content": comment.Content, "created_at": comment.CreatedAt},
	})
	if err != nil {
		return storage.TranslateMongoError(err)
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *MongoCommentRepository) DeleteComment(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storage.TranslateMongoError(err)
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}
