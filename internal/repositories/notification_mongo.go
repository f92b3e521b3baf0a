package repositories

import (
	"context"

	"github.com/anonto42/daoplus/backend/internal/models"
	"github.com/anonto42/daoplus/backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoNotificationRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
}

func NewMongoNotificationRepository(db *mongo.Database) NotificationRepository {
	return &mongoNotificationRepository{db: db, collection: db.Collection("notifications")}
}

func (r *mongoNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	if err := requireDocument(ctx, r.db.Collection("users"), notification.RecipientID); err != nil {
		return err
	}

	if notification.ID == "" {
		notification.ID = newID()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = now()
	}
	_, err := r.collection.InsertOne(ctx, notification)
	return storage.TranslateMongoError(err)
}

func (r *mongoNotificationRepository) GetNotificationByID(ctx context.Context, id string) (*models.Notification, error) {
	var notification models.Notification
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&notification); err != nil {
		return nil, storage.TranslateMongoError(err)
	}
	return &notification, nil
}

func (r *mongoNotificationRepository) ListForRecipient(ctx context.Context, recipientID string) ([]models.Notification, error) {
	return findAll[models.Notification](ctx, r.collection, bson.M{"recipient_id": recipientID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

func (r *mongoNotificationRepository) UpdateNotification(ctx context.Context, notification *models.Notification) error {
	notification.CreatedAt = now()
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": notification.ID}, bson.M{
		"$set": bson.M{
			"action":      notification.Action,
			"target_id":   notification.TargetID,
			"target_type": notification.TargetType,
			"created_at":  notification.CreatedAt,
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

func (r *mongoNotificationRepository) DeleteNotification(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storage.TranslateMongoError(err)
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *mongoNotificationRepository) DeleteForTarget(ctx context.Context, targetID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"target_id": targetID})
	return storage.TranslateMongoError(err)
}
