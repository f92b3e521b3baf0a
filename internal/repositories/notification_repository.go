package repositories

import (
	"context"

	"github.com/anonto42/daoplus/backend/internal/models"
	"github.com/anonto42/daoplus/backend/internal/storage"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	GetNotificationByID(ctx context.Context, id string) (*models.Notification, error)
	// ListForRecipient returns every notification for the user, newest first.
	ListForRecipient(ctx context.Context, recipientID string) ([]models.Notification, error)
	// UpdateNotification rewrites the event fields and refreshes created_at.
	UpdateNotification(ctx context.Context, notification *models.Notification) error
	DeleteNotification(ctx context.Context, id string) error
	DeleteForTarget(ctx context.Context, targetID string) error
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = newID()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = now()
	}
	return storage.TranslateGormError(r.db.WithContext(ctx).Create(notification).Error)
}

func (r *postgresNotificationRepository) GetNotificationByID(ctx context.Context, id string) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&notification).Error; err != nil {
		return nil, storage.TranslateGormError(err)
	}
	return &notification, nil
}

func (r *postgresNotificationRepository) ListForRecipient(ctx context.Context, recipientID string) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, storage.TranslateGormError(err)
	}
	return notifications, nil
}

func (r *postgresNotificationRepository) UpdateNotification(ctx context.Context, notification *models.Notification) error {
	notification.CreatedAt = now()
	res := r.db.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", notification.ID).Updates(map[string]any{
		"action":      notification.Action,
		"target_id":   notification.TargetID,
		"target_type": notification.TargetType,
		"created_at":  notification.CreatedAt,
	})
	if res.Error != nil {
		return storage.TranslateGormError(res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *postgresNotificationRepository) DeleteNotification(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Notification{})
	if res.Error != nil {
		return storage.TranslateGormError(res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *postgresNotificationRepository) DeleteForTarget(ctx context.Context, targetID string) error {
	return storage.TranslateGormError(
		r.db.WithContext(ctx).Where("target_id = ?", targetID).Delete(&models.Notification{}).Error,
	)
}
