package services

import (
	"context"
	"errors"

	"github.com/anonto42/daoplus/backend/internal/models"
	"github.com/anonto42/daoplus/backend/internal/repositories"
	"github.com/anonto42/daoplus/backend/internal/storage"
	"go.uber.org/zap"
)

// NotificationEmitter appends notification events and lists them per user.
// Every stored notification points at an existing user or post that
// matches its action.
type NotificationEmitter struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	posts         repositories.PostRepository
	logger        *zap.Logger
}

func NewNotificationEmitter(store repositories.Store, logger *zap.Logger) *NotificationEmitter {
	return &NotificationEmitter{
		notifications: store.Notifications(),
		users:         store.Users(),
		posts:         store.Posts(),
		logger:        logger,
	}
}

func (e *NotificationEmitter) checkTarget(ctx context.Context, action models.Action, targetID string, targetType models.TargetType) error {
	if !action.Valid() {
		return invalid("unknown notification action %q", action)
	}
	if targetType != action.Target() {
		return invalid("a %q notification cannot target a %q", action, targetType)
	}

	var err error
	switch targetType {
	case models.TargetUser:
		_, err = e.users.GetUserByID(ctx, targetID)
	case models.TargetPost:
		_, err = e.posts.GetPostByID(ctx, targetID)
	}
	if errors.Is(err, storage.ErrNotFound) {
		return invalid("%s %q does not exist", targetType, targetID)
	}
	return translate(err)
}

func (e *NotificationEmitter) Record(ctx context.Context, recipientID string, action models.Action, targetID string, targetType models.TargetType) (*models.Notification, error) {
	if err := e.checkTarget(ctx, action, targetID, targetType); err != nil {
		return nil, err
	}

	notification := &models.Notification{
		RecipientID: recipientID,
		Action:      action,
		TargetID:    targetID,
		TargetType:  targetType,
	}
	if err := e.notifications.CreateNotification(ctx, notification); err != nil {
		return nil, translate(err)
	}

	e.logger.Debug("notification recorded",
		zap.String("recipient_id", recipientID),
		zap.String("action", string(action)),
		zap.String("target_id", targetID))
	return notification, nil
}

// ListForUser returns all of the user's notifications, newest first.
func (e *NotificationEmitter) ListForUser(ctx context.Context, userID string) ([]models.Notification, error) {
	notifications, err := e.notifications.ListForRecipient(ctx, userID)
	return notifications, translate(err)
}

// Update rewrites a notification owned by userID.
func (e *NotificationEmitter) Update(ctx context.Context, userID string, notification *models.Notification) error {
	existing, err := e.notifications.GetNotificationByID(ctx, notification.ID)
	if err != nil {
		return translate(err)
	}
	if existing.RecipientID != userID {
		return ErrUnauthorized
	}
	if err := e.checkTarget(ctx, notification.Action, notification.TargetID, notification.TargetType); err != nil {
		return err
	}
	notification.RecipientID = existing.RecipientID
	return translate(e.notifications.UpdateNotification(ctx, notification))
}

// Delete removes a notification owned by userID.
func (e *NotificationEmitter) Delete(ctx context.Context, userID, id string) error {
	existing, err := e.notifications.GetNotificationByID(ctx, id)
	if err != nil {
		return translate(err)
	}
	if existing.RecipientID != userID {
		return ErrUnauthorized
	}
	return translate(e.notifications.DeleteNotification(ctx, id))
}
