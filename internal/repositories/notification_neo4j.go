package repositories

import (
	"context"

	"github.com/anonto42/daoplus/backend/internal/models"
	"github.com/anonto42/daoplus/backend/internal/storage"
)

// Neo4jNotificationRepository stores notifications as
// (:Notification)-[:SENT_TO]->(:User).
type Neo4jNotificationRepository struct {
	gw storage.Gateway
}

func NewNeo4jNotificationRepository(gw storage.Gateway) *Neo4jNotificationRepository {
	return &Neo4jNotificationRepository{gw: gw}
}

func notificationFromRecord(rec storage.Record) (models.Notification, error) {
	d := rec.Decode()
	notification := models.Notification{
		ID:          d.String("id"),
		RecipientID: d.String("recipient_id"),
		Action:      models.Action(d.String("action")),
		TargetID:    d.String("target_id"),
		TargetType:  models.TargetType(d.String("target_type")),
		CreatedAt:   d.Time("created_at"),
	}
	return notification, d.Err()
}

func notificationsFromRecords(records []storage.Record) ([]models.Notification, error) {
	return decodeAll(records, func(rec storage.Record) (models.Notification, error) {
		return notificationFromRecord(rec.Decode().Map("n"))
	})
}

func (r *Neo4jNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = newID()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = now()
	}

	records, err := r.gw.Write(ctx, `
		MATCH (u:User {id: $recipient_id})
		CREATE (n:Notification {
			id: $id, recipient_id: $recipient_id, action: $action,
			target_id: $target_id, target_type: $target_type, created_at: $created_at
		})-[:SENT_TO]->(u)
		RETURN n.id AS id`, map[string]any{
		"id":           notification.ID,
		"recipient_id": notification.RecipientID,
		"action":       string(notification.Action),
		"target_id":    notification.TargetID,
		"target_type":  string(notification.TargetType),
		"created_at":   notification.CreatedAt,
	})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return storage.ErrMissingReference
	}
	return nil
}

func (r *Neo4jNotificationRepository) GetNotificationByID(ctx context.Context, id string) (*models.Notification, error) {
	records, err := r.gw.Query(ctx, `MATCH (n:Notification {id: $id}) RETURN n {.*} AS n`, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, storage.ErrNotFound
	}
	notifications, err := notificationsFromRecords(records[:1])
	if err != nil {
		return nil, err
	}
	return &notifications[0], nil
}

func (r *Neo4jNotificationRepository) ListForRecipient(ctx context.Context, recipientID string) ([]models.Notification, error) {
	records, err := r.gw.Query(ctx, `
		MATCH (n:Notification)-[:SENT_TO]->(:User {id: $id})
		RETURN n {.*} AS n
		ORDER BY n.created_at DESC`, map[string]any{"id": recipientID})
	if err != nil {
		return nil, err
	}
	return notificationsFromRecords(records)
}

func (r *Neo4jNotificationRepository) UpdateNotification(ctx context.Context, notification *models.Notification) error {
	notification.CreatedAt = now()
	records, err := r.gw.Write(ctx, `
		MATCH (n:Notification {id: $id})
		SET n.action = $action, n.target_id = $target_id,
			n.target_type = $target_type, n.created_at = $created_at
		RETURN n.id AS id`, map[string]any{
		"id":          notification.ID,
		"action":      string(notification.Action),
		"target_id":   notification.TargetID,
		"target_type": string(notification.TargetType),
		"created_at":  notification.CreatedAt,
	})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *Neo4jNotificationRepository) DeleteNotification(ctx context.Context, id string) error {
	records, err := r.gw.Write(ctx, `
		MATCH (n:Notification {id: $id})
		DETACH DELETE n
		RETURN count(*) AS deleted`, map[string]any{"id": id})
	if err != nil {
		return err
	}
	return requireDeleted(records)
}

func (r *Neo4jNotificationRepository) DeleteForTarget(ctx context.Context, targetID string) error {
	_, err := r.gw.Write(ctx, `MATCH (n:Notification {target_id: $id}) DETACH DELETE n`, map[string]any{"id": targetID})
	return err
}
