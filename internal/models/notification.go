package models

import "time"

type Action string

const (
	ActionLiked     Action = "liked"
	ActionFollowed  Action = "followed"
	ActionCommented Action = "commented"
)

func (a Action) Valid() bool {
	switch a {
	case ActionLiked, ActionFollowed, ActionCommented:
		return true
	}
	return false
}

// Target is the kind of entity a notification with this action points at.
func (a Action) Target() TargetType {
	if a == ActionFollowed {
		return TargetUser
	}
	return TargetPost
}

type TargetType string

const (
	TargetPost TargetType = "post"
	TargetUser TargetType = "user"
)

// Notification is an append-only event addressed to one user.
type Notification struct {
	ID          string     `json:"id" bson:"_id" gorm:"primaryKey;size:36"`
	RecipientID string     `json:"recipient_id" bson:"recipient_id" gorm:"size:36;not null;index"`
	Action      Action     `json:"action" bson:"action" gorm:"size:20;not null"`
	TargetID    string     `json:"target_id" bson:"target_id" gorm:"size:36;not null;index"` // post ID or user ID
	TargetType  TargetType `json:"target_type" bson:"target_type" gorm:"size:20;not null"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at" gorm:"index"`

	Recipient *User `json:"-" bson:"-" gorm:"foreignKey:RecipientID;constraint:OnDelete:CASCADE"`
}

type UpdateNotificationRequest struct {
	Action     Action     `json:"action" validate:"required,oneof=liked followed commented"`
	TargetID   string     `json:"target_id" validate:"required"`
	TargetType TargetType `json:"target_type" validate:"required,oneof=post user"`
}
