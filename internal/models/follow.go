package models

import "time"

// Follow represents a directed follow relationship
type Follow struct {
	FollowerID string    `json:"follower_id" bson:"follower_id" gorm:"primaryKey;size:36"`
	FollowedID string    `json:"followed_id" bson:"followed_id" gorm:"primaryKey;size:36;index;check:chk_follows_not_self,follower_id <> followed_id"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`

	Follower *User `json:"-" bson:"-" gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Followed *User `json:"-" bson:"-" gorm:"foreignKey:FollowedID;constraint:OnDelete:CASCADE"`
}
