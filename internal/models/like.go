package models

import "time"

// Like is the (user, post) edge. The pair is the primary key, so a user
// can like a post at most once.
type Like struct {
	UserID    string    `json:"user_id" bson:"user_id" gorm:"primaryKey;size:36"`
	PostID    string    `json:"post_id" bson:"post_id" gorm:"primaryKey;size:36;index"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	User *User `json:"-" bson:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Post *Post `json:"-" bson:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}
