package models

import "time"

// Post is owned by exactly one User. IsFlagged is the moderation state.
type Post struct {
	ID        string    `json:"id" bson:"_id" gorm:"primaryKey;size:36"`
	Title     string    `json:"title" bson:"title" gorm:"not null" validate:"required"`
	Content   string    `json:"content" bson:"content" gorm:"not null" validate:"required"`
	AuthorID  string    `json:"author_id" bson:"author_id" gorm:"size:36;not null;index" validate:"required"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" gorm:"index"`
	IsFlagged bool      `json:"is_flagged" bson:"is_flagged" gorm:"not null;default:false;index"`

	Author *User `json:"-" bson:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

// PostView is a Post joined with its author's username. It is never persisted.
type PostView struct {
	Post
	AuthorName string `json:"author_name" bson:"author_name"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Title   string `json:"title" form:"title" validate:"required,min=1,max=200"`
	Content string `json:"content" form:"content" validate:"required,min=1,max=5000"`
}

// UpdatePostRequest defines the request body for updating an existing post
type UpdatePostRequest struct {
	Title   string `json:"title" form:"title" validate:"required,min=1,max=200"`
	Content string `json:"content" form:"content" validate:"required,min=1,max=5000"`
}
