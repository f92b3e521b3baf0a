package models

import "time"

// Comment represents a comment on a post
type Comment struct {
	ID        string    `json:"id" bson:"_id" gorm:"primaryKey;size:36"`
	Content   string    `json:"content" bson:"content" gorm:"not null" validate:"required"`
	AuthorID  string    `json:"author_id" bson:"author_id" gorm:"size:36;not null;index" validate:"required"` // ID of the user who made the comment
	PostID    string    `json:"post_id" bson:"post_id" gorm:"size:36;not null;index" validate:"required"`     // ID of the post the comment belongs to
	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	Author *User `json:"-" bson:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Post   *Post `json:"-" bson:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

type CommentView struct {
	Comment
	AuthorName string `json:"author_name" bson:"author_name"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Content string `json:"content" form:"content" validate:"required,min=1,max=500"`
}

// UpdateCommentRequest defines the request body for updating an existing comment
type UpdateCommentRequest struct {
	Content string `json:"content" form:"content" validate:"required,min=1,max=500"`
}
