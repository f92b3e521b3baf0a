package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type User struct {
	ID           string    `json:"id" bson:"_id" gorm:"primaryKey;size:36"`
	Username     string    `json:"username" bson:"username" gorm:"size:50;not null;uniqueIndex"`
	Email        string    `json:"email" bson:"email" gorm:"size:255;not null;uniqueIndex"` // Ensure email is unique across all users
	PasswordHash string    `json:"-" bson:"password_hash" gorm:"not null"`                 // Store hashed password, ignore for JSON serialization
	IsModerator  bool      `json:"is_moderator" bson:"is_moderator" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

type CreateLocalUserRequest struct {
	Username string `json:"username" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateUserRequest struct {
	Username string `json:"username,omitempty" validate:"omitempty,min=2,max=50"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	IsModerator bool   `json:"is_moderator"`
	jwt.RegisteredClaims
}
