package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Admin - a dashboard operator. Access also requires an allow-list entry.
type Admin struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Email        string             `json:"email" bson:"email"`
	Password     string             `json:"-" bson:"password,omitempty"` // Never send password to client
	Name         string             `json:"name" bson:"name"`
	Picture      string             `json:"picture,omitempty" bson:"picture,omitempty"`
	Provider     string             `json:"provider" bson:"provider"` // "email" or "google"
	GoogleID     string             `json:"-" bson:"googleId,omitempty"`
	RefreshToken string             `json:"-" bson:"refreshToken,omitempty"`
	LastLoginAt  time.Time          `json:"lastLoginAt,omitempty" bson:"lastLoginAt,omitempty"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// AllowedEmail - an address permitted to use the dashboard
type AllowedEmail struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Email     string             `json:"email" bson:"email"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type GoogleAuthRequest struct {
	Token string `json:"token" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         *Admin `json:"user"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
