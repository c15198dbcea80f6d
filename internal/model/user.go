// Package model defines domain entities for the application.
package model

import "time"

// User is an operator allowed to sign in and record donations.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the authenticated principal carried by a session token.
type Identity struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	// TokenID is the jti of the token that produced this identity.
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"-"`
}
