// Package model defines the data structures used throughout the application.
package model

import "time"

// User is an account known to the identity service.
//
// Accounts are created either by email/password signup or by the first
// GitHub login. OAuth-only accounts have an empty PasswordHash and cannot
// log in with a password.
//
// Metadata holds provider details (GitHub username, avatar, name) and is
// stored as a JSON object.
type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"-"`
	Metadata     map[string]any `json:"user_metadata"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Profile is the public face of a user. Its ID equals the owning user's ID.
type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	AvatarURL string    `json:"avatar_url"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfilePatch carries the fields of a partial profile update.
// A nil field is left untouched.
type ProfilePatch struct {
	Username  *string
	FullName  *string
	AvatarURL *string
	Role      *string
}

// Session is the token pair handed to a client after login.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}
