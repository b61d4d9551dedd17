package model

import "time"

// Notification channels.
const (
	ChannelInApp = "in_app"
	ChannelEmail = "email"
)

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Channel   string    `json:"channel"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
