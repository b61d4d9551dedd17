package model

import "time"

// Project is the ownership root: tickets, comments, activity and linked
// repositories are all reachable only through the project's owner.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ProjectPatch struct {
	Name        *string
	Description *string
}
