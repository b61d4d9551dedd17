package model

import "time"

// Ticket statuses.
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusClosed     = "closed"
)

// Ticket priorities.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Ticket is a unit of work inside a project.
// AssignedTo is nil when nobody is assigned.
type Ticket struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	CreatedBy   string    `json:"created_by"`
	AssignedTo  *string   `json:"assigned_to"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsAssignee reports whether userID is the ticket's assignee.
func (t *Ticket) IsAssignee(userID string) bool {
	return t.AssignedTo != nil && *t.AssignedTo == userID
}

// TicketPatch carries the fields of a partial ticket update.
// ClearAssignee removes the assignee and takes precedence over AssignedTo.
type TicketPatch struct {
	Title         *string
	Description   *string
	Status        *string
	Priority      *string
	AssignedTo    *string
	ClearAssignee bool
}

// TicketComment is a message attached to a ticket.
// ContentHTML is rendered on read and never stored.
type TicketComment struct {
	ID          string    `json:"id"`
	TicketID    string    `json:"ticket_id"`
	AuthorID    string    `json:"author_id"`
	Content     string    `json:"content"`
	ContentHTML string    `json:"content_html"`
	CreatedAt   time.Time `json:"created_at"`
}

// TicketActivity is one entry of a ticket's audit trail.
type TicketActivity struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	ActorID   string    `json:"actor_id"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}
