// Package repository declares the data access contracts the service layer
// depends on. Every lookup that cannot find a row returns an
// apperror.ErrNotFound error, never a driver error.
package repository

import (
	"context"

	"github.com/sakif/devdesk/internal/model"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type ListOptions struct {
	Limit  int
	Offset int
}

// Bounds returns the limit and offset clamped to the allowed range.
func (o ListOptions) Bounds() (limit, offset int) {
	limit = o.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	offset = o.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUserMetadata(ctx context.Context, id string, metadata map[string]any) error
}

type ProfileRepository interface {
	CreateProfile(ctx context.Context, profile *model.Profile) error
	GetProfile(ctx context.Context, id string) (*model.Profile, error)
	ListProfiles(ctx context.Context, opts ListOptions) ([]model.Profile, error)
	UpdateProfile(ctx context.Context, id string, patch model.ProfilePatch) (*model.Profile, error)
	DeleteProfile(ctx context.Context, id string) (*model.Profile, error)
}

// ProjectRepository scopes every read and write by owner.
type ProjectRepository interface {
	CreateProject(ctx context.Context, project *model.Project) error
	GetProject(ctx context.Context, id, ownerID string) (*model.Project, error)
	ListProjects(ctx context.Context, ownerID string, opts ListOptions) ([]model.Project, error)
	UpdateProject(ctx context.Context, id, ownerID string, patch model.ProjectPatch) (*model.Project, error)
	DeleteProject(ctx context.Context, id, ownerID string) (*model.Project, error)
}

type TicketRepository interface {
	CreateTicket(ctx context.Context, ticket *model.Ticket) error
	GetTicket(ctx context.Context, id string) (*model.Ticket, error)
	ListTicketsByProject(ctx context.Context, projectID string, opts ListOptions) ([]model.Ticket, error)
	// ListTicketsForUser returns tickets the user created or is assigned to.
	ListTicketsForUser(ctx context.Context, userID string, opts ListOptions) ([]model.Ticket, error)
	UpdateTicket(ctx context.Context, id string, patch model.TicketPatch) (*model.Ticket, error)
	DeleteTicket(ctx context.Context, id string) (*model.Ticket, error)
}

// CommentRepository lists comments oldest first.
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *model.TicketComment) error
	ListComments(ctx context.Context, ticketID string) ([]model.TicketComment, error)
	ListCommentsByAuthor(ctx context.Context, ticketID, authorID string) ([]model.TicketComment, error)
	DeleteComment(ctx context.Context, id, ticketID, authorID string) (*model.TicketComment, error)
}

// ActivityRepository lists activity oldest first.
type ActivityRepository interface {
	CreateActivity(ctx context.Context, activity *model.TicketActivity) error
	ListActivity(ctx context.Context, ticketID string) ([]model.TicketActivity, error)
	ListActivityByActor(ctx context.Context, ticketID, actorID string) ([]model.TicketActivity, error)
	DeleteActivity(ctx context.Context, id, ticketID, actorID string) (*model.TicketActivity, error)
}

// NotificationRepository lists notifications newest first.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *model.Notification) error
	ListNotifications(ctx context.Context, userID string, opts ListOptions) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id, userID string) (*model.Notification, error)
	MarkAllNotificationsRead(ctx context.Context, userID string) ([]model.Notification, error)
}

type GitHubRepository interface {
	UpsertGitHubToken(ctx context.Context, token *model.GitHubToken) error
	GetGitHubToken(ctx context.Context, userID string) (*model.GitHubToken, error)
	DeleteGitHubToken(ctx context.Context, userID string) error
	// LinkRepo returns an apperror.ErrConflict error when the repository is
	// already linked to the project.
	LinkRepo(ctx context.Context, repo *model.LinkedRepo) error
	ListLinkedRepos(ctx context.Context, projectID string) ([]model.LinkedRepo, error)
	UnlinkRepo(ctx context.Context, id, projectID string) (*model.LinkedRepo, error)
}
