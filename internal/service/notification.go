package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/devdesk/internal/model"
	"github.com/sakif/devdesk/internal/repository"
)

// NotificationService reads and acknowledges the caller's notifications.
// Marking someone else's notification read is not found.
type NotificationService struct {
	notifications repository.NotificationRepository
}

func NewNotificationService(notifications repository.NotificationRepository) *NotificationService {
	return &NotificationService{notifications: notifications}
}

func (s *NotificationService) List(ctx context.Context, callerID string, opts repository.ListOptions) ([]model.Notification, error) {
	return s.notifications.ListNotifications(ctx, callerID, opts)
}

func (s *NotificationService) MarkRead(ctx context.Context, callerID, id string) (*model.Notification, error) {
	return s.notifications.MarkNotificationRead(ctx, id, callerID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, callerID string) ([]model.Notification, error) {
	return s.notifications.MarkAllNotificationsRead(ctx, callerID)
}

// Mailer delivers a message to one address. *mail.Mailer implements it.
type Mailer interface {
	Send(to, subject, plainBody, htmlBody string) error
}

// Notifier tells users about things other people did to their tickets.
// Failures are logged and never returned: a lost notification must not fail
// the request that caused it.
type Notifier struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	mailer        Mailer
	logger        *slog.Logger
}

// NewNotifier returns a Notifier. mailer may be nil, in which case only
// in-app notifications are recorded.
func NewNotifier(
	notifications repository.NotificationRepository,
	users repository.UserRepository,
	mailer Mailer,
	logger *slog.Logger,
) *Notifier {
	return &Notifier{
		notifications: notifications,
		users:         users,
		mailer:        mailer,
		logger:        logger,
	}
}

// TicketAssigned notifies the ticket's assignee unless they assigned
// themselves.
func (n *Notifier) TicketAssigned(ctx context.Context, actorID string, t *model.Ticket) {
	if n == nil || t.AssignedTo == nil || *t.AssignedTo == actorID {
		return
	}
	n.notify(ctx, *t.AssignedTo,
		"You were assigned a ticket",
		fmt.Sprintf("You were assigned to ticket %q", t.Title),
		"",
	)
}

// CommentAdded notifies the ticket's creator unless they wrote the comment.
func (n *Notifier) CommentAdded(ctx context.Context, actorID string, t *model.Ticket, c *model.TicketComment) {
	if n == nil || t.CreatedBy == actorID {
		return
	}
	n.notify(ctx, t.CreatedBy,
		"New comment on your ticket",
		fmt.Sprintf("New comment on ticket %q: %s", t.Title, excerpt(c.Content, 140)),
		c.ContentHTML,
	)
}

func (n *Notifier) notify(ctx context.Context, userID, subject, message, htmlBody string) {
	log := n.logger.With(slog.String("userID", userID))

	if err := n.notifications.CreateNotification(ctx, &model.Notification{
		UserID:  userID,
		Message: message,
		Channel: model.ChannelInApp,
	}); err != nil {
		log.Error("failed to record notification", slog.String("error", err.Error()))
	}

	if n.mailer == nil {
		return
	}

	user, err := n.users.GetUserByID(ctx, userID)
	if err != nil {
		log.Error("failed to look up notification recipient", slog.String("error", err.Error()))
		return
	}
	if err := n.mailer.Send(user.Email, subject, message, htmlBody); err != nil {
		log.Warn("failed to send notification email", slog.String("error", err.Error()))
		return
	}

	if err := n.notifications.CreateNotification(ctx, &model.Notification{
		UserID:  userID,
		Message: message,
		Channel: model.ChannelEmail,
	}); err != nil {
		log.Error("failed to record email notification", slog.String("error", err.Error()))
	}
}

func excerpt(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
