package service

import (
	"context"
	"log/slog"

	"github.com/sakif/devdesk/internal/model"
	"github.com/sakif/devdesk/internal/repository"
	"github.com/sakif/devdesk/internal/validation"
)

// Renderer turns comment Markdown into sanitized HTML.
type Renderer interface {
	ToHTML(source string) (string, error)
}

// CommentService manages ticket comments. Anyone entitled to the ticket
// may read and comment; only the author may delete.
type CommentService struct {
	comments repository.CommentRepository
	access   access
	renderer Renderer
	notifier *Notifier
	logger   *slog.Logger
}

func NewCommentService(
	comments repository.CommentRepository,
	tickets repository.TicketRepository,
	projects repository.ProjectRepository,
	renderer Renderer,
	notifier *Notifier,
	logger *slog.Logger,
) *CommentService {
	return &CommentService{
		comments: comments,
		access:   access{projects: projects, tickets: tickets},
		renderer: renderer,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *CommentService) List(ctx context.Context, callerID, ticketID string) ([]model.TicketComment, error) {
	if _, err := s.access.participantTicket(ctx, ticketID, callerID); err != nil {
		return nil, err
	}
	cs, err := s.comments.ListComments(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	s.renderAll(cs)
	return cs, nil
}

// ListMine returns the caller's own comments on a ticket.
func (s *CommentService) ListMine(ctx context.Context, callerID, ticketID string) ([]model.TicketComment, error) {
	if _, err := s.access.participantTicket(ctx, ticketID, callerID); err != nil {
		return nil, err
	}
	cs, err := s.comments.ListCommentsByAuthor(ctx, ticketID, callerID)
	if err != nil {
		return nil, err
	}
	s.renderAll(cs)
	return cs, nil
}

func (s *CommentService) Create(ctx context.Context, callerID, ticketID string, req validation.CreateCommentRequest) (*model.TicketComment, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	t, err := s.access.participantTicket(ctx, ticketID, callerID)
	if err != nil {
		return nil, err
	}

	c := &model.TicketComment{
		TicketID: ticketID,
		AuthorID: callerID,
		Content:  req.Content,
	}
	if err := s.comments.CreateComment(ctx, c); err != nil {
		return nil, err
	}
	s.render(c)

	s.notifier.CommentAdded(ctx, callerID, t, c)
	return c, nil
}

// Delete removes a comment the caller wrote. Someone else's comment is not
// found.
func (s *CommentService) Delete(ctx context.Context, callerID, ticketID, commentID string) (*model.TicketComment, error) {
	c, err := s.comments.DeleteComment(ctx, commentID, ticketID, callerID)
	if err != nil {
		return nil, err
	}
	s.render(c)
	return c, nil
}

func (s *CommentService) renderAll(cs []model.TicketComment) {
	for i := range cs {
		s.render(&cs[i])
	}
}

func (s *CommentService) render(c *model.TicketComment) {
	if s.renderer == nil {
		return
	}
	html, err := s.renderer.ToHTML(c.Content)
	if err != nil {
		s.logger.Warn("failed to render comment",
			slog.String("commentID", c.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	c.ContentHTML = html
}
