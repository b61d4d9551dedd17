package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sakif/devdesk/internal/model"
	"github.com/sakif/devdesk/internal/repository"
	"github.com/sakif/devdesk/internal/validation"
)

// TicketService manages tickets inside projects. Creating, listing,
// reading and updating require owning the project; the ticket's creator may
// also delete it.
//
// SIDE EFFECTS:
// Assigning a ticket to someone other than the caller, on create or on an
// update that changes assigned_to, goes through the Notifier. Notification
// failures never fail the ticket operation.
type TicketService struct {
	tickets  repository.TicketRepository
	access   access
	notifier *Notifier
	logger   *slog.Logger
}

func NewTicketService(
	tickets repository.TicketRepository,
	projects repository.ProjectRepository,
	notifier *Notifier,
	logger *slog.Logger,
) *TicketService {
	return &TicketService{
		tickets:  tickets,
		access:   access{projects: projects, tickets: tickets},
		notifier: notifier,
		logger:   logger,
	}
}

func (s *TicketService) Create(ctx context.Context, callerID, projectID string, req validation.CreateTicketRequest) (*model.Ticket, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if _, err := s.access.ownedProject(ctx, projectID, callerID); err != nil {
		return nil, err
	}

	t := &model.Ticket{
		ProjectID:   projectID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Status:      req.Status,
		Priority:    req.Priority,
		CreatedBy:   callerID,
		AssignedTo:  req.AssignedTo,
	}
	if err := s.tickets.CreateTicket(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info("ticket created",
		slog.String("ticketID", t.ID),
		slog.String("projectID", projectID),
	)
	s.notifier.TicketAssigned(ctx, callerID, t)
	return t, nil
}

func (s *TicketService) ListByProject(ctx context.Context, callerID, projectID string, opts repository.ListOptions) ([]model.Ticket, error) {
	if _, err := s.access.ownedProject(ctx, projectID, callerID); err != nil {
		return nil, err
	}
	return s.tickets.ListTicketsByProject(ctx, projectID, opts)
}

// ListMine returns tickets the caller created or is assigned to, across
// all projects.
func (s *TicketService) ListMine(ctx context.Context, callerID string, opts repository.ListOptions) ([]model.Ticket, error) {
	return s.tickets.ListTicketsForUser(ctx, callerID, opts)
}

func (s *TicketService) Get(ctx context.Context, callerID, id string) (*model.Ticket, error) {
	return s.access.ownedTicket(ctx, id, callerID)
}

func (s *TicketService) Update(ctx context.Context, callerID, id string, req validation.UpdateTicketRequest) (*model.Ticket, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	before, err := s.access.ownedTicket(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	t, err := s.tickets.UpdateTicket(ctx, id, model.TicketPatch{
		Title:         trimmed(req.Title),
		Description:   trimmed(req.Description),
		Status:        req.Status,
		Priority:      req.Priority,
		AssignedTo:    req.AssignedTo,
		ClearAssignee: req.ClearAssignee,
	})
	if err != nil {
		return nil, err
	}

	if req.AssignedTo != nil && !before.IsAssignee(*req.AssignedTo) {
		s.notifier.TicketAssigned(ctx, callerID, t)
	}
	return t, nil
}

func (s *TicketService) Delete(ctx context.Context, callerID, id string) (*model.Ticket, error) {
	if _, err := s.access.deletableTicket(ctx, id, callerID); err != nil {
		return nil, err
	}
	t, err := s.tickets.DeleteTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("ticket deleted", slog.String("ticketID", id))
	return t, nil
}
