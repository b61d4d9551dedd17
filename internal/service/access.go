package service

import (
	"context"
	"errors"

	"github.com/sakif/devdesk/internal/apperror"
	"github.com/sakif/devdesk/internal/model"
	"github.com/sakif/devdesk/internal/repository"
)

// access answers "may the caller touch this?" for everything that hangs off
// a project.
//
// WHO MAY DO WHAT:
//   - project owner      → everything on the project and its tickets
//   - ticket creator     → delete the ticket, read and write its comments/activity
//   - ticket assignee    → read and write its comments/activity
//   - anyone else        → nothing
//
// Every refusal is reported as not found, so the API never confirms that
// another user's project or ticket exists.
type access struct {
	projects repository.ProjectRepository
	tickets  repository.TicketRepository
}

// ownedProject returns the project when callerID owns it.
func (a access) ownedProject(ctx context.Context, projectID, callerID string) (*model.Project, error) {
	return a.projects.GetProject(ctx, projectID, callerID)
}

// ownsProject reports whether callerID owns projectID. Lookup failures other
// than not found are returned.
func (a access) ownsProject(ctx context.Context, projectID, callerID string) (bool, error) {
	_, err := a.projects.GetProject(ctx, projectID, callerID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, apperror.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// ownedTicket returns the ticket when callerID owns its project.
func (a access) ownedTicket(ctx context.Context, ticketID, callerID string) (*model.Ticket, error) {
	t, err := a.tickets.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	ok, err := a.ownsProject(ctx, t.ProjectID, callerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.NotFound("ticket", ticketID)
	}
	return t, nil
}

// deletableTicket returns the ticket when callerID owns its project or
// created it.
func (a access) deletableTicket(ctx context.Context, ticketID, callerID string) (*model.Ticket, error) {
	t, err := a.tickets.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if t.CreatedBy == callerID {
		return t, nil
	}
	ok, err := a.ownsProject(ctx, t.ProjectID, callerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.NotFound("ticket", ticketID)
	}
	return t, nil
}

// participantTicket returns the ticket when callerID owns its project,
// created it, or is assigned to it.
func (a access) participantTicket(ctx context.Context, ticketID, callerID string) (*model.Ticket, error) {
	t, err := a.tickets.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if t.CreatedBy == callerID || t.IsAssignee(callerID) {
		return t, nil
	}
	ok, err := a.ownsProject(ctx, t.ProjectID, callerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.NotFound("ticket", ticketID)
	}
	return t, nil
}
