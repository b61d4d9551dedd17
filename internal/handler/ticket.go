package handler

import (
	"net/http"

	"github.com/sakif/devdesk/internal/service"
	"github.com/sakif/devdesk/internal/validation"
)

// TicketHandler serves tickets, both under a project and across projects.
//
// HANDLER RESPONSIBILITIES:
//   - ListMine      → every ticket the caller created or is assigned to
//   - ListByProject → tickets of one project the caller owns
//   - Create        → open a ticket in a project the caller owns
//   - Get / Update  → project owner only
//   - Delete        → project owner or the ticket's creator
//
// PATH PARAMETERS:
// /ticket/{project_id}/tickets and /ticket/{ticket_id} share a prefix, so
// every handler validates its UUID parameter before touching the service.
// A malformed id is a 400; an id that exists but belongs to someone else is
// a 404, same as one that does not exist.
type TicketHandler struct {
	tickets *service.TicketService
}

func NewTicketHandler(tickets *service.TicketService) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

// ListMine handles GET /ticket: tickets the caller created or is assigned to.
func (h *TicketHandler) ListMine(r *http.Request) (*Result, error) {
	user, err := caller(r)
	if err != nil {
		return nil, err
	}
	opts, err := listOptions(r)
	if err != nil {
		return nil, err
	}
	ts, err := h.tickets.ListMine(r.Context(), user.ID, opts)
	if err != nil {
		return nil, err
	}
	return success(list(ts), ""), nil
}

// ListByProject handles GET /ticket/{project_id}/tickets.
//
// Query: ?limit= (default 20, max 100) &offset=
func (h *TicketHandler) ListByProject(r *http.Request) (*Result, error) {
	user, err := caller(r)
	if err != nil {
		return nil, err
	}
	projectID, err := uuidParam(r, "project_id")
	if err != nil {
		return nil, err
	}
	opts, err := listOptions(r)
	if err != nil {
		return nil, err
	}
	ts, err := h.tickets.ListByProject(r.Context(), user.ID, projectID, opts)
	if err != nil {
		return nil, err
	}
	return success(list(ts), ""), nil
}

// Create opens a ticket in the project.
//
// HTTP: POST /ticket/{project_id}/tickets
// Auth: Required
//
// Status and priority default to open and medium. When assigned_to names
// someone other than the caller, that user is notified.
func (h *TicketHandler) Create(r *http.Request) (*Result, error) {
	user, err := caller(r)
	if err != nil {
		return nil, err
	}
	projectID, err := uuidParam(r, "project_id")
	if err != nil {
		return nil, err
	}
	var req validation.CreateTicketRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	t, err := h.tickets.Create(r.Context(), user.ID, projectID, req)
	if err != nil {
		return nil, err
	}
	return created(t, "Ticket created"), nil
}

// Get handles GET /ticket/{ticket_id}.
func (h *TicketHandler) Get(r *http.Request) (*Result, error) {
	user, err := caller(r)
	if err != nil {
		return nil, err
	}
	id, err := uuidParam(r, "ticket_id")
	if err != nil {
		return nil, err
	}
	t, err := h.tickets.Get(r.Context(), user.ID, id)
	if err != nil {
		return nil, err
	}
	return success(t, ""), nil
}

// Update applies a partial update.
//
// HTTP: PATCH /ticket/{ticket_id}
//
// Only fields present in the body change. An empty body is rejected with
// "At least one field must be provided to update"; "assigned_to": null
// removes the assignee.
func (h *TicketHandler) Update(r *http.Request) (*Result, error) {
	user, err := caller(r)
	if err != nil {
		return nil, err
	}
	id, err := uuidParam(r, "ticket_id")
	if err != nil {
		return nil, err
	}
	var req validation.UpdateTicketRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	t, err := h.tickets.Update(r.Context(), user.ID, id, req)
	if err != nil {
		return nil, err
	}
	return success(t, "Ticket updated"), nil
}

// Delete handles DELETE /ticket/{ticket_id} and returns the deleted ticket.
// Comments and activity go with it.
func (h *TicketHandler) Delete(r *http.Request) (*Result, error) {
	user, err := caller(r)
	if err != nil {
		return nil, err
	}
	id, err := uuidParam(r, "ticket_id")
	if err != nil {
		return nil, err
	}
	t, err := h.tickets.Delete(r.Context(), user.ID, id)
	if err != nil {
		return nil, err
	}
	return success(t, "Ticket deleted"), nil
}
