package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/devdesk/internal/apperror"
	"github.com/sakif/devdesk/internal/model"
)

func TestCreateTicket_Defaults(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	p := createTestProject(t, db, owner.ID, "P")

	tk := createTestTicket(t, db, p.ID, owner.ID)

	if tk.Status != model.StatusOpen {
		t.Errorf("Status = %q, want %q", tk.Status, model.StatusOpen)
	}
	if tk.Priority != model.PriorityMedium {
		t.Errorf("Priority = %q, want %q", tk.Priority, model.PriorityMedium)
	}
	if tk.AssignedTo != nil {
		t.Errorf("AssignedTo = %v, want nil", *tk.AssignedTo)
	}
}

func TestCreateTicket_UnknownAssignee(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	p := createTestProject(t, db, owner.ID, "P")

	ghost := "9b2f4c55-1111-4aaa-8bbb-000000000000"
	err := db.CreateTicket(context.Background(), &model.Ticket{
		ProjectID: p.ID, Title: "x", Description: "y", CreatedBy: owner.ID, AssignedTo: &ghost,
	})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("CreateTicket() error = %v, want ErrValidation", err)
	}
}

func TestCreateTicket_MissingReferences(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@example.com")
	dev := createTestUser(t, db, "dev@example.com")
	ghost := "9b2f4c55-1111-4aaa-8bbb-000000000000"

	// Project gone between the ownership check and the insert, with a valid assignee.
	err := db.CreateTicket(ctx, &model.Ticket{
		ProjectID: ghost, Title: "x", Description: "y", CreatedBy: owner.ID, AssignedTo: &dev.ID,
	})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("CreateTicket(missing project) error = %v, want ErrNotFound", err)
	}
	if err.Error() != "project not found with id "+ghost {
		t.Errorf("CreateTicket(missing project) message = %q", err.Error())
	}

	p := createTestProject(t, db, owner.ID, "P")
	err = db.CreateTicket(ctx, &model.Ticket{
		ProjectID: p.ID, Title: "x", Description: "y", CreatedBy: ghost,
	})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("CreateTicket(missing creator) error = %v, want ErrNotFound", err)
	}
}

func TestUpdateTicket_UnknownAssignee(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	p := createTestProject(t, db, owner.ID, "P")
	tk := createTestTicket(t, db, p.ID, owner.ID)

	ghost := "9b2f4c55-1111-4aaa-8bbb-000000000000"
	_, err := db.UpdateTicket(context.Background(), tk.ID, model.TicketPatch{AssignedTo: &ghost})
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Field != "assigned_to" {
		t.Errorf("UpdateTicket() error = %v, want assigned_to validation error", err)
	}
}

func TestUpdateTicket_OnlyPresentFields(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@example.com")
	dev := createTestUser(t, db, "dev@example.com")
	p := createTestProject(t, db, owner.ID, "P")
	tk := createTestTicket(t, db, p.ID, owner.ID)

	status := model.StatusInProgress
	updated, err := db.UpdateTicket(ctx, tk.ID, model.TicketPatch{Status: &status, AssignedTo: &dev.ID})
	if err != nil {
		t.Fatalf("UpdateTicket() error = %v", err)
	}
	if updated.Status != model.StatusInProgress {
		t.Errorf("Status = %q, want in_progress", updated.Status)
	}
	if !updated.IsAssignee(dev.ID) {
		t.Errorf("AssignedTo = %v, want %s", updated.AssignedTo, dev.ID)
	}
	if updated.Title != tk.Title || updated.Priority != tk.Priority {
		t.Errorf("untouched fields changed: %+v", updated)
	}

	cleared, err := db.UpdateTicket(ctx, tk.ID, model.TicketPatch{ClearAssignee: true})
	if err != nil {
		t.Fatalf("UpdateTicket(clear) error = %v", err)
	}
	if cleared.AssignedTo != nil {
		t.Errorf("AssignedTo = %v, want nil", *cleared.AssignedTo)
	}
}

func TestUpdateTicket_NotFound(t *testing.T) {
	db := newTestDB(t)
	title := "x"

	_, err := db.UpdateTicket(context.Background(), "missing", model.TicketPatch{Title: &title})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateTicket() error = %v, want ErrNotFound", err)
	}
}

func TestListTicketsForUser_CreatedOrAssigned(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@example.com")
	dev := createTestUser(t, db, "dev@example.com")
	p := createTestProject(t, db, owner.ID, "P")

	createTestTicket(t, db, p.ID, owner.ID)
	assigned := &model.Ticket{ProjectID: p.ID, Title: "a", Description: "b", CreatedBy: owner.ID, AssignedTo: &dev.ID}
	if err := db.CreateTicket(ctx, assigned); err != nil {
		t.Fatalf("CreateTicket() error = %v", err)
	}

	ownerTickets, err := db.ListTicketsForUser(ctx, owner.ID, repositoryListAll)
	if err != nil {
		t.Fatalf("ListTicketsForUser(owner) error = %v", err)
	}
	if len(ownerTickets) != 2 {
		t.Errorf("owner tickets = %d, want 2", len(ownerTickets))
	}

	devTickets, err := db.ListTicketsForUser(ctx, dev.ID, repositoryListAll)
	if err != nil {
		t.Fatalf("ListTicketsForUser(dev) error = %v", err)
	}
	if len(devTickets) != 1 || devTickets[0].ID != assigned.ID {
		t.Errorf("dev tickets = %+v, want only the assigned one", devTickets)
	}

	byProject, err := db.ListTicketsByProject(ctx, p.ID, repositoryListAll)
	if err != nil {
		t.Fatalf("ListTicketsByProject() error = %v", err)
	}
	if len(byProject) != 2 {
		t.Errorf("project tickets = %d, want 2", len(byProject))
	}
}

func TestDeleteTicket_ReturnsRowAndCascades(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@example.com")
	p := createTestProject(t, db, owner.ID, "P")
	tk := createTestTicket(t, db, p.ID, owner.ID)

	c := &model.TicketComment{TicketID: tk.ID, AuthorID: owner.ID, Content: "hi"}
	if err := db.CreateComment(ctx, c); err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}

	deleted, err := db.DeleteTicket(ctx, tk.ID)
	if err != nil {
		t.Fatalf("DeleteTicket() error = %v", err)
	}
	if deleted.ID != tk.ID {
		t.Errorf("deleted ID = %q, want %q", deleted.ID, tk.ID)
	}

	comments, err := db.ListComments(ctx, tk.ID)
	if err != nil {
		t.Fatalf("ListComments() error = %v", err)
	}
	if len(comments) != 0 {
		t.Errorf("comments after ticket delete = %d, want 0", len(comments))
	}

	if _, err := db.DeleteTicket(ctx, tk.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second DeleteTicket() error = %v, want ErrNotFound", err)
	}
}
