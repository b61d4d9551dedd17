package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/devdesk/internal/apperror"
	"github.com/sakif/devdesk/internal/model"
	"github.com/sakif/devdesk/internal/repository"
)

var repositoryListAll = repository.ListOptions{Limit: repository.MaxLimit}

func TestProjectRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@example.com")

	p := createTestProject(t, db, owner.ID, "P")
	if p.ID == "" {
		t.Fatal("CreateProject() did not set ID")
	}

	found, err := db.GetProject(ctx, p.ID, owner.ID)
	if err != nil {
		t.Fatalf("GetProject() error = %v", err)
	}
	if found.Name != "P" || found.OwnerID != owner.ID {
		t.Errorf("GetProject() = %+v", found)
	}

	deleted, err := db.DeleteProject(ctx, p.ID, owner.ID)
	if err != nil {
		t.Fatalf("DeleteProject() error = %v", err)
	}
	if deleted.ID != p.ID {
		t.Errorf("deleted ID = %q, want %q", deleted.ID, p.ID)
	}

	if _, err := db.GetProject(ctx, p.ID, owner.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetProject() after delete error = %v, want ErrNotFound", err)
	}
}

func TestProjectScopedByOwner(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@example.com")
	other := createTestUser(t, db, "other@example.com")
	p := createTestProject(t, db, owner.ID, "Mine")

	if _, err := db.GetProject(ctx, p.ID, other.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetProject(other) error = %v, want ErrNotFound", err)
	}

	name := "Stolen"
	if _, err := db.UpdateProject(ctx, p.ID, other.ID, model.ProjectPatch{Name: &name}); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateProject(other) error = %v, want ErrNotFound", err)
	}
	if _, err := db.DeleteProject(ctx, p.ID, other.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteProject(other) error = %v, want ErrNotFound", err)
	}

	list, err := db.ListProjects(ctx, other.ID, repositoryListAll)
	if err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}
	if len(list) != 0 {
		t.Errorf("ListProjects(other) len = %d, want 0", len(list))
	}
}

func TestUpdateProject_PartialFields(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@example.com")
	p := &model.Project{Name: "Old", Description: "keep me", OwnerID: owner.ID}
	if err := db.CreateProject(ctx, p); err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	name := "New"
	updated, err := db.UpdateProject(ctx, p.ID, owner.ID, model.ProjectPatch{Name: &name})
	if err != nil {
		t.Fatalf("UpdateProject() error = %v", err)
	}
	if updated.Name != "New" {
		t.Errorf("Name = %q, want New", updated.Name)
	}
	if updated.Description != "keep me" {
		t.Errorf("Description = %q, want unchanged", updated.Description)
	}
	if updated.UpdatedAt.Before(p.UpdatedAt) {
		t.Error("UpdatedAt went backwards")
	}
}

func TestDeleteProject_CascadesToTickets(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@example.com")
	p := createTestProject(t, db, owner.ID, "P")
	tk := createTestTicket(t, db, p.ID, owner.ID)

	if _, err := db.DeleteProject(ctx, p.ID, owner.ID); err != nil {
		t.Fatalf("DeleteProject() error = %v", err)
	}
	if _, err := db.GetTicket(ctx, tk.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetTicket() after project delete error = %v, want ErrNotFound", err)
	}
}

func TestListProjects_Pagination(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@example.com")
	for _, name := range []string{"a", "b", "c"} {
		createTestProject(t, db, owner.ID, name)
	}

	page, err := db.ListProjects(ctx, owner.ID, repository.ListOptions{Limit: 2})
	if err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("len = %d, want 2", len(page))
	}
	if page[0].Name != "c" {
		t.Errorf("first = %q, want newest project c", page[0].Name)
	}

	rest, err := db.ListProjects(ctx, owner.ID, repository.ListOptions{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}
	if len(rest) != 1 || rest[0].Name != "a" {
		t.Errorf("second page = %+v, want [a]", rest)
	}
}
