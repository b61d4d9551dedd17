package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/devdesk/internal/apperror"
	"github.com/sakif/devdesk/internal/model"
)

func TestComments_OrderedOldestFirst(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@example.com")
	p := createTestProject(t, db, owner.ID, "P")
	tk := createTestTicket(t, db, p.ID, owner.ID)

	for _, content := range []string{"first", "second", "third"} {
		if err := db.CreateComment(ctx, &model.TicketComment{TicketID: tk.ID, AuthorID: owner.ID, Content: content}); err != nil {
			t.Fatalf("CreateComment(%s) error = %v", content, err)
		}
	}

	comments, err := db.ListComments(ctx, tk.ID)
	if err != nil {
		t.Fatalf("ListComments() error = %v", err)
	}
	if len(comments) != 3 {
		t.Fatalf("len = %d, want 3", len(comments))
	}
	for i, want := range []string{"first", "second", "third"} {
		if comments[i].Content != want {
			t.Errorf("comments[%d] = %q, want %q", i, comments[i].Content, want)
		}
	}
}

func TestComments_EmptyListIsNotNil(t *testing.T) {
	db := newTestDB(t)

	comments, err := db.ListComments(context.Background(), "no-ticket")
	if err != nil {
		t.Fatalf("ListComments() error = %v", err)
	}
	if comments == nil {
		t.Error("ListComments() returned nil, want empty slice")
	}
}

func TestCreateComment_MissingTicket(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "u@example.com")

	err := db.CreateComment(context.Background(), &model.TicketComment{TicketID: "missing", AuthorID: user.ID, Content: "x"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("CreateComment() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteComment_OnlyAuthor(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@example.com")
	other := createTestUser(t, db, "other@example.com")
	p := createTestProject(t, db, owner.ID, "P")
	tk := createTestTicket(t, db, p.ID, owner.ID)

	c := &model.TicketComment{TicketID: tk.ID, AuthorID: owner.ID, Content: "mine"}
	if err := db.CreateComment(ctx, c); err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}

	if _, err := db.DeleteComment(ctx, c.ID, tk.ID, other.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteComment(other) error = %v, want ErrNotFound", err)
	}

	mine, err := db.ListCommentsByAuthor(ctx, tk.ID, owner.ID)
	if err != nil {
		t.Fatalf("ListCommentsByAuthor() error = %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("ListCommentsByAuthor() len = %d, want 1", len(mine))
	}

	deleted, err := db.DeleteComment(ctx, c.ID, tk.ID, owner.ID)
	if err != nil {
		t.Fatalf("DeleteComment(author) error = %v", err)
	}
	if deleted.Content != "mine" {
		t.Errorf("deleted Content = %q, want mine", deleted.Content)
	}
}

func TestActivity_LifecycleAndOrdering(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@example.com")
	dev := createTestUser(t, db, "dev@example.com")
	p := createTestProject(t, db, owner.ID, "P")
	tk := createTestTicket(t, db, p.ID, owner.ID)

	first := &model.TicketActivity{TicketID: tk.ID, ActorID: owner.ID, Action: "status_changed", Details: "open -> in_progress"}
	second := &model.TicketActivity{TicketID: tk.ID, ActorID: dev.ID, Action: "commented"}
	for _, a := range []*model.TicketActivity{first, second} {
		if err := db.CreateActivity(ctx, a); err != nil {
			t.Fatalf("CreateActivity() error = %v", err)
		}
	}

	all, err := db.ListActivity(ctx, tk.ID)
	if err != nil {
		t.Fatalf("ListActivity() error = %v", err)
	}
	if len(all) != 2 || all[0].ID != first.ID || all[1].ID != second.ID {
		t.Errorf("ListActivity() = %+v, want [first, second]", all)
	}

	devOnly, err := db.ListActivityByActor(ctx, tk.ID, dev.ID)
	if err != nil {
		t.Fatalf("ListActivityByActor() error = %v", err)
	}
	if len(devOnly) != 1 || devOnly[0].Action != "commented" {
		t.Errorf("ListActivityByActor() = %+v", devOnly)
	}

	if _, err := db.DeleteActivity(ctx, first.ID, tk.ID, dev.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteActivity(non-actor) error = %v, want ErrNotFound", err)
	}
	if _, err := db.DeleteActivity(ctx, first.ID, tk.ID, owner.ID); err != nil {
		t.Errorf("DeleteActivity(actor) error = %v", err)
	}
}
