package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/devdesk/internal/apperror"
	"github.com/sakif/devdesk/internal/model"
)

func TestNotifications_NewestFirstAndMarkRead(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "u@example.com")
	other := createTestUser(t, db, "o@example.com")

	older := &model.Notification{UserID: user.ID, Message: "older"}
	newer := &model.Notification{UserID: user.ID, Message: "newer"}
	for _, n := range []*model.Notification{older, newer} {
		if err := db.CreateNotification(ctx, n); err != nil {
			t.Fatalf("CreateNotification() error = %v", err)
		}
	}
	if older.Channel != model.ChannelInApp {
		t.Errorf("Channel = %q, want default in_app", older.Channel)
	}

	list, err := db.ListNotifications(ctx, user.ID, repositoryListAll)
	if err != nil {
		t.Fatalf("ListNotifications() error = %v", err)
	}
	if len(list) != 2 || list[0].Message != "newer" {
		t.Fatalf("ListNotifications() = %+v, want newest first", list)
	}

	if _, err := db.MarkNotificationRead(ctx, older.ID, other.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("MarkNotificationRead(other user) error = %v, want ErrNotFound", err)
	}

	read, err := db.MarkNotificationRead(ctx, older.ID, user.ID)
	if err != nil {
		t.Fatalf("MarkNotificationRead() error = %v", err)
	}
	if !read.Read {
		t.Error("Read = false, want true")
	}

	changed, err := db.MarkAllNotificationsRead(ctx, user.ID)
	if err != nil {
		t.Fatalf("MarkAllNotificationsRead() error = %v", err)
	}
	if len(changed) != 1 || changed[0].ID != newer.ID || !changed[0].Read {
		t.Errorf("MarkAllNotificationsRead() = %+v, want only the newer one", changed)
	}

	again, err := db.MarkAllNotificationsRead(ctx, user.ID)
	if err != nil {
		t.Fatalf("MarkAllNotificationsRead() error = %v", err)
	}
	if len(again) != 0 {
		t.Errorf("second MarkAllNotificationsRead() len = %d, want 0", len(again))
	}
}
