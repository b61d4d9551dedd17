package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakif/devdesk/internal/apperror"
	"github.com/sakif/devdesk/internal/model"
	"github.com/sakif/devdesk/internal/repository"
)

var _ repository.NotificationRepository = (*DB)(nil)

const notificationColumns = `id, user_id, message, channel, read, created_at`

func (db *DB) CreateNotification(ctx context.Context, n *model.Notification) error {
	n.ID = newID()
	n.CreatedAt = now()
	if n.Channel == "" {
		n.Channel = model.ChannelInApp
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO notifications (`+notificationColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.Message, n.Channel, n.Read, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating notification: %w", err)
	}
	return nil
}

func (db *DB) ListNotifications(ctx context.Context, userID string, opts repository.ListOptions) ([]model.Notification, error) {
	limit, offset := opts.Bounds()
	return db.listNotifications(ctx,
		`SELECT `+notificationColumns+` FROM notifications
		 WHERE user_id = ?
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
}

// MarkNotificationRead flags one of userID's notifications as read.
func (db *DB) MarkNotificationRead(ctx context.Context, id, userID string) (*model.Notification, error) {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE notifications SET read = 1 WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: marking notification %s read: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return nil, apperror.NotFound("notification", id)
	}

	var out model.Notification
	err = db.conn.QueryRowContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, id,
	).Scan(&out.ID, &out.UserID, &out.Message, &out.Channel, &out.Read, &out.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("notification", id)
		}
		return nil, fmt.Errorf("sqlite: getting notification %s: %w", id, err)
	}
	return &out, nil
}

// MarkAllNotificationsRead flags every unread notification of userID as read
// and returns the rows that changed.
func (db *DB) MarkAllNotificationsRead(ctx context.Context, userID string) ([]model.Notification, error) {
	unread, err := db.listNotifications(ctx,
		`SELECT `+notificationColumns+` FROM notifications
		 WHERE user_id = ? AND read = 0
		 ORDER BY created_at DESC, rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	if len(unread) == 0 {
		return unread, nil
	}

	if _, err := db.conn.ExecContext(ctx,
		`UPDATE notifications SET read = 1 WHERE user_id = ? AND read = 0`, userID); err != nil {
		return nil, fmt.Errorf("sqlite: marking notifications read: %w", err)
	}
	for i := range unread {
		unread[i].Read = true
	}
	return unread, nil
}

func (db *DB) listNotifications(ctx context.Context, query string, args ...any) ([]model.Notification, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing notifications: %w", err)
	}
	defer rows.Close()

	out := []model.Notification{}
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Channel, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning notification row: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating notifications: %w", err)
	}
	return out, nil
}
