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

var _ repository.ActivityRepository = (*DB)(nil)

const activityColumns = `id, ticket_id, actor_id, action, details, created_at`

func (db *DB) CreateActivity(ctx context.Context, a *model.TicketActivity) error {
	a.ID = newID()
	a.CreatedAt = now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO ticket_activity (`+activityColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.TicketID, a.ActorID, a.Action, a.Details, a.CreatedAt,
	)
	if err != nil {
		if isForeignKey(err) {
			return apperror.NotFound("ticket", a.TicketID)
		}
		return fmt.Errorf("sqlite: creating activity: %w", err)
	}
	return nil
}

func (db *DB) ListActivity(ctx context.Context, ticketID string) ([]model.TicketActivity, error) {
	return db.listActivity(ctx,
		`SELECT `+activityColumns+` FROM ticket_activity
		 WHERE ticket_id = ?
		 ORDER BY created_at ASC, rowid ASC`,
		ticketID,
	)
}

func (db *DB) ListActivityByActor(ctx context.Context, ticketID, actorID string) ([]model.TicketActivity, error) {
	return db.listActivity(ctx,
		`SELECT `+activityColumns+` FROM ticket_activity
		 WHERE ticket_id = ? AND actor_id = ?
		 ORDER BY created_at ASC, rowid ASC`,
		ticketID, actorID,
	)
}

func (db *DB) listActivity(ctx context.Context, query string, args ...any) ([]model.TicketActivity, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing activity: %w", err)
	}
	defer rows.Close()

	entries := []model.TicketActivity{}
	for rows.Next() {
		var a model.TicketActivity
		if err := rows.Scan(&a.ID, &a.TicketID, &a.ActorID, &a.Action, &a.Details, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning activity row: %w", err)
		}
		entries = append(entries, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating activity: %w", err)
	}
	return entries, nil
}

func (db *DB) DeleteActivity(ctx context.Context, id, ticketID, actorID string) (*model.TicketActivity, error) {
	var a model.TicketActivity
	err := db.conn.QueryRowContext(ctx,
		`SELECT `+activityColumns+` FROM ticket_activity
		 WHERE id = ? AND ticket_id = ? AND actor_id = ?`,
		id, ticketID, actorID,
	).Scan(&a.ID, &a.TicketID, &a.ActorID, &a.Action, &a.Details, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("activity", id)
		}
		return nil, fmt.Errorf("sqlite: getting activity %s: %w", id, err)
	}

	if _, err := db.conn.ExecContext(ctx, `DELETE FROM ticket_activity WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("sqlite: deleting activity %s: %w", id, err)
	}
	return &a, nil
}
