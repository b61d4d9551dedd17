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

var _ repository.TicketRepository = (*DB)(nil)

func unknownAssignee() error {
	return apperror.ValidationFailed("assigned_to", "assigned_to must reference an existing user")
}

const ticketColumns = `id, project_id, title, description, status, priority,
	created_by, assigned_to, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(s rowScanner) (*model.Ticket, error) {
	var (
		t        model.Ticket
		assignee sql.NullString
	)
	err := s.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.CreatedBy, &assignee, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if assignee.Valid {
		t.AssignedTo = &assignee.String
	}
	return &t, nil
}

// CreateTicket inserts a ticket. Status and priority default to open and
// medium when empty. An assignee that does not exist is a validation error;
// a missing project or creator is not found.
func (db *DB) CreateTicket(ctx context.Context, t *model.Ticket) error {
	t.ID = newID()
	t.CreatedAt = now()
	t.UpdatedAt = t.CreatedAt
	if t.Status == "" {
		t.Status = model.StatusOpen
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO tickets (`+ticketColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ProjectID, t.Title, t.Description, t.Status, t.Priority,
		t.CreatedBy, nullString(t.AssignedTo), t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isForeignKey(err) {
			if refErr := db.missingTicketRef(ctx, t); refErr != nil {
				return refErr
			}
		}
		return fmt.Errorf("sqlite: creating ticket: %w", err)
	}
	return nil
}

// missingTicketRef works out which reference broke a FOREIGN KEY constraint.
// SQLite reports the violation without naming the column.
func (db *DB) missingTicketRef(ctx context.Context, t *model.Ticket) error {
	if t.AssignedTo != nil && !db.exists(ctx, "users", *t.AssignedTo) {
		return unknownAssignee()
	}
	if !db.exists(ctx, "projects", t.ProjectID) {
		return apperror.NotFound("project", t.ProjectID)
	}
	if !db.exists(ctx, "users", t.CreatedBy) {
		return apperror.NotFound("user", t.CreatedBy)
	}
	return nil
}

// exists reports whether table has a row with id. Lookup errors count as
// present so the caller falls back to the original error.
func (db *DB) exists(ctx context.Context, table, id string) bool {
	var one int
	err := db.conn.QueryRowContext(ctx, `SELECT 1 FROM `+table+` WHERE id = ?`, id).Scan(&one)
	return !errors.Is(err, sql.ErrNoRows)
}

func (db *DB) GetTicket(ctx context.Context, id string) (*model.Ticket, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE id = ?`, id)
	t, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("ticket", id)
		}
		return nil, fmt.Errorf("sqlite: getting ticket %s: %w", id, err)
	}
	return t, nil
}

func (db *DB) ListTicketsByProject(ctx context.Context, projectID string, opts repository.ListOptions) ([]model.Ticket, error) {
	limit, offset := opts.Bounds()
	return db.listTickets(ctx,
		`SELECT `+ticketColumns+` FROM tickets
		 WHERE project_id = ?
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ? OFFSET ?`,
		limit, projectID, limit, offset,
	)
}

func (db *DB) ListTicketsForUser(ctx context.Context, userID string, opts repository.ListOptions) ([]model.Ticket, error) {
	limit, offset := opts.Bounds()
	return db.listTickets(ctx,
		`SELECT `+ticketColumns+` FROM tickets
		 WHERE created_by = ? OR assigned_to = ?
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ? OFFSET ?`,
		limit, userID, userID, limit, offset,
	)
}

func (db *DB) listTickets(ctx context.Context, query string, capacity int, args ...any) ([]model.Ticket, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tickets: %w", err)
	}
	defer rows.Close()

	tickets := make([]model.Ticket, 0, capacity)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning ticket row: %w", err)
		}
		tickets = append(tickets, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tickets: %w", err)
	}
	return tickets, nil
}

// UpdateTicket applies the non-nil fields of patch and returns the updated row.
func (db *DB) UpdateTicket(ctx context.Context, id string, patch model.TicketPatch) (*model.Ticket, error) {
	var set setClause
	if patch.Title != nil {
		set.add("title", *patch.Title)
	}
	if patch.Description != nil {
		set.add("description", *patch.Description)
	}
	if patch.Status != nil {
		set.add("status", *patch.Status)
	}
	if patch.Priority != nil {
		set.add("priority", *patch.Priority)
	}
	switch {
	case patch.ClearAssignee:
		set.add("assigned_to", nil)
	case patch.AssignedTo != nil:
		set.add("assigned_to", *patch.AssignedTo)
	}
	set.add("updated_at", now())

	args := append(set.args, id)
	result, err := db.conn.ExecContext(ctx,
		`UPDATE tickets SET `+set.String()+` WHERE id = ?`, args...)
	if err != nil {
		// assigned_to is the only reference a patch can change.
		if isForeignKey(err) && patch.AssignedTo != nil && !patch.ClearAssignee {
			return nil, unknownAssignee()
		}
		return nil, fmt.Errorf("sqlite: updating ticket %s: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return nil, apperror.NotFound("ticket", id)
	}
	return db.GetTicket(ctx, id)
}

// DeleteTicket removes the ticket with its comments and activity and returns
// the deleted ticket.
func (db *DB) DeleteTicket(ctx context.Context, id string) (*model.Ticket, error) {
	t, err := db.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM tickets WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("sqlite: deleting ticket %s: %w", id, err)
	}
	return t, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
