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

var _ repository.CommentRepository = (*DB)(nil)

const commentColumns = `id, ticket_id, author_id, content, created_at`

func (db *DB) CreateComment(ctx context.Context, c *model.TicketComment) error {
	c.ID = newID()
	c.CreatedAt = now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO ticket_comments (`+commentColumns+`) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.TicketID, c.AuthorID, c.Content, c.CreatedAt,
	)
	if err != nil {
		if isForeignKey(err) {
			return apperror.NotFound("ticket", c.TicketID)
		}
		return fmt.Errorf("sqlite: creating comment: %w", err)
	}
	return nil
}

func (db *DB) ListComments(ctx context.Context, ticketID string) ([]model.TicketComment, error) {
	return db.listComments(ctx,
		`SELECT `+commentColumns+` FROM ticket_comments
		 WHERE ticket_id = ?
		 ORDER BY created_at ASC, rowid ASC`,
		ticketID,
	)
}

func (db *DB) ListCommentsByAuthor(ctx context.Context, ticketID, authorID string) ([]model.TicketComment, error) {
	return db.listComments(ctx,
		`SELECT `+commentColumns+` FROM ticket_comments
		 WHERE ticket_id = ? AND author_id = ?
		 ORDER BY created_at ASC, rowid ASC`,
		ticketID, authorID,
	)
}

func (db *DB) listComments(ctx context.Context, query string, args ...any) ([]model.TicketComment, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments: %w", err)
	}
	defer rows.Close()

	comments := []model.TicketComment{}
	for rows.Next() {
		var c model.TicketComment
		if err := rows.Scan(&c.ID, &c.TicketID, &c.AuthorID, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}
	return comments, nil
}

// DeleteComment removes a comment only when it belongs to ticketID and was
// written by authorID, and returns the deleted row.
func (db *DB) DeleteComment(ctx context.Context, id, ticketID, authorID string) (*model.TicketComment, error) {
	var c model.TicketComment
	err := db.conn.QueryRowContext(ctx,
		`SELECT `+commentColumns+` FROM ticket_comments
		 WHERE id = ? AND ticket_id = ? AND author_id = ?`,
		id, ticketID, authorID,
	).Scan(&c.ID, &c.TicketID, &c.AuthorID, &c.Content, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %s: %w", id, err)
	}

	if _, err := db.conn.ExecContext(ctx, `DELETE FROM ticket_comments WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("sqlite: deleting comment %s: %w", id, err)
	}
	return &c, nil
}
