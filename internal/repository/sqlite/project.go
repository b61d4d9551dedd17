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

var _ repository.ProjectRepository = (*DB)(nil)

const projectColumns = `id, name, description, owner_id, created_at, updated_at`

func (db *DB) CreateProject(ctx context.Context, p *model.Project) error {
	p.ID = newID()
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO projects (`+projectColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.OwnerID, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating project: %w", err)
	}
	return nil
}

// GetProject returns the project only when ownerID owns it. A project owned
// by someone else is reported as not found.
func (db *DB) GetProject(ctx context.Context, id, ownerID string) (*model.Project, error) {
	var p model.Project
	err := db.conn.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	).Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("project", id)
		}
		return nil, fmt.Errorf("sqlite: getting project %s: %w", id, err)
	}
	return &p, nil
}

func (db *DB) ListProjects(ctx context.Context, ownerID string, opts repository.ListOptions) ([]model.Project, error) {
	limit, offset := opts.Bounds()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects
		 WHERE owner_id = ?
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ? OFFSET ?`,
		ownerID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing projects: %w", err)
	}
	defer rows.Close()

	projects := make([]model.Project, 0, limit)
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning project row: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating projects: %w", err)
	}
	return projects, nil
}

func (db *DB) UpdateProject(ctx context.Context, id, ownerID string, patch model.ProjectPatch) (*model.Project, error) {
	var set setClause
	if patch.Name != nil {
		set.add("name", *patch.Name)
	}
	if patch.Description != nil {
		set.add("description", *patch.Description)
	}
	set.add("updated_at", now())

	args := append(set.args, id, ownerID)
	result, err := db.conn.ExecContext(ctx,
		`UPDATE projects SET `+set.String()+` WHERE id = ? AND owner_id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating project %s: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return nil, apperror.NotFound("project", id)
	}
	return db.GetProject(ctx, id, ownerID)
}

// DeleteProject removes the project along with its tickets, comments,
// activity and linked repositories, and returns the deleted project.
func (db *DB) DeleteProject(ctx context.Context, id, ownerID string) (*model.Project, error) {
	p, err := db.GetProject(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if _, err := db.conn.ExecContext(ctx,
		`DELETE FROM projects WHERE id = ? AND owner_id = ?`, id, ownerID); err != nil {
		return nil, fmt.Errorf("sqlite: deleting project %s: %w", id, err)
	}
	return p, nil
}
