package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sakif/devdesk/internal/apperror"
	"github.com/sakif/devdesk/internal/model"
	"github.com/sakif/devdesk/internal/repository"
)

var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, email, password_hash, metadata, created_at, updated_at`

// CreateUser inserts a new account. Emails are stored lower-cased; a second
// account with the same email is a conflict.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	user.ID = newID()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.CreatedAt = now()
	user.UpdatedAt = user.CreatedAt
	if user.Metadata == nil {
		user.Metadata = map[string]any{}
	}

	meta, err := json.Marshal(user.Metadata)
	if err != nil {
		return fmt.Errorf("sqlite: encoding user metadata: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.PasswordHash, string(meta), user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUnique(err) {
			return apperror.ConflictMessage("An account with this email already exists")
		}
		return fmt.Errorf("sqlite: creating user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by their internal ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return u, nil
}

// GetUserByEmail looks a user up case-insensitively.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFoundMessage("user not found")
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}
	return u, nil
}

// UpdateUserMetadata merges metadata into the stored object.
func (db *DB) UpdateUserMetadata(ctx context.Context, id string, metadata map[string]any) error {
	u, err := db.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	for k, v := range metadata {
		u.Metadata[k] = v
	}

	meta, err := json.Marshal(u.Metadata)
	if err != nil {
		return fmt.Errorf("sqlite: encoding user metadata: %w", err)
	}

	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET metadata = ?, updated_at = ? WHERE id = ?`,
		string(meta), now(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating user %s metadata: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("user", id)
	}
	return nil
}

func scanUser(row *sql.Row) (*model.User, error) {
	var (
		u    model.User
		meta string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &meta, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Metadata = map[string]any{}
	if meta != "" {
		if err := json.Unmarshal([]byte(meta), &u.Metadata); err != nil {
			return nil, fmt.Errorf("decoding metadata: %w", err)
		}
	}
	return &u, nil
}
