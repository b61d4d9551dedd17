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

var _ repository.ProfileRepository = (*DB)(nil)

const profileColumns = `id, username, full_name, avatar_url, role, created_at, updated_at`

// CreateProfile inserts a profile whose ID must already be set to the owning
// user's ID. A user has at most one profile and usernames are unique.
func (db *DB) CreateProfile(ctx context.Context, p *model.Profile) error {
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO profiles (`+profileColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Username, p.FullName, p.AvatarURL, p.Role, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUnique(err) {
			return apperror.ConflictMessage("Profile already exists or username is taken")
		}
		if isForeignKey(err) {
			return apperror.NotFound("user", p.ID)
		}
		return fmt.Errorf("sqlite: creating profile: %w", err)
	}
	return nil
}

func (db *DB) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	var p model.Profile
	err := db.conn.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id,
	).Scan(&p.ID, &p.Username, &p.FullName, &p.AvatarURL, &p.Role, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("profile", id)
		}
		return nil, fmt.Errorf("sqlite: getting profile %s: %w", id, err)
	}
	return &p, nil
}

func (db *DB) ListProfiles(ctx context.Context, opts repository.ListOptions) ([]model.Profile, error) {
	limit, offset := opts.Bounds()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM profiles
		 ORDER BY username ASC
		 LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]model.Profile, 0, limit)
	for rows.Next() {
		var p model.Profile
		if err := rows.Scan(&p.ID, &p.Username, &p.FullName, &p.AvatarURL, &p.Role, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning profile row: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating profiles: %w", err)
	}
	return profiles, nil
}

// UpdateProfile applies the non-nil fields of patch and returns the updated row.
func (db *DB) UpdateProfile(ctx context.Context, id string, patch model.ProfilePatch) (*model.Profile, error) {
	var set setClause
	if patch.Username != nil {
		set.add("username", *patch.Username)
	}
	if patch.FullName != nil {
		set.add("full_name", *patch.FullName)
	}
	if patch.AvatarURL != nil {
		set.add("avatar_url", *patch.AvatarURL)
	}
	if patch.Role != nil {
		set.add("role", *patch.Role)
	}
	set.add("updated_at", now())

	args := append(set.args, id)
	result, err := db.conn.ExecContext(ctx,
		`UPDATE profiles SET `+set.String()+` WHERE id = ?`, args...)
	if err != nil {
		if isUnique(err) {
			return nil, apperror.ConflictMessage("Username is already taken")
		}
		return nil, fmt.Errorf("sqlite: updating profile %s: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return nil, apperror.NotFound("profile", id)
	}
	return db.GetProfile(ctx, id)
}

// DeleteProfile removes the profile and returns the deleted row.
func (db *DB) DeleteProfile(ctx context.Context, id string) (*model.Profile, error) {
	p, err := db.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("sqlite: deleting profile %s: %w", id, err)
	}
	return p, nil
}
