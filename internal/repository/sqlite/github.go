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

var _ repository.GitHubRepository = (*DB)(nil)

const tokenColumns = `user_id, access_token, refresh_token, github_username, github_user_id, avatar_url, updated_at`

const linkedRepoColumns = `id, project_id, repo_owner, repo_name, github_repo_id,
	full_name, clone_url, html_url, default_branch, created_at`

// UpsertGitHubToken stores the user's GitHub credential, replacing any
// previous one.
func (db *DB) UpsertGitHubToken(ctx context.Context, t *model.GitHubToken) error {
	t.UpdatedAt = now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO github_user_tokens (`+tokenColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
			access_token    = excluded.access_token,
			refresh_token   = excluded.refresh_token,
			github_username = excluded.github_username,
			github_user_id  = excluded.github_user_id,
			avatar_url      = excluded.avatar_url,
			updated_at      = excluded.updated_at`,
		t.UserID, t.AccessToken, t.RefreshToken, t.GitHubUsername, t.GitHubUserID, t.AvatarURL, t.UpdatedAt,
	)
	if err != nil {
		if isForeignKey(err) {
			return apperror.NotFound("user", t.UserID)
		}
		return fmt.Errorf("sqlite: upserting github token: %w", err)
	}
	return nil
}

func (db *DB) GetGitHubToken(ctx context.Context, userID string) (*model.GitHubToken, error) {
	var t model.GitHubToken
	err := db.conn.QueryRowContext(ctx,
		`SELECT `+tokenColumns+` FROM github_user_tokens WHERE user_id = ?`, userID,
	).Scan(&t.UserID, &t.AccessToken, &t.RefreshToken, &t.GitHubUsername, &t.GitHubUserID, &t.AvatarURL, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFoundMessage("GitHub account not connected")
		}
		return nil, fmt.Errorf("sqlite: getting github token: %w", err)
	}
	return &t, nil
}

// DeleteGitHubToken removes the credential. Linked repositories are kept.
func (db *DB) DeleteGitHubToken(ctx context.Context, userID string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM github_user_tokens WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting github token: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFoundMessage("GitHub account not connected")
	}
	return nil
}

func (db *DB) LinkRepo(ctx context.Context, r *model.LinkedRepo) error {
	r.ID = newID()
	r.CreatedAt = now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO github_linked_repos (`+linkedRepoColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ProjectID, r.RepoOwner, r.RepoName, r.GitHubRepoID,
		r.FullName, r.CloneURL, r.HTMLURL, r.DefaultBranch, r.CreatedAt,
	)
	if err != nil {
		if isUnique(err) {
			return apperror.ConflictMessage("Repository already linked to this project")
		}
		if isForeignKey(err) {
			return apperror.NotFound("project", r.ProjectID)
		}
		return fmt.Errorf("sqlite: linking repository: %w", err)
	}
	return nil
}

func (db *DB) ListLinkedRepos(ctx context.Context, projectID string) ([]model.LinkedRepo, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+linkedRepoColumns+` FROM github_linked_repos
		 WHERE project_id = ?
		 ORDER BY created_at ASC, rowid ASC`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing linked repositories: %w", err)
	}
	defer rows.Close()

	repos := []model.LinkedRepo{}
	for rows.Next() {
		r, err := scanLinkedRepo(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning linked repository row: %w", err)
		}
		repos = append(repos, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating linked repositories: %w", err)
	}
	return repos, nil
}

// UnlinkRepo removes the link only when it belongs to projectID.
func (db *DB) UnlinkRepo(ctx context.Context, id, projectID string) (*model.LinkedRepo, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+linkedRepoColumns+` FROM github_linked_repos
		 WHERE id = ? AND project_id = ?`,
		id, projectID,
	)
	r, err := scanLinkedRepo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("linked repository", id)
		}
		return nil, fmt.Errorf("sqlite: getting linked repository %s: %w", id, err)
	}

	if _, err := db.conn.ExecContext(ctx,
		`DELETE FROM github_linked_repos WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("sqlite: unlinking repository %s: %w", id, err)
	}
	return r, nil
}

func scanLinkedRepo(s rowScanner) (*model.LinkedRepo, error) {
	var r model.LinkedRepo
	err := s.Scan(&r.ID, &r.ProjectID, &r.RepoOwner, &r.RepoName, &r.GitHubRepoID,
		&r.FullName, &r.CloneURL, &r.HTMLURL, &r.DefaultBranch, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
