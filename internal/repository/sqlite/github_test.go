package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/devdesk/internal/apperror"
	"github.com/sakif/devdesk/internal/model"
)

func TestGitHubToken_UpsertReplaces(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "gh@example.com")

	if _, err := db.GetGitHubToken(ctx, user.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("GetGitHubToken() before link error = %v, want ErrNotFound", err)
	}

	tok := &model.GitHubToken{UserID: user.ID, AccessToken: "one", GitHubUsername: "octo", GitHubUserID: 7}
	if err := db.UpsertGitHubToken(ctx, tok); err != nil {
		t.Fatalf("UpsertGitHubToken() error = %v", err)
	}
	tok2 := &model.GitHubToken{UserID: user.ID, AccessToken: "two", GitHubUsername: "octo2", GitHubUserID: 7}
	if err := db.UpsertGitHubToken(ctx, tok2); err != nil {
		t.Fatalf("second UpsertGitHubToken() error = %v", err)
	}

	got, err := db.GetGitHubToken(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetGitHubToken() error = %v", err)
	}
	if got.AccessToken != "two" || got.GitHubUsername != "octo2" {
		t.Errorf("GetGitHubToken() = %+v, want replaced token", got)
	}

	if err := db.DeleteGitHubToken(ctx, user.ID); err != nil {
		t.Fatalf("DeleteGitHubToken() error = %v", err)
	}
	if err := db.DeleteGitHubToken(ctx, user.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second DeleteGitHubToken() error = %v, want ErrNotFound", err)
	}
}

func TestLinkRepo_DuplicateIsConflict(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@example.com")
	p := createTestProject(t, db, owner.ID, "P")
	q := createTestProject(t, db, owner.ID, "Q")

	link := func(projectID string) error {
		return db.LinkRepo(ctx, &model.LinkedRepo{
			ProjectID: projectID, RepoOwner: "octo", RepoName: "hello", GitHubRepoID: 42,
		})
	}

	if err := link(p.ID); err != nil {
		t.Fatalf("LinkRepo() error = %v", err)
	}
	if err := link(p.ID); !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("duplicate LinkRepo() error = %v, want ErrConflict", err)
	}
	if err := link(q.ID); err != nil {
		t.Errorf("LinkRepo() to another project error = %v, want nil", err)
	}
}

func TestUnlinkRepo_ScopedByProject(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@example.com")
	p := createTestProject(t, db, owner.ID, "P")
	q := createTestProject(t, db, owner.ID, "Q")

	r := &model.LinkedRepo{ProjectID: p.ID, RepoOwner: "octo", RepoName: "hello", GitHubRepoID: 1}
	if err := db.LinkRepo(ctx, r); err != nil {
		t.Fatalf("LinkRepo() error = %v", err)
	}

	if _, err := db.UnlinkRepo(ctx, r.ID, q.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UnlinkRepo(wrong project) error = %v, want ErrNotFound", err)
	}

	deleted, err := db.UnlinkRepo(ctx, r.ID, p.ID)
	if err != nil {
		t.Fatalf("UnlinkRepo() error = %v", err)
	}
	if deleted.GitHubRepoID != 1 {
		t.Errorf("deleted GitHubRepoID = %d, want 1", deleted.GitHubRepoID)
	}

	repos, err := db.ListLinkedRepos(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListLinkedRepos() error = %v", err)
	}
	if len(repos) != 0 {
		t.Errorf("ListLinkedRepos() len = %d, want 0", len(repos))
	}
}

func TestDeleteGitHubToken_KeepsLinkedRepos(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@example.com")
	p := createTestProject(t, db, owner.ID, "P")

	if err := db.UpsertGitHubToken(ctx, &model.GitHubToken{UserID: owner.ID, AccessToken: "t"}); err != nil {
		t.Fatalf("UpsertGitHubToken() error = %v", err)
	}
	if err := db.LinkRepo(ctx, &model.LinkedRepo{ProjectID: p.ID, RepoOwner: "o", RepoName: "n", GitHubRepoID: 5}); err != nil {
		t.Fatalf("LinkRepo() error = %v", err)
	}
	if err := db.DeleteGitHubToken(ctx, owner.ID); err != nil {
		t.Fatalf("DeleteGitHubToken() error = %v", err)
	}

	repos, err := db.ListLinkedRepos(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListLinkedRepos() error = %v", err)
	}
	if len(repos) != 1 {
		t.Errorf("ListLinkedRepos() len = %d, want 1", len(repos))
	}
}
