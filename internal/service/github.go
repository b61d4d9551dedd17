package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/sakif/devdesk/internal/apperror"
	"github.com/sakif/devdesk/internal/githubapi"
	"github.com/sakif/devdesk/internal/model"
	"github.com/sakif/devdesk/internal/repository"
	"github.com/sakif/devdesk/internal/validation"
)

// GitHubClient is the subset of the GitHub API DevDesk calls.
// *githubapi.Client implements it.
type GitHubClient interface {
	User(ctx context.Context) (*githubapi.User, error)
	PrimaryEmail(ctx context.Context) (string, error)
	ListRepos(ctx context.Context) ([]model.GitHubRepo, error)
	GetRepo(ctx context.Context, owner, name string) (*model.GitHubRepo, error)
}

// GitHubClientFactory builds a client acting with accessToken.
type GitHubClientFactory func(ctx context.Context, accessToken string) GitHubClient

// GitHubService serves the "linked" state: browsing the caller's
// repositories and attaching them to projects.
type GitHubService struct {
	github  repository.GitHubRepository
	access  access
	clients GitHubClientFactory
	logger  *slog.Logger
}

func NewGitHubService(
	github repository.GitHubRepository,
	projects repository.ProjectRepository,
	clients GitHubClientFactory,
	logger *slog.Logger,
) *GitHubService {
	return &GitHubService{
		github:  github,
		access:  access{projects: projects},
		clients: clients,
		logger:  logger,
	}
}

func (s *GitHubService) Connection(ctx context.Context, callerID string) (*model.GitHubConnection, error) {
	tok, err := s.github.GetGitHubToken(ctx, callerID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return &model.GitHubConnection{Connected: false}, nil
		}
		return nil, err
	}
	return &model.GitHubConnection{
		Connected:      true,
		GitHubUsername: tok.GitHubUsername,
		AvatarURL:      tok.AvatarURL,
	}, nil
}

// Repositories lists the caller's GitHub repositories, most recently
// updated first.
func (s *GitHubService) Repositories(ctx context.Context, callerID string) ([]model.GitHubRepo, error) {
	client, err := s.client(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return client.ListRepos(ctx)
}

func (s *GitHubService) LinkedRepos(ctx context.Context, callerID, projectID string) ([]model.LinkedRepo, error) {
	if _, err := s.access.ownedProject(ctx, projectID, callerID); err != nil {
		return nil, err
	}
	return s.github.ListLinkedRepos(ctx, projectID)
}

// Link attaches a repository to the project after confirming with GitHub
// that the caller can see it.
func (s *GitHubService) Link(ctx context.Context, callerID, projectID string, req validation.LinkRepoRequest) (*model.LinkedRepo, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if _, err := s.access.ownedProject(ctx, projectID, callerID); err != nil {
		return nil, err
	}

	client, err := s.client(ctx, callerID)
	if err != nil {
		return nil, err
	}
	repo, err := client.GetRepo(ctx, strings.TrimSpace(req.RepoOwner), strings.TrimSpace(req.RepoName))
	if err != nil {
		return nil, err
	}
	if repo.ID != req.GitHubRepoID {
		return nil, apperror.ValidationFailed("github_repo_id", "github_repo_id does not match the repository")
	}

	link := &model.LinkedRepo{
		ProjectID:     projectID,
		RepoOwner:     repo.Owner,
		RepoName:      repo.Name,
		GitHubRepoID:  repo.ID,
		FullName:      repo.FullName,
		CloneURL:      repo.CloneURL,
		HTMLURL:       repo.HTMLURL,
		DefaultBranch: repo.DefaultBranch,
	}
	if err := s.github.LinkRepo(ctx, link); err != nil {
		return nil, err
	}

	s.logger.Info("repository linked",
		slog.String("projectID", projectID),
		slog.String("repo", link.FullName),
	)
	return link, nil
}

func (s *GitHubService) Unlink(ctx context.Context, callerID, projectID, linkID string) (*model.LinkedRepo, error) {
	if _, err := s.access.ownedProject(ctx, projectID, callerID); err != nil {
		return nil, err
	}
	return s.github.UnlinkRepo(ctx, linkID, projectID)
}

func (s *GitHubService) client(ctx context.Context, callerID string) (GitHubClient, error) {
	tok, err := s.github.GetGitHubToken(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return s.clients(ctx, tok.AccessToken), nil
}
