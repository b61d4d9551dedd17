package handler

import (
	"net/http"

	"github.com/sakif/devdesk/internal/service"
	"github.com/sakif/devdesk/internal/validation"
)

// GitHubHandler serves the /github endpoints available once an account is
// connected. They act with the caller's stored GitHub token; without one
// they answer 404 "GitHub account not connected".
type GitHubHandler struct {
	github *service.GitHubService
}

func NewGitHubHandler(github *service.GitHubService) *GitHubHandler {
	return &GitHubHandler{github: github}
}

// Connection handles GET /github/connection. Not being connected is a
// normal answer ({"connected": false}), not an error.
func (h *GitHubHandler) Connection(r *http.Request) (*Result, error) {
	user, err := caller(r)
	if err != nil {
		return nil, err
	}
	c, err := h.github.Connection(r.Context(), user.ID)
	if err != nil {
		return nil, err
	}
	return success(c, ""), nil
}

// Repositories handles GET /github/repositories.
func (h *GitHubHandler) Repositories(r *http.Request) (*Result, error) {
	user, err := caller(r)
	if err != nil {
		return nil, err
	}
	repos, err := h.github.Repositories(r.Context(), user.ID)
	if err != nil {
		return nil, err
	}
	return success(list(repos), ""), nil
}

// Link attaches a GitHub repository to a project.
//
// HTTP: POST /github/projects/{project_id}/repositories
// Body: {"github_repo_id": 123, "repo_owner": "octo", "repo_name": "api"}
//
// The repository is looked up on GitHub with the caller's token, so only
// repositories the caller can see are linkable. Linking the same repository
// twice is a 409.
func (h *GitHubHandler) LinkedRepos(r *http.Request) (*Result, error) {
	user, err := caller(r)
	if err != nil {
		return nil, err
	}
	projectID, err := uuidParam(r, "project_id")
	if err != nil {
		return nil, err
	}
	links, err := h.github.LinkedRepos(r.Context(), user.ID, projectID)
	if err != nil {
		return nil, err
	}
	return success(list(links), ""), nil
}

func (h *GitHubHandler) Link(r *http.Request) (*Result, error) {
	user, err := caller(r)
	if err != nil {
		return nil, err
	}
	projectID, err := uuidParam(r, "project_id")
	if err != nil {
		return nil, err
	}
	var req validation.LinkRepoRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	link, err := h.github.Link(r.Context(), user.ID, projectID, req)
	if err != nil {
		return nil, err
	}
	return created(link, "Repository linked"), nil
}

func (h *GitHubHandler) Unlink(r *http.Request) (*Result, error) {
	user, err := caller(r)
	if err != nil {
		return nil, err
	}
	projectID, err := uuidParam(r, "project_id")
	if err != nil {
		return nil, err
	}
	repoID, err := uuidParam(r, "repo_id")
	if err != nil {
		return nil, err
	}
	link, err := h.github.Unlink(r.Context(), user.ID, projectID, repoID)
	if err != nil {
		return nil, err
	}
	return success(link, "Repository unlinked"), nil
}
