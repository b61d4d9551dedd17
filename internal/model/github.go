package model

import "time"

// GitHubToken is the OAuth credential a user granted through the GitHub
// connection flow. Tokens are never serialized.
type GitHubToken struct {
	UserID         string    `json:"user_id"`
	AccessToken    string    `json:"-"`
	RefreshToken   string    `json:"-"`
	GitHubUsername string    `json:"github_username"`
	GitHubUserID   int64     `json:"github_user_id"`
	AvatarURL      string    `json:"avatar_url"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// LinkedRepo associates a GitHub repository with a project.
// A repository can be linked to a given project at most once.
type LinkedRepo struct {
	ID            string    `json:"id"`
	ProjectID     string    `json:"project_id"`
	RepoOwner     string    `json:"repo_owner"`
	RepoName      string    `json:"repo_name"`
	GitHubRepoID  int64     `json:"github_repo_id"`
	FullName      string    `json:"full_name"`
	CloneURL      string    `json:"clone_url"`
	HTMLURL       string    `json:"html_url"`
	DefaultBranch string    `json:"default_branch"`
	CreatedAt     time.Time `json:"created_at"`
}

// GitHubConnection describes whether the caller has a GitHub account linked.
type GitHubConnection struct {
	Connected      bool   `json:"connected"`
	GitHubUsername string `json:"github_username,omitempty"`
	AvatarURL      string `json:"avatar_url,omitempty"`
}

// GitHubRepo is a repository as reported by the GitHub API.
type GitHubRepo struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	FullName      string    `json:"full_name"`
	Owner         string    `json:"owner"`
	Private       bool      `json:"private"`
	Description   string    `json:"description"`
	HTMLURL       string    `json:"html_url"`
	CloneURL      string    `json:"clone_url"`
	DefaultBranch string    `json:"default_branch"`
	UpdatedAt     time.Time `json:"updated_at"`
}
