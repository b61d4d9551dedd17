// Package githubapi is a small client for the parts of the GitHub REST API
// DevDesk uses: the authenticated user, their emails and repositories.
package githubapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sakif/devdesk/internal/apperror"
	"github.com/sakif/devdesk/internal/model"
)

const DefaultBaseURL = "https://api.github.com"

// User is the authenticated GitHub account.
type User struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type email struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

type repo struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Owner struct {
		Login string `json:"login"`
	} `json:"owner"`
	FullName      string    `json:"full_name"`
	Private       bool      `json:"private"`
	Description   *string   `json:"description"`
	HTMLURL       string    `json:"html_url"`
	CloneURL      string    `json:"clone_url"`
	DefaultBranch string    `json:"default_branch"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (r repo) toModel() model.GitHubRepo {
	out := model.GitHubRepo{
		ID:            r.ID,
		Name:          r.Name,
		FullName:      r.FullName,
		Owner:         r.Owner.Login,
		Private:       r.Private,
		HTMLURL:       r.HTMLURL,
		CloneURL:      r.CloneURL,
		DefaultBranch: r.DefaultBranch,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.Description != nil {
		out.Description = *r.Description
	}
	return out
}

// Client talks to the API on behalf of one user. The http.Client passed in
// is expected to attach the user's token (see auth.TokenClient).
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *Client) User(ctx context.Context) (*User, error) {
	var u User
	if err := c.get(ctx, "/user", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// PrimaryEmail returns the verified primary address, or the first verified
// one when none is marked primary. It returns "" when there is none.
func (c *Client) PrimaryEmail(ctx context.Context) (string, error) {
	var emails []email
	if err := c.get(ctx, "/user/emails", nil, &emails); err != nil {
		return "", err
	}
	var fallback string
	for _, e := range emails {
		if !e.Verified {
			continue
		}
		if e.Primary {
			return e.Email, nil
		}
		if fallback == "" {
			fallback = e.Email
		}
	}
	return fallback, nil
}

// ListRepos returns the user's repositories, most recently updated first.
func (c *Client) ListRepos(ctx context.Context) ([]model.GitHubRepo, error) {
	q := url.Values{}
	q.Set("sort", "updated")
	q.Set("per_page", "100")

	var repos []repo
	if err := c.get(ctx, "/user/repos", q, &repos); err != nil {
		return nil, err
	}
	out := make([]model.GitHubRepo, 0, len(repos))
	for _, r := range repos {
		out = append(out, r.toModel())
	}
	return out, nil
}

// GetRepo returns owner/name. A repository the token cannot see is
// reported as apperror.ErrNotFound.
func (c *Client) GetRepo(ctx context.Context, owner, name string) (*model.GitHubRepo, error) {
	var r repo
	path := "/repos/" + url.PathEscape(owner) + "/" + url.PathEscape(name)
	if err := c.get(ctx, path, nil, &r); err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return nil, apperror.NotFoundMessage(fmt.Sprintf("GitHub repository %s/%s not found", owner, name))
		}
		return nil, err
	}
	m := r.toModel()
	return &m, nil
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("githubapi: unexpected status %d: %s", e.Code, e.Body)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("githubapi: building request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "devdesk")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("githubapi: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("githubapi: decoding %s: %w", path, err)
	}
	return nil
}
