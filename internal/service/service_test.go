package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"

	"github.com/sakif/devdesk/internal/apperror"
	"github.com/sakif/devdesk/internal/auth"
	"github.com/sakif/devdesk/internal/githubapi"
	"github.com/sakif/devdesk/internal/logger"
	"github.com/sakif/devdesk/internal/model"
	"github.com/sakif/devdesk/internal/repository/sqlite"
)

// testEnv is a service stack over a fresh in-memory database.
type testEnv struct {
	db     *sqlite.DB
	tokens *auth.TokenService
	auth   *AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService(auth.TokenConfig{Secret: "service-test-secret-0123456789"})
	require.NoError(t, err)

	return &testEnv{
		db:     db,
		tokens: tokens,
		auth:   NewAuthService(db, tokens, auth.NewPasswordServiceForTest(bcrypt.MinCost), logger.Discard()),
	}
}

func (e *testEnv) user(t *testing.T, email string) *model.User {
	t.Helper()
	u := &model.User{Email: email}
	require.NoError(t, e.db.CreateUser(context.Background(), u))
	return u
}

func (e *testEnv) project(t *testing.T, ownerID string) *model.Project {
	t.Helper()
	p := &model.Project{Name: "Apollo", OwnerID: ownerID}
	require.NoError(t, e.db.CreateProject(context.Background(), p))
	return p
}

func (e *testEnv) ticket(t *testing.T, projectID, createdBy string, assignee *string) *model.Ticket {
	t.Helper()
	tk := &model.Ticket{
		ProjectID:   projectID,
		Title:       "Login broken",
		Description: "500 on submit",
		CreatedBy:   createdBy,
		AssignedTo:  assignee,
	}
	require.NoError(t, e.db.CreateTicket(context.Background(), tk))
	return tk
}

func requireKind(t *testing.T, err error, kind error) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, errors.Is(err, kind), "error %v is not %v", err, kind)
}

func appMessage(t *testing.T, err error) string {
	t.Helper()
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr), "error %v is not an AppError", err)
	return appErr.Message
}

func strPtr(s string) *string { return &s }

// fakeMailer records sent messages.
type fakeMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *fakeMailer) Send(to, subject, plainBody, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to)
	return nil
}

// fakeGitHub serves canned API responses.
type fakeGitHub struct {
	user     *githubapi.User
	email    string
	repos    []model.GitHubRepo
	err      error
	gotToken string
}

func (f *fakeGitHub) factory() GitHubClientFactory {
	return func(_ context.Context, accessToken string) GitHubClient {
		f.gotToken = accessToken
		return f
	}
}

func (f *fakeGitHub) User(context.Context) (*githubapi.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f *fakeGitHub) PrimaryEmail(context.Context) (string, error) { return f.email, f.err }

func (f *fakeGitHub) ListRepos(context.Context) ([]model.GitHubRepo, error) { return f.repos, f.err }

func (f *fakeGitHub) GetRepo(_ context.Context, owner, name string) (*model.GitHubRepo, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.repos {
		if r.Owner == owner && r.Name == name {
			r := r
			return &r, nil
		}
	}
	return nil, apperror.NotFoundMessage("GitHub repository not found")
}

type fakeOAuth struct {
	token *oauth2.Token
	err   error
}

func (f *fakeOAuth) AuthURL(state string) string {
	return "https://github.example/login/oauth/authorize?state=" + state
}

func (f *fakeOAuth) Exchange(context.Context, string) (*oauth2.Token, error) {
	return f.token, f.err
}

// memoryGuard is a StateGuard backed by a map.
type memoryGuard struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (g *memoryGuard) Consume(_ context.Context, nonce string, _ time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.seen == nil {
		g.seen = map[string]bool{}
	}
	if g.seen[nonce] {
		return false, nil
	}
	g.seen[nonce] = true
	return true, nil
}
