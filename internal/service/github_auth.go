package service

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/sakif/devdesk/internal/apperror"
	"github.com/sakif/devdesk/internal/auth"
	"github.com/sakif/devdesk/internal/githubapi"
	"github.com/sakif/devdesk/internal/model"
	"github.com/sakif/devdesk/internal/repository"
)

// Redirect error codes appended as ?error= to the frontend login page.
const (
	ErrCodeAuthError      = "github_auth_error"
	ErrCodeAuthCancelled  = "github_auth_cancelled"
	ErrCodeAuthFailed     = "github_auth_failed"
	ErrCodeInvalidState   = "invalid_state"
	ErrCodeSessionFailure = "session_creation_failed"
)

const defaultStateTTL = 10 * time.Minute

// ErrGitHubDisabled is returned when no OAuth client is configured.
var ErrGitHubDisabled = apperror.NotFoundMessage("GitHub integration is not configured")

// OAuthExchanger runs the authorization code flow. *auth.GitHubProvider
// implements it.
type OAuthExchanger interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
}

// StateGuard makes an OAuth state usable once. Consume returns false when
// the nonce was seen before.
type StateGuard interface {
	Consume(ctx context.Context, nonce string, ttl time.Duration) (bool, error)
}

type GitHubAuthConfig struct {
	FrontendURL    string
	AllowedOrigins []string
	StateTTL       time.Duration
}

// GitHubAuthService drives the OAuth flow that both signs users in with
// GitHub and connects GitHub to an existing account.
//
//	Begin ──► provider ──► Callback ──► frontend /auth/github/success
//	                          │
//	                          └──► frontend /login?error=<code>
//
// The redirect target and link intent travel inside the signed state token,
// so the callback needs no server-side session.
type GitHubAuthService struct {
	cfg      GitHubAuthConfig
	oauth    OAuthExchanger
	clients  GitHubClientFactory
	guard    StateGuard
	tokens   *auth.TokenService
	sessions *AuthService
	users    repository.UserRepository
	github   repository.GitHubRepository
	logger   *slog.Logger
}

// NewGitHubAuthService wires the flow. oauth may be nil when GitHub is not
// configured; guard may be nil, in which case a state is accepted as long
// as its signature and expiry check out.
func NewGitHubAuthService(
	cfg GitHubAuthConfig,
	oauth OAuthExchanger,
	clients GitHubClientFactory,
	guard StateGuard,
	tokens *auth.TokenService,
	sessions *AuthService,
	users repository.UserRepository,
	github repository.GitHubRepository,
	logger *slog.Logger,
) *GitHubAuthService {
	if cfg.StateTTL <= 0 {
		cfg.StateTTL = defaultStateTTL
	}
	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")
	return &GitHubAuthService{
		cfg:      cfg,
		oauth:    oauth,
		clients:  clients,
		guard:    guard,
		tokens:   tokens,
		sessions: sessions,
		users:    users,
		github:   github,
		logger:   logger,
	}
}

// Authorization is a started flow. Nonce must be stored in the browser
// that follows URL (the handler uses an HttpOnly cookie) and handed back to
// Callback; a state presented without it is rejected.
type Authorization struct {
	URL       string
	Nonce     string
	ExpiresAt time.Time
}

// Begin starts a flow. linkUserID is empty for a sign-in and the caller's
// id when connecting an account.
func (s *GitHubAuthService) Begin(redirect, linkUserID string) (*Authorization, error) {
	if s.oauth == nil {
		return nil, ErrGitHubDisabled
	}
	state, st, err := s.tokens.IssueState(s.SafeRedirect(redirect), linkUserID, s.cfg.StateTTL)
	if err != nil {
		return nil, err
	}
	return &Authorization{
		URL:       s.oauth.AuthURL(state),
		Nonce:     st.Nonce,
		ExpiresAt: st.ExpiresAt,
	}, nil
}

// CallbackParams are the query parameters the provider sends back plus the
// nonce the browser kept from Begin.
type CallbackParams struct {
	Code         string
	State        string
	Error        string
	BrowserNonce string
}

// Callback finishes the flow and returns where to send the browser. It
// never fails: every error becomes a redirect to the login page.
func (s *GitHubAuthService) Callback(ctx context.Context, p CallbackParams) string {
	st, err := s.tokens.ParseState(p.State)
	if err != nil {
		s.logger.Warn("github callback with invalid state", slog.String("error", err.Error()))
		return s.failure(s.cfg.FrontendURL, ErrCodeInvalidState)
	}
	redirect := s.SafeRedirect(st.Redirect)

	// The state is only accepted from the browser that started the flow.
	if p.BrowserNonce == "" || subtle.ConstantTimeCompare([]byte(p.BrowserNonce), []byte(st.Nonce)) != 1 {
		s.logger.Warn("github callback from a browser that did not start the flow",
			slog.String("nonce", st.Nonce),
			slog.Bool("cookie_present", p.BrowserNonce != ""),
		)
		return s.failure(redirect, ErrCodeInvalidState)
	}

	if s.guard != nil {
		ok, err := s.guard.Consume(ctx, st.Nonce, time.Until(st.ExpiresAt))
		if err != nil {
			s.logger.Error("failed to consume oauth state", slog.String("error", err.Error()))
			return s.failure(redirect, ErrCodeAuthFailed)
		}
		if !ok {
			s.logger.Warn("github callback replayed state", slog.String("nonce", st.Nonce))
			return s.failure(redirect, ErrCodeInvalidState)
		}
	}

	if p.Error != "" {
		if p.Error == "access_denied" {
			return s.failure(redirect, ErrCodeAuthCancelled)
		}
		s.logger.Warn("github returned an error", slog.String("error", p.Error))
		return s.failure(redirect, ErrCodeAuthError)
	}
	if p.Code == "" || s.oauth == nil {
		return s.failure(redirect, ErrCodeAuthError)
	}

	tok, err := s.oauth.Exchange(ctx, p.Code)
	if err != nil {
		s.logger.Error("github code exchange failed", slog.String("error", err.Error()))
		return s.failure(redirect, ErrCodeAuthFailed)
	}

	user, err := s.connect(ctx, st, tok)
	if err != nil {
		s.logger.Error("github sign-in failed", slog.String("error", err.Error()))
		return s.failure(redirect, ErrCodeAuthFailed)
	}

	session, err := s.sessions.IssueSession(user)
	if err != nil {
		s.logger.Error("failed to create session", slog.String("error", err.Error()))
		return s.failure(redirect, ErrCodeSessionFailure)
	}

	userJSON, err := json.Marshal(user)
	if err != nil {
		s.logger.Error("failed to encode user", slog.String("error", err.Error()))
		return s.failure(redirect, ErrCodeSessionFailure)
	}

	q := url.Values{}
	q.Set("access_token", session.AccessToken)
	q.Set("refresh_token", session.RefreshToken)
	q.Set("user", string(userJSON))
	return redirect + "/auth/github/success?" + q.Encode()
}

// connect resolves the DevDesk user for this callback and stores the
// GitHub credential against it.
func (s *GitHubAuthService) connect(ctx context.Context, st *auth.OAuthState, tok *oauth2.Token) (*model.User, error) {
	client := s.clients(ctx, tok.AccessToken)

	gh, err := client.User(ctx)
	if err != nil {
		return nil, err
	}

	var user *model.User
	if st.LinkUserID != "" {
		user, err = s.users.GetUserByID(ctx, st.LinkUserID)
		if err != nil {
			return nil, err
		}
	} else {
		user, err = s.findOrCreateUser(ctx, client, gh)
		if err != nil {
			return nil, err
		}
	}

	if err := s.github.UpsertGitHubToken(ctx, &model.GitHubToken{
		UserID:         user.ID,
		AccessToken:    tok.AccessToken,
		RefreshToken:   tok.RefreshToken,
		GitHubUsername: gh.Login,
		GitHubUserID:   gh.ID,
		AvatarURL:      gh.AvatarURL,
	}); err != nil {
		return nil, err
	}

	s.logger.Info("github account connected",
		slog.String("userID", user.ID),
		slog.String("login", gh.Login),
		slog.Bool("link", st.LinkUserID != ""),
	)
	return user, nil
}

func (s *GitHubAuthService) findOrCreateUser(ctx context.Context, client GitHubClient, gh *githubapi.User) (*model.User, error) {
	email := gh.Email
	if email == "" {
		var err error
		email, err = client.PrimaryEmail(ctx)
		if err != nil {
			return nil, err
		}
	}
	if email == "" {
		return nil, errors.New("service/github: GitHub account has no verified email")
	}
	meta := githubMetadata(gh)

	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(email))
	if err == nil {
		if err := s.users.UpdateUserMetadata(ctx, user.ID, meta); err != nil {
			s.logger.Warn("failed to update user metadata",
				slog.String("userID", user.ID),
				slog.String("error", err.Error()),
			)
		} else {
			user.Metadata = meta
		}
		return user, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	user = &model.User{Email: email, Metadata: meta}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func githubMetadata(gh *githubapi.User) map[string]any {
	return map[string]any{
		"provider":        "github",
		"github_username": gh.Login,
		"github_id":       gh.ID,
		"avatar_url":      gh.AvatarURL,
		"full_name":       gh.Name,
	}
}

// Unlink forgets the caller's GitHub credential. Repository links stay.
func (s *GitHubAuthService) Unlink(ctx context.Context, callerID string) error {
	if err := s.github.DeleteGitHubToken(ctx, callerID); err != nil {
		return err
	}
	s.logger.Info("github account unlinked", slog.String("userID", callerID))
	return nil
}

// ErrorRedirect is the login page URL reporting a generic GitHub error.
func (s *GitHubAuthService) ErrorRedirect(redirect string) string {
	return s.failure(s.SafeRedirect(redirect), ErrCodeAuthError)
}

// SafeRedirect returns redirect without a trailing slash when it points at
// the frontend or an allowed origin, and the frontend URL otherwise.
func (s *GitHubAuthService) SafeRedirect(redirect string) string {
	redirect = strings.TrimSpace(redirect)
	if redirect == "" {
		return s.cfg.FrontendURL
	}
	u, err := url.Parse(redirect)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return s.cfg.FrontendURL
	}
	origin := u.Scheme + "://" + u.Host
	if !s.allowedOrigin(origin) {
		return s.cfg.FrontendURL
	}
	return origin + strings.TrimRight(u.EscapedPath(), "/")
}

func (s *GitHubAuthService) allowedOrigin(origin string) bool {
	if front, err := url.Parse(s.cfg.FrontendURL); err == nil && front.Scheme+"://"+front.Host == origin {
		return true
	}
	for _, o := range s.cfg.AllowedOrigins {
		if strings.TrimRight(o, "/") == origin {
			return true
		}
	}
	return false
}

func (s *GitHubAuthService) failure(redirect, code string) string {
	return redirect + "/login?error=" + url.QueryEscape(code)
}
