package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/devdesk/internal/service"
	"github.com/sakif/devdesk/internal/validation"
)

// stateCookie holds the nonce of the OAuth flow a browser started.
const stateCookie = "oauth_state"

// AuthHandler manages password sign-in and the GitHub OAuth browser flow.
//
// HANDLER RESPONSIBILITIES:
//   - SignUp / Login / Refresh → JSON endpoints issuing bearer sessions
//   - GitHubLogin             → redirect the browser to GitHub's authorization page
//   - GitHubCallback          → receive the code, finish the flow, redirect to the frontend
//   - GitHubLink / Unlink     → connect or disconnect GitHub for a signed-in user
//
// DEPENDENCY CHAIN:
//   - auth   *service.AuthService       → passwords, sessions
//   - github *service.GitHubAuthService → state tokens, code exchange, account linking
type AuthHandler struct {
	auth   *service.AuthService
	github *service.GitHubAuthService
	logger *slog.Logger
}

func NewAuthHandler(auth *service.AuthService, github *service.GitHubAuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, github: github, logger: logger}
}

// SignUp handles POST /auth/signup.
func (h *AuthHandler) SignUp(r *http.Request) (*Result, error) {
	var req validation.SignUpRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	user, err := h.auth.SignUp(r.Context(), req)
	if err != nil {
		return nil, err
	}
	return created(map[string]any{"user": user}, "Signup successful"), nil
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(r *http.Request) (*Result, error) {
	var req validation.LoginRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	res, err := h.auth.Login(r.Context(), req)
	if err != nil {
		return nil, err
	}
	return success(res, "Login successful"), nil
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(r *http.Request) (*Result, error) {
	var req validation.RefreshRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	res, err := h.auth.Refresh(r.Context(), req)
	if err != nil {
		return nil, err
	}
	return success(res, ""), nil
}

// GitHubLogin redirects the browser to GitHub's authorization page.
//
// HTTP: GET /auth/github?redirect=<frontend url>
//
// CSRF PROTECTION VIA STATE:
// The state parameter is a signed token carrying a random nonce. The same
// nonce goes into a short-lived HttpOnly cookie, and GitHubCallback only
// accepts a state whose nonce matches the cookie. A callback URL replayed in
// someone else's browser therefore fails with invalid_state.
func (h *AuthHandler) GitHubLogin(w http.ResponseWriter, r *http.Request) {
	redirect := r.URL.Query().Get("redirect")
	flow, err := h.github.Begin(redirect, "")
	if err != nil {
		h.logger.Error("failed to start github login", slog.String("error", err.Error()))
		http.Redirect(w, r, h.github.ErrorRedirect(redirect), http.StatusFound)
		return
	}
	http.SetCookie(w, newStateCookie(r, flow))
	http.Redirect(w, r, flow.URL, http.StatusFound)
}

// GitHubCallback completes the OAuth flow.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
//
// FLOW:
//  1. Read and clear the oauth_state cookie (it is single-use)
//  2. Hand code, state and cookie nonce to the service
//  3. Redirect to wherever the service says: the frontend success page
//     with a session, or /login?error=<code>
//
// The handler never writes an error body: the browser always lands on the
// frontend.
func (h *AuthHandler) GitHubCallback(w http.ResponseWriter, r *http.Request) {
	var nonce string
	if c, err := r.Cookie(stateCookie); err == nil {
		nonce = c.Value
	}
	http.SetCookie(w, clearStateCookie(r))

	q := r.URL.Query()
	location := h.github.Callback(r.Context(), service.CallbackParams{
		Code:         q.Get("code"),
		State:        q.Get("state"),
		Error:        q.Get("error"),
		BrowserNonce: nonce,
	})
	http.Redirect(w, r, location, http.StatusFound)
}

// GitHubError handles GET /auth/github/error.
func (h *AuthHandler) GitHubError(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.github.ErrorRedirect(r.URL.Query().Get("redirect")), http.StatusFound)
}

type linkRequest struct {
	Redirect string `json:"redirect"`
}

// GitHubLink starts connecting GitHub to the signed-in account.
//
// HTTP: POST /auth/github/link
// Auth: Required
//
// The call carries a bearer token, so it answers with {"url": ...} for the
// frontend to navigate to instead of redirecting. The state cookie is set on
// this response: the frontend must make the request with credentials
// included, which puts the nonce in the caller's own browser. Someone else
// opening the returned URL has no matching cookie and their callback is
// rejected, so their GitHub token can never end up on this account.
func (h *AuthHandler) GitHubLink(r *http.Request) (*Result, error) {
	user, err := caller(r)
	if err != nil {
		return nil, err
	}
	var req linkRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	flow, err := h.github.Begin(req.Redirect, user.ID)
	if err != nil {
		return nil, err
	}
	res := success(map[string]string{"url": flow.URL}, "")
	res.Cookies = []*http.Cookie{newStateCookie(r, flow)}
	return res, nil
}

// GitHubUnlink handles DELETE /auth/github/unlink.
func (h *AuthHandler) GitHubUnlink(r *http.Request) (*Result, error) {
	user, err := caller(r)
	if err != nil {
		return nil, err
	}
	if err := h.github.Unlink(r.Context(), user.ID); err != nil {
		return nil, err
	}
	return success(nil, "GitHub account unlinked"), nil
}

// newStateCookie stores the flow nonce until the state expires.
// SameSite=Lax lets the cookie ride along on the top-level redirect back
// from GitHub but not on cross-site subrequests.
func newStateCookie(r *http.Request, flow *service.Authorization) *http.Cookie {
	maxAge := int(time.Until(flow.ExpiresAt).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	return &http.Cookie{
		Name:     stateCookie,
		Value:    flow.Nonce,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   isHTTPS(r),
		SameSite: http.SameSiteLaxMode,
	}
}

func clearStateCookie(r *http.Request) *http.Cookie {
	return &http.Cookie{
		Name:     stateCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isHTTPS(r),
		SameSite: http.SameSiteLaxMode,
	}
}

func isHTTPS(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}
