// Package service holds DevDesk's business rules. Handlers decode requests
// and call into a service; services validate input, enforce ownership and
// talk to the repositories. Nothing here knows about HTTP.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/devdesk/internal/apperror"
	"github.com/sakif/devdesk/internal/auth"
	"github.com/sakif/devdesk/internal/model"
	"github.com/sakif/devdesk/internal/repository"
	"github.com/sakif/devdesk/internal/validation"
)

const msgInvalidCredentials = "Invalid email or password"

var _ auth.Authenticator = (*AuthService)(nil)

// AuthService is the identity provider: password signup and login, token
// refresh, and resolving bearer tokens to users.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// LoginResult is what a client receives after authenticating.
type LoginResult struct {
	Session *model.Session `json:"session"`
	User    *model.User    `json:"user"`
}

func (s *AuthService) SignUp(ctx context.Context, req validation.SignUpRequest) (*model.User, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user signed up", slog.String("userID", user.ID))
	return user, nil
}

// Login checks email and password. Unknown emails, accounts without a
// password and wrong passwords all produce the same 401.
func (s *AuthService) Login(ctx context.Context, req validation.LoginRequest) (*LoginResult, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized(msgInvalidCredentials)
		}
		return nil, err
	}
	if user.PasswordHash == "" {
		return nil, apperror.Unauthorized(msgInvalidCredentials)
	}

	if err := s.passwords.Verify(user.PasswordHash, req.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			return nil, apperror.Unauthorized(msgInvalidCredentials)
		}
		return nil, fmt.Errorf("service/auth: verifying password for %s: %w", user.ID, err)
	}

	session, err := s.IssueSession(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Session: session, User: user}, nil
}

// Refresh trades a refresh token for a new session.
func (s *AuthService) Refresh(ctx context.Context, req validation.RefreshRequest) (*LoginResult, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	userID, err := s.tokens.ValidateRefresh(req.RefreshToken)
	if err != nil {
		return nil, apperror.Unauthorized("Invalid refresh token")
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("Invalid refresh token")
		}
		return nil, err
	}

	session, err := s.IssueSession(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Session: session, User: user}, nil
}

// Authenticate resolves an access token to its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	userID, err := s.tokens.ValidateAccess(token)
	if err != nil {
		return nil, apperror.Unauthorized("Unauthorized")
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("Unauthorized")
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) IssueSession(user *model.User) (*model.Session, error) {
	access, err := s.tokens.IssueAccess(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing access token: %w", err)
	}
	refresh, err := s.tokens.IssueRefresh(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing refresh token: %w", err)
	}
	return &model.Session{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}
