// Package auth issues and verifies credentials.
//
// Three kinds of HS256 tokens are signed with the same secret and told apart
// by their "kind" claim and audience:
//   - access:  short-lived bearer token sent on every API request
//   - refresh: long-lived token exchanged for a new session
//   - state:   OAuth state parameter carrying the redirect target (state.go)
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	kindAccess  = "access"
	kindRefresh = "refresh"
	kindState   = "state"
)

var (
	ErrInvalidToken = errors.New("auth: invalid token")
	ErrTokenExpired = errors.New("auth: token expired")
)

type TokenService struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

type TokenConfig struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// NewTokenService requires a secret of at least 16 characters.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if len(cfg.Secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "devdesk"
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = time.Hour
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	return &TokenService{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}, nil
}

type claims struct {
	Kind string `json:"kind"`
	jwt.RegisteredClaims
}

// AccessTTL is how long an access token stays valid.
func (s *TokenService) AccessTTL() time.Duration { return s.accessTTL }

// IssueAccess signs an access token for userID.
func (s *TokenService) IssueAccess(userID string) (string, error) {
	return s.sign(kindAccess, userID, s.accessTTL)
}

// IssueRefresh signs a refresh token for userID.
func (s *TokenService) IssueRefresh(userID string) (string, error) {
	return s.sign(kindRefresh, userID, s.refreshTTL)
}

// ValidateAccess returns the user ID of a valid access token.
func (s *TokenService) ValidateAccess(tokenStr string) (string, error) {
	return s.validate(tokenStr, kindAccess)
}

// ValidateRefresh returns the user ID of a valid refresh token.
func (s *TokenService) ValidateRefresh(tokenStr string) (string, error) {
	return s.validate(tokenStr, kindRefresh)
}

func (s *TokenService) sign(kind, userID string, ttl time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    s.issuer,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

func (s *TokenService) validate(tokenStr, kind string) (string, error) {
	var c claims
	if err := s.parse(tokenStr, &c); err != nil {
		return "", err
	}
	if c.Kind != kind {
		return "", fmt.Errorf("%w: expected %s token", ErrInvalidToken, kind)
	}
	if c.Subject == "" {
		return "", fmt.Errorf("%w: no subject", ErrInvalidToken)
	}
	return c.Subject, nil
}

func (s *TokenService) parse(tokenStr string, c jwt.Claims, opts ...jwt.ParserOption) error {
	opts = append(opts,
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)

	token, err := jwt.ParseWithClaims(tokenStr, c, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
