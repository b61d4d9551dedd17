package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

const stateAudience = "github-oauth"

// OAuthState travels through the provider as the signed state parameter.
// LinkUserID is set when an already signed-in user is connecting GitHub.
type OAuthState struct {
	Nonce      string
	Redirect   string
	LinkUserID string
	ExpiresAt  time.Time
}

type stateClaims struct {
	Kind       string `json:"kind"`
	Redirect   string `json:"redirect"`
	LinkUserID string `json:"link_user_id,omitempty"`
	jwt.RegisteredClaims
}

// IssueState signs a state token valid for ttl. A fresh nonce is generated
// so the callback can reject a replayed state.
func (s *TokenService) IssueState(redirect, linkUserID string, ttl time.Duration) (string, *OAuthState, error) {
	now := time.Now()
	st := &OAuthState{
		Nonce:      xid.New().String(),
		Redirect:   redirect,
		LinkUserID: linkUserID,
		ExpiresAt:  now.Add(ttl),
	}

	c := stateClaims{
		Kind:       kindState,
		Redirect:   redirect,
		LinkUserID: linkUserID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        st.Nonce,
			Audience:  jwt.ClaimStrings{stateAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(st.ExpiresAt),
			Issuer:    s.issuer,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("auth: signing state: %w", err)
	}
	return signed, st, nil
}

// ParseState verifies a state token produced by IssueState.
func (s *TokenService) ParseState(tokenStr string) (*OAuthState, error) {
	var c stateClaims
	if err := s.parse(tokenStr, &c, jwt.WithAudience(stateAudience)); err != nil {
		return nil, err
	}
	if c.Kind != kindState || c.ID == "" {
		return nil, fmt.Errorf("%w: not a state token", ErrInvalidToken)
	}
	return &OAuthState{
		Nonce:      c.ID,
		Redirect:   c.Redirect,
		LinkUserID: c.LinkUserID,
		ExpiresAt:  c.ExpiresAt.Time,
	}, nil
}
