package auth

import (
	"errors"
	"testing"
	"time"
)

func TestState_RoundTrip(t *testing.T) {
	ts := newTestTokenService(t)

	signed, issued, err := ts.IssueState("http://app.test", "user-1", 10*time.Minute)
	if err != nil {
		t.Fatalf("IssueState() error = %v", err)
	}
	if issued.Nonce == "" {
		t.Fatal("IssueState() produced an empty nonce")
	}

	got, err := ts.ParseState(signed)
	if err != nil {
		t.Fatalf("ParseState() error = %v", err)
	}
	if got.Nonce != issued.Nonce || got.Redirect != "http://app.test" || got.LinkUserID != "user-1" {
		t.Errorf("ParseState() = %+v, want %+v", got, issued)
	}
}

func TestState_NoncesDiffer(t *testing.T) {
	ts := newTestTokenService(t)

	_, a, _ := ts.IssueState("", "", time.Minute)
	_, b, _ := ts.IssueState("", "", time.Minute)
	if a.Nonce == b.Nonce {
		t.Error("two states share a nonce")
	}
}

func TestState_Expired(t *testing.T) {
	ts := newTestTokenService(t)

	signed, _, _ := ts.IssueState("", "", -time.Second)
	if _, err := ts.ParseState(signed); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("ParseState() error = %v, want ErrTokenExpired", err)
	}
}

func TestState_AccessTokenIsNotState(t *testing.T) {
	ts := newTestTokenService(t)

	access, _ := ts.IssueAccess("user-1")
	if _, err := ts.ParseState(access); err == nil {
		t.Error("ParseState() accepted an access token")
	}

	signed, _, _ := ts.IssueState("", "", time.Minute)
	if _, err := ts.ValidateAccess(signed); err == nil {
		t.Error("ValidateAccess() accepted a state token")
	}
}
