package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func newTestPasswordService() *PasswordService {
	return NewPasswordServiceForTest(bcrypt.MinCost)
}

func TestNewPasswordService_ClampsCost(t *testing.T) {
	if got := NewPasswordService(1).cost; got != DefaultCost {
		t.Errorf("cost = %d, want %d for out-of-range input", got, DefaultCost)
	}
	if got := NewPasswordService(10).cost; got != 10 {
		t.Errorf("cost = %d, want 10", got)
	}
}

func TestHash_OutputLooksBcrypt(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("password123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("Hash() does not look like a bcrypt hash: %q", hash)
	}
}

func TestHash_SamePasswordProducesDifferentHashes(t *testing.T) {
	ps := newTestPasswordService()

	hash1, _ := ps.Hash("same-password")
	hash2, _ := ps.Hash("same-password")

	if hash1 == hash2 {
		t.Error("Hash() produced identical hashes for the same password")
	}
}

func TestHash_RejectsPasswordOver72Bytes(t *testing.T) {
	ps := newTestPasswordService()

	if _, err := ps.Hash(strings.Repeat("a", 73)); err == nil {
		t.Fatal("Hash() should reject passwords longer than 72 bytes")
	}
	if _, err := ps.Hash(strings.Repeat("a", 72)); err != nil {
		t.Fatalf("Hash() rejected a 72 byte password: %v", err)
	}
}

func TestVerify(t *testing.T) {
	ps := newTestPasswordService()
	hash, _ := ps.Hash("correct-horse")

	if err := ps.Verify(hash, "correct-horse"); err != nil {
		t.Errorf("Verify(correct) error = %v", err)
	}
	if err := ps.Verify(hash, "wrong"); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("Verify(wrong) error = %v, want ErrInvalidPassword", err)
	}
	if err := ps.Verify(hash, ""); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("Verify(empty) error = %v, want ErrInvalidPassword", err)
	}
}

func TestVerify_GarbageHash(t *testing.T) {
	ps := newTestPasswordService()

	err := ps.Verify("not-a-bcrypt-hash", "anything")
	if err == nil {
		t.Fatal("Verify() should fail for a garbage hash")
	}
	if errors.Is(err, ErrInvalidPassword) {
		t.Error("a malformed hash should not be reported as a wrong password")
	}
}
