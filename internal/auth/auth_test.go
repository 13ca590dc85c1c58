package auth

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	digest, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if digest == "correct horse" {
		t.Fatal("digest must not equal the raw password")
	}
	if !h.Verify("correct horse", digest) {
		t.Error("expected password to verify")
	}
	if h.Verify("wrong horse", digest) {
		t.Error("expected wrong password to fail")
	}
	if h.Verify("correct horse", "not-a-digest") {
		t.Error("expected malformed digest to fail")
	}
}

func TestNewBcryptHasher_CostFallback(t *testing.T) {
	if got := NewBcryptHasher(0).cost; got != bcrypt.DefaultCost {
		t.Errorf("cost = %d, want %d", got, bcrypt.DefaultCost)
	}
}

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	token, err := m.Generate("user-1")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	userID, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if userID != "user-1" {
		t.Errorf("user ID = %q, want user-1", userID)
	}

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTManager("other-secret", time.Hour)
		if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		expiring := NewJWTManager("test-secret", time.Minute)
		expiring.now = func() time.Time { return time.Now().Add(-time.Hour) }
		old, err := expiring.Generate("user-1")
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if _, err := m.Validate(old); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := m.Validate("not.a.token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})
}
