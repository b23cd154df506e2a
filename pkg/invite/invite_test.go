package invite

import (
	"errors"
	"testing"
	"time"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	c := NewCodec("test-secret")

	token, err := c.Issue("alice@example.com", "org-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claim, err := c.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claim.Email != "alice@example.com" {
		t.Errorf("email = %q, want alice@example.com", claim.Email)
	}
	if claim.Organization != "org-1" {
		t.Errorf("organization = %q, want org-1", claim.Organization)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	c := NewCodec("test-secret")
	c.ttl = -time.Minute

	token, err := c.Issue("alice@example.com", "org-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := c.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("verify expired = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyTamperedToken(t *testing.T) {
	c := NewCodec("test-secret")

	token, err := c.Issue("alice@example.com", "org-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, err := c.Verify(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("verify tampered = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	token, err := NewCodec("secret-a").Issue("alice@example.com", "org-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := NewCodec("secret-b").Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("verify with wrong secret = %v, want ErrInvalidToken", err)
	}
}

func TestEmptySecretRefusesToSign(t *testing.T) {
	c := NewCodec("")

	if _, err := c.Issue("alice@example.com", "org-1"); !errors.Is(err, ErrNoSigningSecret) {
		t.Errorf("issue = %v, want ErrNoSigningSecret", err)
	}
	if _, err := c.Verify("whatever"); !errors.Is(err, ErrNoSigningSecret) {
		t.Errorf("verify = %v, want ErrNoSigningSecret", err)
	}
}

// Tokens are not single-use. A verified token stays verifiable for its
// whole window; revocation after acceptance is not a codec concern.
func TestVerifyIsRepeatable(t *testing.T) {
	c := NewCodec("test-secret")

	token, err := c.Issue("alice@example.com", "org-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := c.Verify(token); err != nil {
			t.Fatalf("verify #%d: %v", i+1, err)
		}
	}
}

func TestVerifyRejectsEmptyClaims(t *testing.T) {
	c := NewCodec("test-secret")

	token, err := c.Issue("", "org-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := c.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("verify empty email = %v, want ErrInvalidToken", err)
	}
}
