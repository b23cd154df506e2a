// Package invite implements the signed invitation token. An invitation is
// a self-contained bearer credential proving an email address was invited
// to a specific organization; nothing about it is persisted and it stays
// valid for its whole window.
package invite

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TTL is the validity window of an invitation from issuance.
const TTL = 7 * 24 * time.Hour

var (
	// ErrNoSigningSecret is returned when the codec was built without a secret.
	ErrNoSigningSecret = errors.New("invite: signing secret is not configured")
	// ErrInvalidToken covers bad signature, malformed structure and expiry.
	ErrInvalidToken = errors.New("invite: invalid token")
)

// Claim is the decoded content of an invitation token.
type Claim struct {
	Email        string `json:"email"`
	Organization string `json:"organization"`
	jwt.RegisteredClaims
}

// Codec issues and verifies invitation tokens with a process-wide secret.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec creates a codec signing with secret. The secret may be empty;
// Issue and Verify then fail with ErrNoSigningSecret.
func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret), ttl: TTL}
}

// Issue produces a signed token binding email to organizationID, valid
// for the codec's TTL from now.
func (c *Codec) Issue(email, organizationID string) (string, error) {
	if len(c.secret) == 0 {
		return "", ErrNoSigningSecret
	}

	now := time.Now()
	claim := &Claim{
		Email:        email,
		Organization: organizationID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claim)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign invitation: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the decoded claim.
// Expiry is evaluated against wall-clock time with no leeway.
func (c *Codec) Verify(tokenString string) (*Claim, error) {
	if len(c.secret) == 0 {
		return nil, ErrNoSigningSecret
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claim{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claim, ok := token.Claims.(*Claim)
	if !ok || claim.Email == "" || claim.Organization == "" {
		return nil, ErrInvalidToken
	}
	return claim, nil
}
