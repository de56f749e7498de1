// Package gate guards the admin dashboard behind a single shared secret.
//
// A successful unlock yields a short-lived HS256 token. The token is what the
// server keeps in the admin cookie, so the secret itself never leaves the
// login request.
package gate

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

const (
	issuer  = "potholes"
	subject = "admin"

	MinKeySize = 32
)

var (
	ErrInvalidSecret = errors.New("invalid admin secret")
	ErrInvalidToken  = errors.New("invalid admin token")
)

type Gate struct {
	secret []byte
	key    []byte
	ttl    time.Duration
	now    func() time.Time
}

func New(secret string, key []byte, ttl time.Duration) (*Gate, error) {
	if secret == "" {
		return nil, fmt.Errorf("admin secret is required")
	}
	if len(key) < MinKeySize {
		return nil, fmt.Errorf("admin token key must be at least %d bytes, got %d", MinKeySize, len(key))
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("admin session ttl must be positive")
	}

	return &Gate{
		secret: []byte(secret),
		key:    key,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

func (g *Gate) TTL() time.Duration {
	return g.ttl
}

// Unlock compares the entered secret against the configured one and, on a
// match, returns a signed token good for the gate's TTL.
func (g *Gate) Unlock(entered string) (string, error) {
	if subtle.ConstantTimeCompare([]byte(entered), g.secret) != 1 {
		return "", ErrInvalidSecret
	}

	now := g.now()
	tok, err := jwt.NewBuilder().
		Issuer(issuer).
		Subject(subject).
		IssuedAt(now).
		Expiration(now.Add(g.ttl)).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build admin token: %w", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256(), g.key))
	if err != nil {
		return "", fmt.Errorf("failed to sign admin token: %w", err)
	}

	return string(signed), nil
}

// Verify reports whether token was issued by this gate and has not expired.
func (g *Gate) Verify(token string) error {
	tok, err := jwt.Parse(
		[]byte(token),
		jwt.WithKey(jwa.HS256(), g.key),
		jwt.WithValidate(true),
		jwt.WithIssuer(issuer),
		jwt.WithClock(jwt.ClockFunc(g.now)),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	sub, ok := tok.Subject()
	if !ok || sub != subject {
		return fmt.Errorf("%w: unexpected subject", ErrInvalidToken)
	}

	return nil
}
