// Package auth issues and verifies the HS256 access tokens that carry an
// actor's identity and role between requests.
package auth

import (
	"errors"
	"fmt"
	"time"

	"deliverytasks/internal/core/domain/model/actor"
	"deliverytasks/internal/core/domain/model/kernel"
	"deliverytasks/internal/pkg/errs"

	"github.com/golang-jwt/jwt/v5"
)

const (
	issuer = "deliverytasks"

	// MinSecretLength is the shortest signing secret NewTokenManager accepts.
	MinSecretLength = 32
)

// ErrInvalidToken is returned when a token cannot be parsed, is expired or
// names an actor that cannot exist.
var ErrInvalidToken = errors.New("auth: invalid or expired token")

// Claims is the token payload.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Role   string `json:"role"`
}

// TokenManager signs and verifies access tokens with one shared secret.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if len(secret) < MinSecretLength {
		return nil, errs.NewValueIsInvalidErrorWithCause("secret",
			fmt.Errorf("must be at least %d bytes", MinSecretLength))
	}
	if ttl <= 0 {
		return nil, errs.NewValueIsOutOfRangeError("ttl", ttl, time.Second, "unbounded")
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for an authenticated actor.
func (m *TokenManager) Issue(a actor.Actor) (string, time.Time, error) {
	if err := a.Validate(); err != nil {
		return "", time.Time{}, err
	}
	id, ok := a.ID()
	if !ok {
		return "", time.Time{}, errs.NewUnauthorizedError("anonymous actors cannot hold tokens")
	}

	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    issuer,
		},
		UserID: id.String(),
		Role:   a.Role().String(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth.Issue: %w", err)
	}

	return signed, expiresAt, nil
}

// Parse verifies a token and returns the actor it was issued to.
func (m *TokenManager) Parse(token string) (actor.Actor, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(_ *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return actor.Actor{}, fmt.Errorf("auth.Parse: %w", ErrInvalidToken)
	}

	id, err := kernel.UUIDFromString(claims.UserID)
	if err != nil {
		return actor.Actor{}, fmt.Errorf("auth.Parse: %w", ErrInvalidToken)
	}
	role, err := actor.ParseRole(claims.Role)
	if err != nil || role == actor.Anonymous {
		return actor.Actor{}, fmt.Errorf("auth.Parse: %w", ErrInvalidToken)
	}

	return actor.NewActor(id, role)
}
