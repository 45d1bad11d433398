package session

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const adminSubject = "admin"

// TokenStore keeps no server state: a session is an HS256 token that expires on its own.
type TokenStore struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenStore(secret string, ttl time.Duration) (*TokenStore, error) {
	if secret == "" {
		return nil, errors.New("session secret is required")
	}
	return &TokenStore{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (s *TokenStore) Create(_ context.Context) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   adminSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *TokenStore) Validate(_ context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return false, nil
	}
	return claims.Subject == adminSubject, nil
}

// Destroy is a no-op; logging out clears the cookie.
func (s *TokenStore) Destroy(_ context.Context, _ string) error {
	return nil
}

var _ Store = (*TokenStore)(nil)
