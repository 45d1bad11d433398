package session

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// CookieName carries the admin session token.
const CookieName = "bsa_admin"

var ErrInvalidPassword = errors.New("Password admin salah.")

// Store issues and checks admin session tokens.
type Store interface {
	Create(ctx context.Context) (string, error)
	Validate(ctx context.Context, token string) (bool, error)
	Destroy(ctx context.Context, token string) error
}

// PasswordChecker compares submitted passwords against a bcrypt hash. A plain
// configured password is hashed once at construction.
type PasswordChecker struct {
	hash []byte
}

func NewPasswordChecker(configured string) (*PasswordChecker, error) {
	if strings.HasPrefix(configured, "$2") {
		if _, err := bcrypt.Cost([]byte(configured)); err != nil {
			return nil, err
		}
		return &PasswordChecker{hash: []byte(configured)}, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(configured), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &PasswordChecker{hash: hash}, nil
}

func (p *PasswordChecker) Check(password string) error {
	if password == "" {
		return ErrInvalidPassword
	}
	if err := bcrypt.CompareHashAndPassword(p.hash, []byte(password)); err != nil {
		return ErrInvalidPassword
	}
	return nil
}
