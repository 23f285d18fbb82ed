package adminauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ever-after-studio/wedding-site-api/internal/app/apperr"
	"github.com/ever-after-studio/wedding-site-api/internal/platform/auth/sessiontoken"
)

// Session is an issued admin session.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

type Service struct {
	passwordHash []byte
	tokens       *sessiontoken.Manager
}

// NewService wires the admin gate. passwordHash must be a bcrypt hash.
func NewService(passwordHash string, tokens *sessiontoken.Manager) (*Service, error) {
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return nil, fmt.Errorf("admin password hash: %w", err)
	}
	if tokens == nil {
		return nil, errors.New("nil session token manager")
	}
	return &Service{passwordHash: []byte(passwordHash), tokens: tokens}, nil
}

// HashPassword returns the bcrypt hash used to configure the admin gate.
func HashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password must be non-empty")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Login checks password against the configured secret and issues a session token.
func (s *Service) Login(ctx context.Context, password string) (Session, error) {
	_ = ctx
	if password == "" {
		return Session{}, apperr.Validation("invalid login", map[string]any{"password": "must be non-empty"})
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return Session{}, &apperr.Error{Status: 401, Code: apperr.CodeUnauthorized, Message: "incorrect password"}
		}
		return Session{}, err
	}
	tok, exp, err := s.tokens.Issue()
	if err != nil {
		return Session{}, err
	}
	return Session{Token: tok, ExpiresAt: exp}, nil
}

// Authenticate validates a bearer session token.
func (s *Service) Authenticate(ctx context.Context, token string) error {
	_ = ctx
	if _, err := s.tokens.Verify(token); err != nil {
		return apperr.Unauthorized()
	}
	return nil
}

// Logout revokes the session token until it would have expired.
func (s *Service) Logout(ctx context.Context, token string) error {
	_ = ctx
	if err := s.tokens.Revoke(token); err != nil {
		return apperr.Unauthorized()
	}
	return nil
}
