package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"catalog-api/internal/users"
)

// UserFinder is the credential lookup the login flow needs.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (users.User, error)
}

// PublicProfile is the only part of the user returned by login.
type PublicProfile struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type LoginResult struct {
	AccessToken string        `json:"access_token"`
	User        PublicProfile `json:"user"`
}

// Service orchestrates login: lookup, password check, token issuance.
// There is no lockout, attempt counter or rate limit.
type Service struct {
	users  UserFinder
	hasher PasswordHasher
	tokens *Manager
	// dummyHash is verified when the email is unknown so both rejection paths
	// cost one hash comparison.
	dummyHash string
	clock     func() time.Time
}

func NewService(finder UserFinder, hasher PasswordHasher, tokens *Manager) (*Service, error) {
	seed := make([]byte, 18)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("dummy password seed: %w", err)
	}
	dummy, err := hasher.Hash(base64.RawURLEncoding.EncodeToString(seed))
	if err != nil {
		return nil, err
	}
	return &Service{
		users:     finder,
		hasher:    hasher,
		tokens:    tokens,
		dummyHash: dummy,
		clock:     time.Now,
	}, nil
}

// Login returns ErrInvalidCredentials for an unknown email and for a wrong
// password alike. Store failures are returned as-is.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if !s.hasher.Verify(password, u.PasswordHash) {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(s.clock(), Identity{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role.String(),
	})
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}

	return LoginResult{
		AccessToken: token,
		User:        PublicProfile{Name: u.Name, Role: u.Role.String()},
	}, nil
}
