package users

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PasswordHasher is the subset of the password hasher the service needs.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
}

// Service provides user operations.
//
// Uniqueness of email is delegated to the repository; the service never does a
// check-then-insert.
type Service struct {
	repo   Repository
	hasher PasswordHasher
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(repo Repository, hasher PasswordHasher) *Service {
	return &Service{repo: repo, hasher: hasher, clock: time.Now}
}

const (
	minPasswordLen = 6
	// bcrypt only considers the first 72 bytes.
	maxPasswordLen = 72
)

func (s *Service) Create(ctx context.Context, req CreateRequest) (User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := validateCreate(req); err != nil {
		return User{}, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return User{}, err
	}

	now := s.clock().UTC()
	u := User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (User, error) {
	if !validID(id) {
		return User{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// UpdateStatus flips the active flag. Tokens already issued to the user stay
// valid until they expire.
func (s *Service) UpdateStatus(ctx context.Context, id string, active bool) (User, error) {
	if !validID(id) {
		return User{}, ErrNotFound
	}
	return s.repo.SetActive(ctx, id, active, s.clock().UTC())
}

// FindByEmail returns the stored user including its password hash.
func (s *Service) FindByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func validateCreate(req CreateRequest) error {
	if req.Name == "" || req.Email == "" {
		return ErrInvalidArgument
	}
	if addr, err := mail.ParseAddress(req.Email); err != nil || addr.Address != req.Email {
		return ErrInvalidArgument
	}
	if n := len(req.Password); n < minPasswordLen || n > maxPasswordLen {
		return ErrInvalidArgument
	}
	if !req.Role.Valid() {
		return ErrInvalidArgument
	}
	return nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
