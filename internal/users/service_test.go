package users

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"catalog-api/internal/rbac"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeHasher struct {
	err error
}

func (f fakeHasher) Hash(plaintext string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "hashed:" + plaintext, nil
}

func newTestService() (*Service, *MemoryRepo) {
	repo := NewMemoryRepo()
	svc := NewService(repo, fakeHasher{})
	svc.clock = func() time.Time { return time.Unix(1700000000, 0) }
	return svc, repo
}

func validCreate() CreateRequest {
	return CreateRequest{Name: "John Doe", Email: "john@example.com", Password: "password123", Role: rbac.RoleAdmin}
}

func TestService_CreateHashesPassword(t *testing.T) {
	svc, repo := newTestService()

	u, err := svc.Create(context.Background(), validCreate())
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID)
	assert.True(t, u.IsActive)
	assert.Equal(t, "hashed:password123", u.PasswordHash)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), u.CreatedAt)

	stored, err := repo.GetByEmail(context.Background(), "john@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, stored.ID)
}

func TestService_CreateRejectsInvalidInput(t *testing.T) {
	svc, repo := newTestService()

	cases := map[string]func(r *CreateRequest){
		"missing name":   func(r *CreateRequest) { r.Name = "  " },
		"bad email":      func(r *CreateRequest) { r.Email = "not-an-email" },
		"display email":  func(r *CreateRequest) { r.Email = "John <john@example.com>" },
		"short password": func(r *CreateRequest) { r.Password = "12345" },
		"long password":  func(r *CreateRequest) { r.Password = string(make([]byte, 73)) },
		"unknown role":   func(r *CreateRequest) { r.Role = "root" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := validCreate()
			mutate(&req)
			_, err := svc.Create(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
	assert.Equal(t, 0, repo.Len())
}

func TestService_CreatePropagatesHasherError(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo, fakeHasher{err: errors.New("cost too high")})

	_, err := svc.Create(context.Background(), validCreate())
	require.Error(t, err)
	assert.Equal(t, 0, repo.Len())
}

func TestService_DuplicateEmailConflicts(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), validCreate())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), validCreate())
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestService_ConcurrentCreateSameEmail(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc, repo := newTestService()

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := validCreate()
			req.Name = fmt.Sprintf("racer-%d", i)
			_, err := svc.Create(context.Background(), req)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	succeeded, conflicted := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrEmailTaken):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, conflicted)
	assert.Equal(t, 1, repo.Len())
}

func TestService_GetAndUpdateStatus(t *testing.T) {
	svc, _ := newTestService()
	u, err := svc.Create(context.Background(), validCreate())
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)

	updated, err := svc.UpdateStatus(context.Background(), u.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
}

func TestService_UnknownOrMalformedIDIsNotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Get(context.Background(), "507f1f77bcf86cd799439011")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(context.Background(), "6f1c3f5e-8f8e-4a4e-9d43-1f0c6f7d9b11")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.UpdateStatus(context.Background(), "nope", true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_ListNewestFirst(t *testing.T) {
	svc, _ := newTestService()
	base := time.Unix(1700000000, 0)

	for i, email := range []string{"a@example.com", "b@example.com"} {
		at := base.Add(time.Duration(i) * time.Minute)
		svc.clock = func() time.Time { return at }
		req := validCreate()
		req.Email = email
		_, err := svc.Create(context.Background(), req)
		require.NoError(t, err)
	}

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b@example.com", list[0].Email)
}
