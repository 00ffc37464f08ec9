package products

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"catalog-api/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	mu       sync.Mutex
	items    map[string]Product
	versions map[string]int64
	gets     int
	hits     int
	err      error
	evicted  []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: map[string]Product{}, versions: map[string]int64{}}
}

func (c *fakeCache) Get(ctx context.Context, id string) (Product, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.err != nil {
		return Product{}, false, c.err
	}
	p, ok := c.items[id]
	if ok {
		c.hits++
	}
	return p, ok, nil
}

func (c *fakeCache) Version(ctx context.Context, id string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[id], c.err
}

func (c *fakeCache) SetIfVersion(ctx context.Context, p Product, version int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	if c.versions[p.ID] == version {
		c.items[p.ID] = p
	}
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evicted = append(c.evicted, id)
	delete(c.items, id)
	c.versions[id]++
	return c.err
}

// pausingRepo blocks the first GetByID after it has read the row, until
// resume is closed.
type pausingRepo struct {
	Repository
	once   sync.Once
	read   chan struct{}
	resume chan struct{}
}

func newPausingRepo(inner Repository) *pausingRepo {
	return &pausingRepo{Repository: inner, read: make(chan struct{}), resume: make(chan struct{})}
}

func (r *pausingRepo) GetByID(ctx context.Context, id string) (Product, error) {
	p, err := r.Repository.GetByID(ctx, id)
	r.once.Do(func() {
		close(r.read)
		<-r.resume
	})
	return p, err
}

// failingRepo fails every call with a store error.
type failingRepo struct{ Repository }

func (failingRepo) GetByID(ctx context.Context, id string) (Product, error) {
	return Product{}, store.Unavailable("get product", errors.New("connection refused"))
}

func newTestService(t *testing.T) (*Service, *MemoryRepo, *fakeCache) {
	t.Helper()
	repo := NewMemoryRepo()
	cache := newFakeCache()
	svc := NewService(repo, cache)
	tick := time.Unix(1700000000, 0)
	svc.clock = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return svc, repo, cache
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }
func boolPtr(b bool) *bool        { return &b }

func TestService_Create(t *testing.T) {
	svc, repo, _ := newTestService(t)

	p, err := svc.Create(context.Background(), CreateRequest{Name: "  Laptop ", Description: "14 inch", Price: 999.5, Stock: 3})
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Laptop", p.Name)
	assert.True(t, p.IsActive)
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)
	assert.Equal(t, 1, repo.Len())
}

func TestService_CreateRejectsInvalidInput(t *testing.T) {
	svc, repo, _ := newTestService(t)

	cases := map[string]CreateRequest{
		"blank name":     {Name: "  ", Price: 1, Stock: 1},
		"negative price": {Name: "A", Price: -0.01, Stock: 1},
		"negative stock": {Name: "A", Price: 1, Stock: -1},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
	assert.Equal(t, 0, repo.Len())
}

func TestService_CreateDuplicateName(t *testing.T) {
	svc, repo, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateRequest{Name: "Laptop", Price: 1, Stock: 1})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateRequest{Name: "Laptop", Price: 2, Stock: 2})
	assert.ErrorIs(t, err, ErrNameTaken)
	assert.Equal(t, 1, repo.Len())
}

func TestService_GetReadsThroughCache(t *testing.T) {
	svc, _, cache := newTestService(t)
	p, err := svc.Create(context.Background(), CreateRequest{Name: "Mouse", Price: 10, Stock: 5})
	require.NoError(t, err)

	first, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	second, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, cache.gets)
	assert.Equal(t, 1, cache.hits)
}

func TestService_GetFallsBackWhenCacheFails(t *testing.T) {
	svc, _, cache := newTestService(t)
	p, err := svc.Create(context.Background(), CreateRequest{Name: "Mouse", Price: 10, Stock: 5})
	require.NoError(t, err)

	cache.err = errors.New("redis down")
	got, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestService_GetNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Get(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Get(context.Background(), "2b1e9c1e-7d4f-4a53-8c43-3c6a5f0f7d2a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_GetStoreFailure(t *testing.T) {
	svc := NewService(failingRepo{}, nil)

	_, err := svc.Get(context.Background(), "2b1e9c1e-7d4f-4a53-8c43-3c6a5f0f7d2a")
	assert.ErrorIs(t, err, store.ErrUnavailable)
}

func TestService_UpdateAppliesPatchAndEvicts(t *testing.T) {
	svc, _, cache := newTestService(t)
	p, err := svc.Create(context.Background(), CreateRequest{Name: "Desk", Description: "oak", Price: 100, Stock: 2})
	require.NoError(t, err)
	_, err = svc.Get(context.Background(), p.ID)
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), p.ID, Patch{Price: floatPtr(80), IsActive: boolPtr(false)})
	require.NoError(t, err)

	assert.Equal(t, "Desk", updated.Name)
	assert.Equal(t, "oak", updated.Description)
	assert.Equal(t, 80.0, updated.Price)
	assert.Equal(t, 2, updated.Stock)
	assert.False(t, updated.IsActive)
	assert.True(t, updated.UpdatedAt.After(p.UpdatedAt))
	assert.Equal(t, []string{p.ID}, cache.evicted)

	got, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 80.0, got.Price)
}

func TestService_UpdateNameCollision(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Create(context.Background(), CreateRequest{Name: "Desk", Price: 1, Stock: 1})
	require.NoError(t, err)
	chair, err := svc.Create(context.Background(), CreateRequest{Name: "Chair", Price: 1, Stock: 1})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), chair.ID, Patch{Name: strPtr("Desk")})
	assert.ErrorIs(t, err, ErrNameTaken)

	renamed, err := svc.Update(context.Background(), chair.ID, Patch{Name: strPtr("Stool")})
	require.NoError(t, err)
	assert.Equal(t, "Stool", renamed.Name)

	_, err = svc.Create(context.Background(), CreateRequest{Name: "Chair", Price: 1, Stock: 1})
	assert.NoError(t, err, "old name must be released after rename")
}

func TestService_UpdateValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	p, err := svc.Create(context.Background(), CreateRequest{Name: "Desk", Price: 1, Stock: 1})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), p.ID, Patch{Stock: intPtr(-1)})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = svc.Update(context.Background(), p.ID, Patch{Name: strPtr(" ")})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = svc.Update(context.Background(), "2b1e9c1e-7d4f-4a53-8c43-3c6a5f0f7d2a", Patch{Stock: intPtr(1)})
	assert.ErrorIs(t, err, ErrNotFound)

	same, err := svc.Update(context.Background(), p.ID, Patch{})
	require.NoError(t, err)
	assert.Equal(t, p, same)
}

func TestService_Delete(t *testing.T) {
	svc, repo, cache := newTestService(t)
	p, err := svc.Create(context.Background(), CreateRequest{Name: "Lamp", Price: 1, Stock: 1})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), p.ID))
	assert.Equal(t, 0, repo.Len())
	assert.Equal(t, []string{p.ID}, cache.evicted)

	assert.ErrorIs(t, svc.Delete(context.Background(), p.ID), ErrNotFound)
	_, err = svc.Get(context.Background(), p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_ListNewestFirst(t *testing.T) {
	svc, _, _ := newTestService(t)
	for _, name := range []string{"a", "b", "c"} {
		_, err := svc.Create(context.Background(), CreateRequest{Name: name, Price: 1, Stock: 1})
		require.NoError(t, err)
	}

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "c", list[0].Name)
	assert.Equal(t, "a", list[2].Name)
}

func TestService_GetDoesNotRestoreEvictedProduct(t *testing.T) {
	cases := map[string]func(t *testing.T, svc *Service, id string){
		"delete": func(t *testing.T, svc *Service, id string) {
			require.NoError(t, svc.Delete(context.Background(), id))
		},
		"update": func(t *testing.T, svc *Service, id string) {
			_, err := svc.Update(context.Background(), id, Patch{Price: floatPtr(5)})
			require.NoError(t, err)
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			repo := newPausingRepo(NewMemoryRepo())
			svc := NewService(repo, newFakeCache())
			p, err := svc.Create(context.Background(), CreateRequest{Name: "Laptop", Price: 900, Stock: 1})
			require.NoError(t, err)

			done := make(chan error, 1)
			go func() {
				_, err := svc.Get(context.Background(), p.ID)
				done <- err
			}()
			<-repo.read
			mutate(t, svc, p.ID)
			close(repo.resume)
			require.NoError(t, <-done)

			got, err := svc.Get(context.Background(), p.ID)
			if name == "delete" {
				assert.ErrorIs(t, err, ErrNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 5.0, got.Price)
		})
	}
}
