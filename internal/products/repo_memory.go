package products

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory repository for tests and local development.
type MemoryRepo struct {
	mu     sync.Mutex
	byID   map[string]Product
	byName map[string]string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: map[string]Product{}, byName: map[string]string{}}
}

func (r *MemoryRepo) Create(ctx context.Context, p Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[p.Name]; ok {
		return ErrNameTaken
	}
	r.byID[p.ID] = p
	r.byName[p.Name] = p.ID
	return nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Product, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (r *MemoryRepo) Update(ctx context.Context, id string, patch Patch, at time.Time) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	if patch.Name != nil && *patch.Name != p.Name {
		if _, taken := r.byName[*patch.Name]; taken {
			return Product{}, ErrNameTaken
		}
		delete(r.byName, p.Name)
		r.byName[*patch.Name] = id
	}
	patch.apply(&p)
	p.UpdatedAt = at
	r.byID[id] = p
	return p, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	delete(r.byName, p.Name)
	return nil
}

// Len reports the number of stored products.
func (r *MemoryRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}
