package products

import (
	"context"
	"math"
	"strings"
	"time"

	"catalog-api/pkg/logger"

	"github.com/google/uuid"
)

// Service provides product operations. The repository is authoritative;
// cache failures are logged and otherwise ignored.
type Service struct {
	repo  Repository
	cache Cache
	clock func() time.Time
}

func NewService(repo Repository, cache Cache) *Service {
	if cache == nil {
		cache = NoopCache{}
	}
	return &Service{repo: repo, cache: cache, clock: time.Now}
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || !validPrice(req.Price) || req.Stock < 0 {
		return Product{}, ErrInvalidArgument
	}

	now := s.clock().UTC()
	p := Product{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	if !validID(id) {
		return Product{}, ErrNotFound
	}

	p, hit, err := s.cache.Get(ctx, id)
	if err != nil {
		logger.From(ctx).Warn("product cache read failed", "product_id", id, "err", err)
	}
	if hit {
		return p, nil
	}

	// Taken before the store read so an eviction that lands in between
	// voids the write-back below.
	version, verErr := s.cache.Version(ctx, id)
	if verErr != nil {
		logger.From(ctx).Warn("product cache version read failed", "product_id", id, "err", verErr)
	}

	p, err = s.repo.GetByID(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if verErr == nil {
		if err := s.cache.SetIfVersion(ctx, p, version); err != nil {
			logger.From(ctx).Warn("product cache write failed", "product_id", id, "err", err)
		}
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, id string, patch Patch) (Product, error) {
	if !validID(id) {
		return Product{}, ErrNotFound
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return Product{}, ErrInvalidArgument
		}
		patch.Name = &name
	}
	if (patch.Price != nil && !validPrice(*patch.Price)) || (patch.Stock != nil && *patch.Stock < 0) {
		return Product{}, ErrInvalidArgument
	}
	if patch.empty() {
		return s.repo.GetByID(ctx, id)
	}

	p, err := s.repo.Update(ctx, id, patch, s.clock().UTC())
	if err != nil {
		return Product{}, err
	}
	s.evict(ctx, id)
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.evict(ctx, id)
	return nil
}

func (s *Service) evict(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, id); err != nil {
		logger.From(ctx).Warn("product cache eviction failed", "product_id", id, "err", err)
	}
}

func validPrice(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
