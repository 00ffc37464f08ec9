package products

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("product not found")
	ErrNameTaken       = errors.New("a product with this name already exists")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Repository is the persistence contract for products.
// Create and Update report ErrNameTaken atomically.
type Repository interface {
	Create(ctx context.Context, p Product) error
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (Product, error)
	Update(ctx context.Context, id string, patch Patch, at time.Time) (Product, error)
	Delete(ctx context.Context, id string) error
}
