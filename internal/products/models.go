package products

import "time"

// Product is a catalog entry. Name is unique across the catalog.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateRequest struct {
	Name        string
	Description string
	Price       float64
	Stock       int
}

// Patch holds the fields of a partial update. Nil fields are left unchanged.
type Patch struct {
	Name        *string
	Description *string
	Price       *float64
	Stock       *int
	IsActive    *bool
}

func (p Patch) empty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil && p.Stock == nil && p.IsActive == nil
}

func (p Patch) apply(dst *Product) {
	if p.Name != nil {
		dst.Name = *p.Name
	}
	if p.Description != nil {
		dst.Description = *p.Description
	}
	if p.Price != nil {
		dst.Price = *p.Price
	}
	if p.Stock != nil {
		dst.Stock = *p.Stock
	}
	if p.IsActive != nil {
		dst.IsActive = *p.IsActive
	}
}
