package products

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"catalog-api/internal/store"
)

const nameUniqueIndex = "products_name_key"

// PostgresRepo stores products in the products table.
type PostgresRepo struct {
	db      *sql.DB
	timeout time.Duration
}

func NewPostgresRepo(db *sql.DB, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

const productColumns = `id, name, description, price, stock, is_active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var p Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Stock,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func (r *PostgresRepo) Create(ctx context.Context, p Product) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const q = `
INSERT INTO products (` + productColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`
	_, err := r.db.ExecContext(ctx, q,
		p.ID,
		p.Name,
		p.Description,
		p.Price,
		p.Stock,
		p.IsActive,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if store.IsUniqueViolation(err, nameUniqueIndex) {
			return ErrNameTaken
		}
		return store.Unavailable("insert product", err)
	}
	return nil
}

func (r *PostgresRepo) List(ctx context.Context) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const q = `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, store.Unavailable("list products", err)
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, store.Unavailable("scan product", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Unavailable("list products", err)
	}
	return out, nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const q = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, store.Unavailable("get product", err)
	}
	return p, nil
}

// Update applies patch in a single statement; NULL parameters keep the
// stored column value.
func (r *PostgresRepo) Update(ctx context.Context, id string, patch Patch, at time.Time) (Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const q = `
UPDATE products SET
    name        = COALESCE($2, name),
    description = COALESCE($3, description),
    price       = COALESCE($4, price),
    stock       = COALESCE($5, stock),
    is_active   = COALESCE($6, is_active),
    updated_at  = $7
WHERE id = $1
RETURNING ` + productColumns
	p, err := scanProduct(r.db.QueryRowContext(ctx, q,
		id,
		patch.Name,
		patch.Description,
		patch.Price,
		patch.Stock,
		patch.IsActive,
		at,
	))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return Product{}, ErrNotFound
		case store.IsUniqueViolation(err, nameUniqueIndex):
			return Product{}, ErrNameTaken
		}
		return Product{}, store.Unavailable("update product", err)
	}
	return p, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return store.Unavailable("delete product", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return store.Unavailable("delete product", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
