package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jooba/jooba/internal/model"
)

// productsSchema is applied at startup. The table is a plain key-value
// projection of the catalog; the store still enforces no ownership.
const productsSchema = `
CREATE TABLE IF NOT EXISTS products (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	price       DOUBLE PRECISION NOT NULL,
	category    TEXT NOT NULL,
	description TEXT NOT NULL,
	created_by  TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
)`

// Postgres is a catalog backend on a PostgreSQL table keyed by product id.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects a pool and ensures the products table exists.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, productsSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure products schema: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Get returns a single product by id.
func (s *Postgres) Get(ctx context.Context, id string) (*model.Product, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, price, category, description, created_by, created_at, updated_at
		FROM products
		WHERE id = $1`, id)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// List returns the whole catalog in id order.
func (s *Postgres) List(ctx context.Context) ([]*model.Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, price, category, description, created_by, created_at, updated_at
		FROM products
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := make([]*model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}

// Push inserts a new product under a generated key.
func (s *Postgres) Push(ctx context.Context, p *model.Product) (string, error) {
	id := NewKey()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO products (id, name, price, category, description, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, p.Name, p.Price, p.Category, p.Description, p.CreatedBy, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return "", fmt.Errorf("insert product: %w", err)
	}
	return id, nil
}

// updatableColumns guards the dynamic SET clause below.
var updatableColumns = map[string]bool{
	model.FieldName:        true,
	model.FieldPrice:       true,
	model.FieldCategory:    true,
	model.FieldDescription: true,
	model.FieldUpdatedAt:   true,
}

// Update merges fields into one product row.
func (s *Postgres) Update(ctx context.Context, id string, fields map[string]any) error {
	assignments := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	args = append(args, id)

	for column, value := range fields {
		if !updatableColumns[column] {
			continue
		}
		args = append(args, value)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if len(assignments) == 0 {
		// Nothing recognized; still confirm the row exists.
		_, err := s.Get(ctx, id)
		return err
	}

	tag, err := s.pool.Exec(ctx,
		fmt.Sprintf("UPDATE products SET %s WHERE id = $1", strings.Join(assignments, ", ")),
		args...)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes one product row.
func (s *Postgres) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping checks database connectivity.
func (s *Postgres) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool.
func (s *Postgres) Close() {
	s.pool.Close()
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.Category,
		&p.Description,
		&p.CreatedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
