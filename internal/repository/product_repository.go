package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"inventory-api/internal/database"
	"inventory-api/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrProductAlreadyExists = errors.New("product with this name already exists")
)

// uniqueViolation is the Postgres SQLSTATE for unique constraint violations
const uniqueViolation = "23505"

// DBTX is the session surface the repositories need
type DBTX interface {
	database.Querier
	QueryRowWriteContext(ctx context.Context, query string, args ...any) (*sql.Row, error)
}

// ListParams selects a window of products ordered by ascending id
type ListParams struct {
	Search string
	Offset int
	Limit  int
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int64) (*domain.Product, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, params ListParams) ([]*domain.Product, error)
	Count(ctx context.Context) (int, error)
}

type productRepository struct {
	db DBTX
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db DBTX) ProductRepository {
	return &productRepository{db: db}
}

// Create inserts a new product and stores the generated id on it
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (name, description, price, quantity)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	row, err := r.db.QueryRowWriteContext(
		ctx,
		query,
		product.Name,
		product.Description,
		product.Price,
		product.Quantity,
	)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	if err := row.Scan(&product.ID); err != nil {
		if isUniqueViolation(err) {
			return ErrProductAlreadyExists
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update overwrites every mutable column of an existing product
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, quantity = $5
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.Quantity,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrProductAlreadyExists
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete removes a product and returns its last stored state
func (r *productRepository) Delete(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		DELETE FROM products
		WHERE id = $1
		RETURNING id, name, description, price, quantity
	`

	row, err := r.db.QueryRowWriteContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}

	return product, nil
}

// FindByID retrieves a product by ID
func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		SELECT id, name, description, price, quantity
		FROM products
		WHERE id = $1
	`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// List returns a window of products ordered by id, optionally filtered by a
// case-insensitive substring of the name. strpos keeps % and _ literal.
func (r *productRepository) List(ctx context.Context, params ListParams) ([]*domain.Product, error) {
	products := []*domain.Product{}
	if params.Limit <= 0 {
		return products, nil
	}

	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, name, description, price, quantity
		FROM products
		WHERE $1 = '' OR strpos(lower(name), lower($1)) > 0
		ORDER BY id ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, params.Search, params.Limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// Count returns the number of stored products
func (r *productRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Quantity,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
