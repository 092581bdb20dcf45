package service

import (
	"context"
	"fmt"
	"math"

	"inventory-api/internal/domain"
	"inventory-api/internal/repository"
)

const (
	// DefaultPage is the page returned when the caller does not ask for one
	DefaultPage = 1

	// DefaultLimit is the page size used when the caller does not ask for one
	DefaultLimit = 10
)

// ListQuery selects a page of products, optionally filtered by name
type ListQuery struct {
	Search string
	Page   int
	Limit  int
}

// Window converts the 1-based page into a row offset. Pages below 1 are treated as page 1.
// An offset that does not fit in an int saturates at math.MaxInt, past any stored row.
func (q ListQuery) Window() (offset, limit int) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	if q.Limit <= 0 {
		return 0, q.Limit
	}
	if page-1 > math.MaxInt/q.Limit {
		return math.MaxInt, q.Limit
	}
	return (page - 1) * q.Limit, q.Limit
}

// ProductService defines the interface for product business logic
type ProductService interface {
	List(ctx context.Context, query ListQuery) ([]*domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, input domain.ProductInput) (*domain.Product, error)
	Replace(ctx context.Context, id int64, input domain.ProductInput) (*domain.Product, error)
	Patch(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, id int64) (*domain.Product, error)
}

type productService struct {
	sessions repository.SessionFactory
}

// NewProductService creates a new instance of ProductService
func NewProductService(sessions repository.SessionFactory) ProductService {
	return &productService{sessions: sessions}
}

// List returns products ordered by id, filtered and windowed by query
func (s *productService) List(ctx context.Context, query ListQuery) ([]*domain.Product, error) {
	session, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	offset, limit := query.Window()
	products, err := session.Products().List(ctx, repository.ListParams{
		Search: query.Search,
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return products, nil
}

// Get retrieves a single product
func (s *productService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	session, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	product, err := session.Products().FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}

	return product, nil
}

// Create stores a new product; storage assigns its id
func (s *productService) Create(ctx context.Context, input domain.ProductInput) (*domain.Product, error) {
	session, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	product := &domain.Product{}
	input.Apply(product)

	if err := session.Products().Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	if err := session.Commit(); err != nil {
		return nil, err
	}

	return product, nil
}

// Replace overwrites every mutable attribute of an existing product
func (s *productService) Replace(ctx context.Context, id int64, input domain.ProductInput) (*domain.Product, error) {
	session, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	product, err := session.Products().FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to replace product %d: %w", id, err)
	}

	input.Apply(product)

	if err := session.Products().Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to replace product %d: %w", id, err)
	}

	if err := session.Commit(); err != nil {
		return nil, err
	}

	return product, nil
}

// Patch applies only the attributes present in patch
func (s *productService) Patch(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	session, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	product, err := session.Products().FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to patch product %d: %w", id, err)
	}

	// Nothing to write
	if patch.IsEmpty() {
		return product, nil
	}

	patch.Apply(product)

	if err := session.Products().Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to patch product %d: %w", id, err)
	}

	if err := session.Commit(); err != nil {
		return nil, err
	}

	return product, nil
}

// Delete removes a product and returns its last known state
func (s *productService) Delete(ctx context.Context, id int64) (*domain.Product, error) {
	session, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	product, err := session.Products().Delete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete product %d: %w", id, err)
	}

	if err := session.Commit(); err != nil {
		return nil, err
	}

	return product, nil
}

func (s *productService) open(ctx context.Context) (repository.Session, error) {
	session, err := s.sessions.OpenSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	return session, nil
}
